package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-stilllife/pkg/app"
	"github.com/df07/go-stilllife/pkg/config"
	"github.com/df07/go-stilllife/pkg/loop"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	cfg := config.Default()
	cfg.Width = 64
	cfg.Height = 48
	cfg.TileSize = 16
	cfg.Workers = 2
	cfg.FPS = 60
	cfg.TextureDir = t.TempDir()

	console := NewConsole(100)
	still, err := app.New(cfg, NewWebLogger(nil, console))
	require.NoError(t, err)

	srv := NewServer(still, console, 0, "")
	srv.StreamInterval = 10 * time.Millisecond
	ts := httptest.NewServer(srv.Handler())

	ctx, cancel := context.WithCancel(context.Background())
	go still.Run(ctx)

	t.Cleanup(func() {
		ts.Close()
		cancel()
		still.Close()
	})
	return srv, ts
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func waitForFrame(t *testing.T, srv *Server) {
	t.Helper()
	require.Eventually(t, func() bool { return srv.latestFrame().Image != nil },
		5*time.Second, 10*time.Millisecond)
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t)

	var health HealthResponse
	status := getJSON(t, ts.URL+"/api/health", &health)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 10, health.TexturesTotal)
}

func TestScene(t *testing.T) {
	_, ts := newTestServer(t)

	var resp SceneResponse
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/scene", &resp))

	require.Len(t, resp.Children, 9)
	assert.Equal(t, "PerspectiveCamera", resp.Children[8])
	require.Len(t, resp.Meshes, 6)
	assert.Equal(t, "crystal", resp.Meshes[4].Name)
	assert.Equal(t, 75.0, resp.Camera.FOV)
	require.Len(t, resp.Lights, 2)
	assert.Equal(t, "ambient", resp.Lights[0].Type)
	assert.Equal(t, "point", resp.Lights[1].Type)
	assert.Equal(t, [3]float64{2, 3, 4}, *resp.Lights[1].Position)
	assert.Len(t, resp.Textures, 10)
	assert.Equal(t, 64, resp.Viewport.Width)
}

func TestFrame(t *testing.T) {
	srv, ts := newTestServer(t)
	waitForFrame(t, srv)

	tests := []struct {
		name   string
		query  string
		bounds image.Rectangle
	}{
		{"native size", "", image.Rect(0, 0, 64, 48)},
		{"resized", "?width=32&height=24", image.Rect(0, 0, 32, 24)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(ts.URL + "/api/frame" + tt.query)
			require.NoError(t, err)
			defer resp.Body.Close()

			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
			assert.NotEmpty(t, resp.Header.Get("X-Frame-Number"))

			img, err := png.Decode(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, tt.bounds, img.Bounds())
		})
	}

	status := getJSON(t, ts.URL+"/api/frame?width=0", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestInspect(t *testing.T) {
	_, ts := newTestServer(t)

	var hit InspectResponse
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/inspect?x=32&y=30", &hit))
	assert.True(t, hit.Hit)
	assert.NotEmpty(t, hit.Mesh)
	assert.Contains(t, []string{"wood", "metal"}, hit.MaterialType)
	assert.Greater(t, hit.Distance, 0.0)

	var miss InspectResponse
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/inspect?x=0&y=0", &miss))
	assert.False(t, miss.Hit)

	assert.Equal(t, http.StatusBadRequest, getJSON(t, ts.URL+"/api/inspect?x=abc&y=1", nil))
	assert.Equal(t, http.StatusBadRequest, getJSON(t, ts.URL+"/api/inspect?x=500&y=1", nil))
}

func TestResize(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/resize?width=100&height=50&dpr=3", "", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var scene SceneResponse
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/scene", &scene))
	assert.Equal(t, 100, scene.Viewport.Width)
	assert.Equal(t, 50, scene.Viewport.Height)
	assert.Equal(t, 200, scene.Viewport.BufferWidth, "pixel ratio capped at 2")
	assert.Equal(t, 2.0, scene.Camera.Aspect)

	assert.Equal(t, http.StatusMethodNotAllowed, getJSON(t, ts.URL+"/api/resize", nil))

	resp, err = http.Post(ts.URL+"/api/resize?width=-5", "", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestApplyInput(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name    string
		event   InputEvent
		wantErr bool
	}{
		{"pointer down", InputEvent{Type: "pointerdown", Button: 0, X: 1, Y: 1}, false},
		{"pointer move", InputEvent{Type: "pointermove", X: 5, Y: 1}, false},
		{"pointer up", InputEvent{Type: "pointerup"}, false},
		{"wheel", InputEvent{Type: "wheel", DeltaY: -1}, false},
		{"resize", InputEvent{Type: "resize", Width: 80, Height: 40}, false},
		{"bad resize", InputEvent{Type: "resize"}, true},
		{"bad button", InputEvent{Type: "pointerdown", Button: 7}, true},
		{"unknown", InputEvent{Type: "keydown"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err, loopErr := onLoop(context.Background(), srv.still.Loop, func() error { return srv.applyInput(tt.event) })
			require.NoError(t, loopErr)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWebsocketStream(t *testing.T) {
	_, ts := newTestServer(t)

	var before SceneResponse
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/scene", &before))

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	for _, ev := range []InputEvent{
		{Type: "pointerdown", Button: 0, X: 10, Y: 10},
		{Type: "pointermove", X: 30, Y: 10},
		{Type: "pointerup"},
	} {
		require.NoError(t, conn.WriteJSON(ev))
	}

	// Wait for a binary PNG frame
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		kind, data, err := conn.ReadMessage()
		require.NoError(t, err)
		if kind != websocket.BinaryMessage {
			continue
		}
		img, err := png.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 64, 48), img.Bounds())
		break
	}

	require.Eventually(t, func() bool {
		var after SceneResponse
		getJSON(t, ts.URL+"/api/scene", &after)
		return after.Camera.Position != before.Camera.Position
	}, 5*time.Second, 20*time.Millisecond, "orbit drag moves the camera")
}

func TestConsoleStream(t *testing.T) {
	srv, ts := newTestServer(t)
	srv.logger.Infof("hello %s", "console")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/console", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	scanner := bufio.NewScanner(resp.Body)
	found := false
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "data: ") && strings.Contains(line, "hello console") {
			found = true
			break
		}
	}
	assert.True(t, found, fmt.Sprintf("console message not streamed: %v", scanner.Err()))
}

func TestOnLoopDiscardsLateResult(t *testing.T) {
	queue := loop.NewQueue()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := make(chan struct{})
	got, err := onLoop(ctx, queue, func() int {
		close(ran)
		return 7
	})
	require.Error(t, err)
	assert.Zero(t, got)
	assert.Equal(t, 1, queue.Len())

	// A stalled loop catching up must not block on the abandoned call
	assert.Equal(t, 1, queue.Drain())
	<-ran
}

func TestOnLoopReturnsResult(t *testing.T) {
	queue := loop.NewQueue()
	go func() {
		for queue.Drain() == 0 {
			time.Sleep(time.Millisecond)
		}
	}()

	got, err := onLoop(context.Background(), queue, func() string { return "done" })
	require.NoError(t, err)
	assert.Equal(t, "done", got)
}

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/df07/go-stilllife/pkg/app"
	"github.com/df07/go-stilllife/pkg/core"
	"github.com/df07/go-stilllife/pkg/loop"
)

// loopTimeout bounds how long a request waits for the render loop
const loopTimeout = 2 * time.Second

// Server exposes a running still life over HTTP and websockets
type Server struct {
	port      int
	staticDir string
	still     *app.StillLife
	console   *Console
	logger    core.Logger

	// Minimum time between frames pushed to one websocket client
	StreamInterval time.Duration

	upgrader websocket.Upgrader

	mu     sync.Mutex
	latest loop.Frame
}

// NewServer creates a web server for still. The server subscribes to the
// loop's frames, so create it before the loop starts.
func NewServer(still *app.StillLife, console *Console, port int, staticDir string) *Server {
	s := &Server{
		port:           port,
		staticDir:      staticDir,
		still:          still,
		console:        console,
		logger:         still.Logger,
		StreamInterval: time.Second / 30,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	still.Loop.OnFrame(s.onFrame)
	return s
}

// onFrame runs on the loop goroutine
func (s *Server) onFrame(frame loop.Frame) {
	s.mu.Lock()
	s.latest = frame
	s.mu.Unlock()
}

func (s *Server) latestFrame() loop.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// Handler returns the HTTP routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Serve static files
	if s.staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(s.staticDir)))
	}

	// API endpoints
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scene", s.handleScene)
	mux.HandleFunc("/api/frame", s.handleFrame)
	mux.HandleFunc("/api/inspect", s.handleInspect)
	mux.HandleFunc("/api/resize", s.handleResize)
	mux.HandleFunc("/api/console", s.handleConsole)
	mux.HandleFunc("/api/ws", s.handleStream)
	return mux
}

// Start serves until ctx is done
func (s *Server) Start(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	s.logger.Infof("Starting web server on http://localhost%s", httpServer.Addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// poster queues work for the render loop goroutine
type poster interface {
	Post(fn func())
}

// onLoop runs fn on the render loop goroutine and returns its result. After a
// timeout the queued call still runs, but its result is discarded.
func onLoop[T any](ctx context.Context, p poster, fn func() T) (T, error) {
	result := make(chan T, 1)
	p.Post(func() { result <- fn() })

	ctx, cancel := context.WithTimeout(ctx, loopTimeout)
	defer cancel()
	select {
	case v := <-result:
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, fmt.Errorf("render loop did not respond: %w", ctx.Err())
	}
}

// HealthResponse is returned by /api/health
type HealthResponse struct {
	Status        string `json:"status"`
	Frames        int    `json:"frames"`
	TexturesReady int    `json:"texturesReady"`
	TexturesTotal int    `json:"texturesTotal"`
}

// handleHealth reports liveness and texture progress
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{Status: "ok", Frames: s.latestFrame().Number}
	counts, err := onLoop(r.Context(), s.still.Loop, func() [2]int {
		return [2]int{s.still.Textures.ReadyCount(), len(s.still.Textures.All())}
	})
	response.TexturesReady, response.TexturesTotal = counts[0], counts[1]
	if err != nil {
		response.Status = "stalled"
		writeJSON(w, http.StatusServiceUnavailable, response)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

// handleResize applies a new viewport size on the loop
func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "use POST")
		return
	}

	query := r.URL.Query()
	width, err := parseIntParam(query, "width", s.still.Config.Width, 1, 4096)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	height, err := parseIntParam(query, "height", s.still.Config.Height, 1, 4096)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ratio, err := parseFloatParam(query, "dpr", 1, 0.1, 8)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resizeErr, err := onLoop(r.Context(), s.still.Loop, func() error {
		return s.still.Resize(width, height, ratio)
	})
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	if resizeErr != nil {
		writeError(w, http.StatusBadRequest, resizeErr.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"width": width, "height": height, "dpr": ratio})
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseFloatParam parses a float parameter from URL query with validation
func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %f and %f, got: %f", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

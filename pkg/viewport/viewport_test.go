package viewport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-stilllife/pkg/camera"
	"github.com/df07/go-stilllife/pkg/renderer"
)

type recordingTarget struct {
	width, height int
	ratio         float64
	calls         int
}

func (r *recordingTarget) SetSize(width, height int) {
	r.width, r.height = width, height
	r.calls++
}

func (r *recordingTarget) SetPixelRatio(ratio float64) {
	r.ratio = ratio
}

func TestResizeUpdatesCameraAndRenderer(t *testing.T) {
	cam := camera.NewPerspective(75, 1, 0.1, 100)
	target := &recordingTarget{}

	v, err := New(cam, target, 800, 600, 1)
	require.NoError(t, err)

	require.NoError(t, v.Resize(1920, 1080, 1))
	assert.Equal(t, 1920, v.Width)
	assert.Equal(t, 1080, v.Height)
	assert.InDelta(t, 1920.0/1080.0, cam.Aspect, 1e-12)
	assert.InDelta(t, 1920.0/1080.0, cam.ProjectionAspect(), 1e-12, "projection refreshed")
	assert.Equal(t, 1920, target.width)
	assert.Equal(t, 1080, target.height)
	assert.Equal(t, 2, target.calls)
}

func TestPixelRatioIsCapped(t *testing.T) {
	tests := []struct {
		device float64
		want   float64
	}{
		{0.5, 0.5},
		{1, 1},
		{2, 2},
		{3, 2},
	}

	for _, tt := range tests {
		cam := camera.NewPerspective(75, 1, 0.1, 100)
		target := &recordingTarget{}
		_, err := New(cam, target, 100, 100, tt.device)
		require.NoError(t, err)
		assert.Equal(t, tt.want, target.ratio, "device ratio %v", tt.device)
	}
}

func TestRepeatedResizeKeepsLatest(t *testing.T) {
	cam := camera.NewPerspective(75, 1, 0.1, 100)
	target := &recordingTarget{}
	v, err := New(cam, target, 100, 100, 1)
	require.NoError(t, err)

	for _, size := range [][2]int{{300, 200}, {640, 480}, {200, 400}} {
		require.NoError(t, v.Resize(size[0], size[1], 1))
	}
	assert.Equal(t, 0.5, cam.Aspect)
	assert.Equal(t, 200, target.width)
	assert.Equal(t, 400, target.height)
	assert.Equal(t, 4, target.calls, "no debouncing")
}

func TestMatchesComparesUncappedRatio(t *testing.T) {
	cam := camera.NewPerspective(75, 1, 0.1, 100)
	target := &recordingTarget{}
	v, err := New(cam, target, 800, 600, 3)
	require.NoError(t, err)
	assert.Equal(t, 2.0, target.ratio)

	// A host polling the same 3x display every frame must not resize again
	assert.True(t, v.Matches(800, 600, 3))
	assert.False(t, v.Matches(800, 600, 2))
	assert.False(t, v.Matches(801, 600, 3))
	assert.False(t, v.Matches(800, 601, 3))

	require.NoError(t, v.Resize(800, 600, 2))
	assert.True(t, v.Matches(800, 600, 2))
	assert.Equal(t, 2, target.calls)
}

func TestInvalidResizeLeavesStateUntouched(t *testing.T) {
	cam := camera.NewPerspective(75, 1, 0.1, 100)
	target := &recordingTarget{}
	v, err := New(cam, target, 400, 200, 1.5)
	require.NoError(t, err)

	tests := []struct {
		name          string
		width, height int
		ratio         float64
	}{
		{"zero width", 0, 100, 1},
		{"negative height", 100, -1, 1},
		{"zero ratio", 100, 100, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, v.Resize(tt.width, tt.height, tt.ratio))
			assert.Equal(t, 400, v.Width)
			assert.Equal(t, 200, v.Height)
			assert.Equal(t, 2.0, cam.Aspect)
			assert.Equal(t, 1.5, target.ratio)
			assert.Equal(t, 1, target.calls)
		})
	}
}

func TestResizeDrivesDrawingBuffer(t *testing.T) {
	cam := camera.NewPerspective(75, 1, 0.1, 100)
	r := renderer.New(renderer.Options{Workers: 1})
	defer r.Dispose()

	_, err := New(cam, r, 640, 360, 3)
	require.NoError(t, err)

	w, h := r.DrawingBufferSize()
	assert.Equal(t, 1280, w)
	assert.Equal(t, 720, h)
}

package renderer

import (
	"errors"
	"image"
	"math"
	"sync"
	"time"

	"github.com/df07/go-stilllife/pkg/camera"
	"github.com/df07/go-stilllife/pkg/core"
	"github.com/df07/go-stilllife/pkg/scene"
)

// ErrDisposed is returned by Render after Dispose
var ErrDisposed = errors.New("renderer: disposed")

// Options configures a Renderer
type Options struct {
	TileSize int // Tile edge in pixels, DefaultTileSize when zero
	Workers  int // Parallel workers, one per CPU when zero
	Logger   core.Logger
}

// Renderer draws a scene from a camera into an RGBA drawing buffer. The buffer
// is the logical size multiplied by the pixel ratio. Render is meant to be
// called from a single goroutine; size changes take effect on the next frame.
type Renderer struct {
	renderMu sync.Mutex // Held for a whole frame and by Dispose

	mu         sync.Mutex
	width      int
	height     int
	pixelRatio float64

	tileSize int
	pool     *WorkerPool
	logger   core.Logger

	frames    int
	lastStats RenderStats
	disposed  bool
}

// New creates a renderer with a 1x1 buffer and pixel ratio 1
func New(opts Options) *Renderer {
	if opts.TileSize <= 0 {
		opts.TileSize = DefaultTileSize
	}
	if opts.Logger == nil {
		opts.Logger = core.NewNopLogger()
	}

	pool := NewWorkerPool(opts.Workers)
	pool.Start()

	return &Renderer{
		width:      1,
		height:     1,
		pixelRatio: 1,
		tileSize:   opts.TileSize,
		pool:       pool,
		logger:     opts.Logger,
	}
}

// SetSize sets the logical output size
func (r *Renderer) SetSize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.width, r.height = width, height
}

// SetPixelRatio sets the number of buffer pixels per logical pixel
func (r *Renderer) SetPixelRatio(ratio float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pixelRatio = ratio
}

// Size returns the logical output size
func (r *Renderer) Size() (width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

// PixelRatio returns the current pixel ratio
func (r *Renderer) PixelRatio() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pixelRatio
}

// DrawingBufferSize is the size of the images Render produces
func (r *Renderer) DrawingBufferSize() (width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bufferSize()
}

func (r *Renderer) bufferSize() (int, int) {
	width := max(1, int(math.Round(float64(r.width)*r.pixelRatio)))
	height := max(1, int(math.Round(float64(r.height)*r.pixelRatio)))
	return width, height
}

// Render draws one frame
func (r *Renderer) Render(sc *scene.Scene, cam *camera.Perspective) (*image.RGBA, error) {
	r.renderMu.Lock()
	defer r.renderMu.Unlock()

	r.mu.Lock()
	if r.disposed {
		r.mu.Unlock()
		return nil, ErrDisposed
	}
	width, height := r.bufferSize()
	tileSize := r.tileSize
	r.mu.Unlock()

	start := time.Now()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	tiles := NewTileGrid(width, height, tileSize)
	stats := r.pool.RenderFrame(newFrameJob(sc, cam, img), tiles)

	r.mu.Lock()
	r.frames++
	stats.Frame = r.frames
	stats.Width, stats.Height = width, height
	stats.Workers = r.pool.GetNumWorkers()
	stats.Duration = time.Since(start)
	r.lastStats = stats
	r.mu.Unlock()

	r.logger.Debugf("frame %d: %dx%d, %d tiles on %d workers, %.1f%% coverage, %v",
		stats.Frame, width, height, stats.Tiles, stats.Workers, stats.Coverage()*100, stats.Duration)
	return img, nil
}

// Frames returns the number of frames rendered so far
func (r *Renderer) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// LastStats returns statistics of the most recent frame
func (r *Renderer) LastStats() RenderStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastStats
}

// Pick returns the closest mesh hit under the logical pixel (x, y), measured
// from the top-left corner
func (r *Renderer) Pick(sc *scene.Scene, cam *camera.Perspective, x, y float64) (scene.Hit, bool) {
	width, height := r.Size()
	if width <= 0 || height <= 0 || x < 0 || y < 0 || x >= float64(width) || y >= float64(height) {
		return scene.Hit{}, false
	}

	ray := cam.Ray(x/float64(width), 1-y/float64(height))
	tMin, tMax, ok := clipRange(cam, cam.Direction(), ray)
	if !ok {
		return scene.Hit{}, false
	}
	return sc.Intersect(ray, tMin, tMax)
}

// Dispose stops the workers. Further Render calls fail with ErrDisposed.
func (r *Renderer) Dispose() {
	r.renderMu.Lock()
	defer r.renderMu.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.disposed {
		return
	}
	r.disposed = true
	r.pool.Stop()
}

package loop

import (
	"context"
	"errors"
	"image"
	"slices"
	"sync"
	"time"

	"github.com/df07/go-stilllife/pkg/camera"
	"github.com/df07/go-stilllife/pkg/core"
	"github.com/df07/go-stilllife/pkg/scene"
)

// DefaultFPS is the frame rate of NewTicker when none is given
const DefaultFPS = 60

// Controls is advanced once per frame
type Controls interface {
	Update() bool
}

// Renderer draws one frame
type Renderer interface {
	Render(sc *scene.Scene, cam *camera.Perspective) (*image.RGBA, error)
}

// Frame is the result of one tick
type Frame struct {
	Number  int
	Image   *image.RGBA
	Elapsed time.Duration
	Delta   time.Duration
	Moved   bool // Controls moved the camera during this tick
}

// Loop redraws a scene once per tick. All scene, camera and texture mutation
// happens on the goroutine calling Tick; other goroutines hand work over with
// Post.
type Loop struct {
	scene    *scene.Scene
	camera   *camera.Perspective
	controls Controls
	renderer Renderer
	clock    *Clock
	queue    *Queue
	logger   core.Logger

	mu        sync.Mutex
	last      Frame
	listeners []func(Frame)
	ticks     int

	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a loop draining queue at the start of every tick. queue and
// controls may be nil.
func New(queue *Queue, sc *scene.Scene, cam *camera.Perspective, controls Controls, renderer Renderer, logger core.Logger) *Loop {
	if queue == nil {
		queue = NewQueue()
	}
	if logger == nil {
		logger = core.NewNopLogger()
	}
	return &Loop{
		scene:    sc,
		camera:   cam,
		controls: controls,
		renderer: renderer,
		clock:    NewClock(),
		queue:    queue,
		logger:   logger,
		stop:     make(chan struct{}),
	}
}

// Post schedules fn to run on the loop goroutine at the start of the next tick
func (l *Loop) Post(fn func()) {
	l.queue.Post(fn)
}

// OnFrame registers a listener called on the loop goroutine after every frame
func (l *Loop) OnFrame(fn func(Frame)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners = append(l.listeners, fn)
}

// Tick runs posted tasks, advances the controls and renders exactly once
func (l *Loop) Tick() error {
	l.queue.Drain()

	l.clock.Tick()
	moved := false
	if l.controls != nil {
		moved = l.controls.Update()
	}

	img, err := l.renderer.Render(l.scene, l.camera)
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.ticks++
	frame := Frame{
		Number:  l.ticks,
		Image:   img,
		Elapsed: l.clock.Elapsed(),
		Delta:   l.clock.Delta(),
		Moved:   moved,
	}
	l.last = frame
	listeners := slices.Clone(l.listeners)
	l.mu.Unlock()

	for _, fn := range listeners {
		fn(frame)
	}
	return nil
}

// RunFrames runs n ticks back to back
func (l *Loop) RunFrames(n int) error {
	for i := 0; i < n; i++ {
		if err := l.Tick(); err != nil {
			return err
		}
	}
	return nil
}

// Run ticks once per value received from frames until ctx is done, Stop is
// called or frames is closed. It returns nil on Stop and on a closed channel.
func (l *Loop) Run(ctx context.Context, frames <-chan time.Time) error {
	l.logger.Debugf("render loop started")
	defer l.logger.Debugf("render loop stopped after %d frames", l.Ticks())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.stop:
			return nil
		case _, ok := <-frames:
			if !ok || l.Stopped() {
				return nil
			}
			if err := l.Tick(); err != nil {
				l.logger.Errorf("render loop: %v", err)
				return err
			}
		}
	}
}

// Stop ends Run. It is safe to call more than once.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// Stopped reports whether Stop has been called
func (l *Loop) Stopped() bool {
	select {
	case <-l.stop:
		return true
	default:
		return false
	}
}

// Last returns the most recent frame
func (l *Loop) Last() Frame {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last
}

// Ticks returns how many frames have been rendered
func (l *Loop) Ticks() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ticks
}

// NewTicker returns a ticker at fps frames per second, DefaultFPS when fps is
// not positive
func NewTicker(fps int) *time.Ticker {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return time.NewTicker(time.Second / time.Duration(fps))
}

// IsStop reports whether err means the loop ended on request rather than
// because of a failure. A context that ran out of time counts as a request.
func IsStop(err error) bool {
	return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

package texture

import (
	"context"
	"sort"
	"sync"

	"github.com/df07/go-stilllife/pkg/core"
)

// Dispatcher runs decode completions on the goroutine that owns the textures
type Dispatcher interface {
	Post(fn func())
}

// DispatcherFunc adapts a function to Dispatcher
type DispatcherFunc func(fn func())

// Post calls f(fn)
func (f DispatcherFunc) Post(fn func()) { f(fn) }

// Immediate binds pixels on the decoding goroutine. Only safe when nothing
// reads the textures until Loader.Wait returns.
var Immediate = DispatcherFunc(func(fn func()) { fn() })

// Loader decodes textures asynchronously and hands the results to a Dispatcher
type Loader struct {
	dispatcher Dispatcher
	logger     core.Logger
	maxSize    int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	textures map[string]*Texture
}

// NewLoader creates a loader. maxSize limits decoded dimensions (0 = no limit).
func NewLoader(dispatcher Dispatcher, logger core.Logger, maxSize int) *Loader {
	if logger == nil {
		logger = core.NewNopLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Loader{
		dispatcher: dispatcher,
		logger:     logger,
		maxSize:    maxSize,
		ctx:        ctx,
		cancel:     cancel,
		textures:   make(map[string]*Texture),
	}
}

// Load returns the texture for path right away and schedules its decode.
// Loading the same path twice returns the same texture.
func (l *Loader) Load(path string) *Texture {
	l.mu.Lock()
	if tex, ok := l.textures[path]; ok {
		l.mu.Unlock()
		return tex
	}
	tex := New(path)
	l.textures[path] = tex
	l.mu.Unlock()

	l.decode(tex)
	return tex
}

// Reload re-decodes a previously loaded path. It returns false for unknown paths.
func (l *Loader) Reload(path string) bool {
	l.mu.Lock()
	tex, ok := l.textures[path]
	l.mu.Unlock()
	if !ok {
		return false
	}
	l.decode(tex)
	return true
}

// Paths returns every loaded path in sorted order
func (l *Loader) Paths() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	paths := make([]string, 0, len(l.textures))
	for path := range l.textures {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

func (l *Loader) decode(tex *Texture) {
	if l.ctx.Err() != nil {
		return
	}

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()

		img, err := DecodeFile(tex.Path, l.maxSize)
		if l.ctx.Err() != nil {
			return
		}

		if err != nil {
			l.logger.Warnf("texture %s not loaded: %v", tex.Path, err)
			l.dispatcher.Post(func() { tex.fail(err) })
			return
		}

		l.logger.Debugf("texture %s decoded (%dx%d)", tex.Path, img.Bounds().Dx(), img.Bounds().Dy())
		l.dispatcher.Post(func() { tex.bind(img) })
	}()
}

// Wait blocks until all scheduled decodes have finished or ctx is done
func (l *Loader) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting work. Decodes still in flight drop their results.
func (l *Loader) Close() {
	l.cancel()
}

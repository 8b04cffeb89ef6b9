package texture

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/df07/go-stilllife/pkg/core"
)

// Watcher re-decodes loaded textures when their files change on disk
type Watcher struct {
	loader  *Loader
	logger  core.Logger
	watcher *fsnotify.Watcher
}

// NewWatcher watches the directories of every texture the loader knows about
func NewWatcher(loader *Loader, logger core.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create texture watcher: %w", err)
	}

	dirs := make(map[string]bool)
	for _, path := range loader.Paths() {
		dirs[filepath.Dir(path)] = true
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			// Missing directories were already reported by the loader
			logger.Debugf("not watching %s: %v", dir, err)
		}
	}

	return &Watcher{loader: loader, logger: logger, watcher: fw}, nil
}

// Run handles file events until ctx is done or the watcher is closed
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if w.loader.Reload(filepath.Clean(event.Name)) {
				w.logger.Infof("texture %s changed, reloading", event.Name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warnf("texture watcher: %v", err)
		}
	}
}

// Close stops watching
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

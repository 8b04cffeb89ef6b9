// Package app wires the still life together and owns every long-lived object.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/df07/go-stilllife/pkg/camera"
	"github.com/df07/go-stilllife/pkg/config"
	"github.com/df07/go-stilllife/pkg/controls"
	"github.com/df07/go-stilllife/pkg/core"
	"github.com/df07/go-stilllife/pkg/loop"
	"github.com/df07/go-stilllife/pkg/material"
	"github.com/df07/go-stilllife/pkg/renderer"
	"github.com/df07/go-stilllife/pkg/scene"
	"github.com/df07/go-stilllife/pkg/texture"
	"github.com/df07/go-stilllife/pkg/viewport"
)

// StillLife is the application context. Scene, camera, controls and textures
// belong to the loop goroutine: touch them from Loop.Post callbacks, or
// before Run starts.
type StillLife struct {
	Config config.Config
	Logger core.Logger

	Queue     *loop.Queue
	Loader    *texture.Loader
	Watcher   *texture.Watcher // nil unless Config.WatchTextures
	Textures  *texture.Set
	Materials *material.Set

	Objects  *scene.StillLife
	Scene    *scene.Scene
	Camera   *camera.Perspective
	Controls *controls.Orbit
	Renderer *renderer.Renderer
	Viewport *viewport.Viewport
	Loop     *loop.Loop

	closeOnce sync.Once
}

// New builds the still life. Texture decoding starts immediately; textures
// appear in frames as their decodes complete.
func New(cfg config.Config, logger core.Logger) (*StillLife, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = core.NewNopLogger()
	}

	a := &StillLife{
		Config: cfg,
		Logger: logger,
		Queue:  loop.NewQueue(),
	}

	a.Loader = texture.NewLoader(a.Queue, logger, cfg.MaxTextureSize)
	a.Textures = texture.LoadSet(a.Loader, cfg.TextureDir)
	a.Materials = material.NewSet(a.Textures)

	objects, err := scene.NewStillLife(a.Materials, float64(cfg.Width)/float64(cfg.Height))
	if err != nil {
		a.Loader.Close()
		return nil, fmt.Errorf("failed to build scene: %w", err)
	}
	a.Objects = objects
	a.Scene = objects.Scene
	a.Camera = objects.Camera

	a.Controls = controls.NewOrbit(a.Camera, float64(cfg.Height))
	a.Controls.EnableDamping = cfg.Damping
	a.Controls.DampingFactor = cfg.DampingFactor

	a.Renderer = renderer.New(renderer.Options{
		TileSize: cfg.TileSize,
		Workers:  cfg.Workers,
		Logger:   logger,
	})

	a.Viewport, err = viewport.New(a.Camera, a.Renderer, cfg.Width, cfg.Height, cfg.DevicePixelRatio)
	if err != nil {
		a.Renderer.Dispose()
		a.Loader.Close()
		return nil, err
	}

	a.Loop = loop.New(a.Queue, a.Scene, a.Camera, a.Controls, a.Renderer, logger)

	if cfg.WatchTextures {
		a.Watcher, err = texture.NewWatcher(a.Loader, logger)
		if err != nil {
			// Hot reload is optional; keep rendering without it
			logger.Warnf("texture hot reload disabled: %v", err)
			a.Watcher = nil
		}
	}

	for _, info := range a.Scene.Describe() {
		logger.Debugf("mesh %s", info)
	}
	logger.Infof("still life ready: %d meshes, %d textures loading from %s",
		len(a.Scene.Meshes), len(a.Textures.All()), cfg.TextureDir)
	return a, nil
}

// Resize forwards a surface change to the viewport and keeps the orbit
// rotation speed proportional to the new height. Call it on the loop
// goroutine.
func (a *StillLife) Resize(width, height int, deviceRatio float64) error {
	if err := a.Viewport.Resize(width, height, deviceRatio); err != nil {
		return err
	}
	a.Controls.ViewportHeight = float64(height)
	return nil
}

// WaitForTextures blocks until every texture decode has finished. The
// results bind on the next tick.
func (a *StillLife) WaitForTextures(ctx context.Context) error {
	return a.Loader.Wait(ctx)
}

// Run drives the loop at the configured frame rate until ctx is done or
// Close is called
func (a *StillLife) Run(ctx context.Context) error {
	if a.Watcher != nil {
		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go a.Watcher.Run(watchCtx)
	}

	ticker := loop.NewTicker(a.Config.FPS)
	defer ticker.Stop()

	err := a.Loop.Run(ctx, ticker.C)
	if loop.IsStop(err) || errors.Is(err, renderer.ErrDisposed) {
		return nil
	}
	return err
}

// Frame returns the most recent frame
func (a *StillLife) Frame() loop.Frame {
	return a.Loop.Last()
}

// Close stops the loop and releases the renderer and the texture pipeline.
// It is safe to call more than once.
func (a *StillLife) Close() error {
	var err error
	a.closeOnce.Do(func() {
		a.Loop.Stop()
		if a.Watcher != nil {
			err = a.Watcher.Close()
		}
		a.Loader.Close()
		a.Renderer.Dispose()
		a.Logger.Debugf("still life closed after %d frames", a.Loop.Ticks())
	})
	return err
}

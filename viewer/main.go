// Command viewer shows the still life in a desktop window. Drag with the left
// button to orbit, the right button to pan, and scroll to zoom.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/df07/go-stilllife/pkg/app"
	"github.com/df07/go-stilllife/pkg/config"
	"github.com/df07/go-stilllife/pkg/core"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (optional)")
	textureDir := flag.String("textures", "", "Texture directory (overrides config)")
	watch := flag.Bool("watch", false, "Reload textures when their files change")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Printf("Error loading config: %v", err)
			os.Exit(1)
		}
	}
	if *textureDir != "" {
		cfg.TextureDir = *textureDir
	}
	if *watch {
		cfg.WatchTextures = true
	}

	logger := core.NewDefaultLogger(core.ParseLevel(cfg.LogLevel))
	still, err := app.New(cfg, logger)
	if err != nil {
		log.Printf("Error creating still life: %v", err)
		os.Exit(1)
	}
	defer still.Close()

	if err := runWindow(still); err != nil {
		log.Printf("Viewer stopped: %v", err)
		os.Exit(1)
	}
}

// runWindow blocks until the window closes
func runWindow(still *app.StillLife) error {
	g := newGame(still)
	defer g.close()

	ebiten.SetWindowTitle("Still Life")
	ebiten.SetWindowSize(still.Config.Width, still.Config.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(still.Config.FPS)
	return ebiten.RunGame(g)
}

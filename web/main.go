package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/df07/go-stilllife/pkg/app"
	"github.com/df07/go-stilllife/pkg/config"
	"github.com/df07/go-stilllife/pkg/core"
	"github.com/df07/go-stilllife/web/server"
)

func main() {
	// Parse command line flags
	port := flag.Int("port", 8080, "Port to serve on")
	configPath := flag.String("config", "", "YAML config file (optional)")
	staticDir := flag.String("static", "static", "Directory with the web client")
	textureDir := flag.String("textures", "", "Texture directory (overrides config)")
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

	console := server.NewConsole(200)
	logger := server.NewWebLogger(core.NewDefaultLogger(core.ParseLevel(cfg.LogLevel)), console)

	still, err := app.New(cfg, logger)
	if err != nil {
		log.Printf("Error creating still life: %v", err)
		os.Exit(1)
	}
	defer still.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	webServer := server.NewServer(still, console, *port, *staticDir)

	go func() {
		if err := still.Run(ctx); err != nil {
			logger.Errorf("render loop: %v", err)
		}
		stop()
	}()

	log.Printf("Still Life Web Server")
	log.Printf("Visit http://localhost:%d to view the scene", *port)

	if err := webServer.Start(ctx); err != nil {
		log.Printf("Error starting server: %v", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-stilllife/pkg/app"
	"github.com/df07/go-stilllife/pkg/config"
	"github.com/df07/go-stilllife/pkg/core"
	"github.com/df07/go-stilllife/pkg/renderer"
)

// options are the command line settings layered over the config file
type options struct {
	configPath  string
	textureDir  string
	width       int
	height      int
	pixelRatio  float64
	frames      int
	outputDir   string
	timeout     time.Duration
	logLevel    string
	orbitDegree float64
}

func main() {
	opts := options{}
	flag.StringVar(&opts.configPath, "config", "", "YAML config file (optional)")
	flag.StringVar(&opts.textureDir, "textures", "", "Texture directory (overrides config)")
	flag.IntVar(&opts.width, "width", 0, "Output width in logical pixels (overrides config)")
	flag.IntVar(&opts.height, "height", 0, "Output height in logical pixels (overrides config)")
	flag.Float64Var(&opts.pixelRatio, "dpr", 0, "Device pixel ratio (overrides config, capped at 2)")
	flag.IntVar(&opts.frames, "frames", 1, "Number of frames to render")
	flag.StringVar(&opts.outputDir, "output", "output", "Directory for the rendered PNG")
	flag.DurationVar(&opts.timeout, "timeout", 30*time.Second, "Maximum time to wait for textures")
	flag.StringVar(&opts.logLevel, "log", "", "Log level: debug, info, warn or error (overrides config)")
	flag.Float64Var(&opts.orbitDegree, "orbit", 0, "Orbit the camera left by this many degrees (applied gradually when damping is on)")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	if *help {
		fmt.Println("Still Life Renderer")
		fmt.Println("Usage: stilllife [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		fmt.Println()
		fmt.Println("Output will be saved to <output>/stilllife_<timestamp>.png")
		return
	}

	filename, err := run(opts)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Render saved as %s\n", filename)
}

// loadConfig reads the config file, if any, and applies flag overrides
func loadConfig(opts options) (config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		cfg, err = config.Load(opts.configPath)
		if err != nil {
			return config.Config{}, err
		}
	}

	if opts.textureDir != "" {
		cfg.TextureDir = opts.textureDir
	}
	if opts.width > 0 {
		cfg.Width = opts.width
	}
	if opts.height > 0 {
		cfg.Height = opts.height
	}
	if opts.pixelRatio > 0 {
		cfg.DevicePixelRatio = opts.pixelRatio
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	// Nothing reloads during a one-shot render
	cfg.WatchTextures = false

	return cfg, cfg.Validate()
}

// run renders opts.frames frames once every texture has settled and writes
// the last one as a PNG. It returns the written file name.
func run(opts options) (string, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return "", err
	}
	if opts.frames <= 0 {
		return "", fmt.Errorf("frames must be positive, got %d", opts.frames)
	}

	logger := core.NewDefaultLogger(core.ParseLevel(cfg.LogLevel))
	still, err := app.New(cfg, logger)
	if err != nil {
		return "", err
	}
	defer still.Close()

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()
	if err := still.WaitForTextures(ctx); err != nil {
		logger.Warnf("rendering before all textures finished: %v", err)
	}

	if opts.orbitDegree != 0 {
		still.Controls.RotateLeft(mgl64.DegToRad(opts.orbitDegree))
	}

	startTime := time.Now()
	if err := still.Loop.RunFrames(opts.frames); err != nil {
		return "", fmt.Errorf("render failed: %w", err)
	}
	renderTime := time.Since(startTime)

	frame := still.Frame()
	stats := still.Renderer.LastStats()
	logger.Infof("rendered %d frames in %v (%dx%d, %d/%d textures, %.0f%% coverage, luminance %.3f)",
		opts.frames, renderTime, stats.Width, stats.Height,
		still.Textures.ReadyCount(), len(still.Textures.All()),
		stats.Coverage()*100, renderer.CalculateAverageLuminance(frame.Image))

	if err := os.MkdirAll(opts.outputDir, 0755); err != nil {
		return "", fmt.Errorf("error creating output directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(opts.outputDir, fmt.Sprintf("stilllife_%s.png", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("error creating file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, frame.Image); err != nil {
		return "", fmt.Errorf("error saving PNG: %w", err)
	}
	return filename, nil
}

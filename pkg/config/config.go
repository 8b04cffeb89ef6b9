// Package config holds the settings shared by every still-life host.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the application configuration. Zero-valued fields in a file keep
// their defaults only when the key is absent.
type Config struct {
	// initial surface size in logical pixels
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	// device pixel density reported by the host, capped at 2 by the viewport
	DevicePixelRatio float64 `yaml:"devicePixelRatio"`

	// directory holding wood/ and metal/ texture folders
	TextureDir string `yaml:"textureDir"`

	// textures larger than this on either edge are downscaled, 0 disables
	MaxTextureSize int `yaml:"maxTextureSize"`

	// reload textures when their files change
	WatchTextures bool `yaml:"watchTextures"`

	FPS      int `yaml:"fps"`
	TileSize int `yaml:"tileSize"`
	Workers  int `yaml:"workers"` // 0 means one per CPU

	Damping       bool    `yaml:"damping"`
	DampingFactor float64 `yaml:"dampingFactor"`

	// debug, info, warn or error
	LogLevel string `yaml:"logLevel"`
}

// Default returns the configuration used when no file is given
func Default() Config {
	return Config{
		Width:            800,
		Height:           600,
		DevicePixelRatio: 1,
		TextureDir:       "textures",
		MaxTextureSize:   1024,
		FPS:              60,
		TileSize:         32,
		Damping:          true,
		DampingFactor:    0.05,
		LogLevel:         "info",
	}
}

// Load reads a YAML file over Default and validates the result
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over Default and validates the result. Unknown keys are
// rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Write encodes the configuration as YAML
func (c Config) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return enc.Close()
}

// Validate reports every invalid field at once
func (c Config) Validate() error {
	var errs []error
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("size must be positive, got %dx%d", c.Width, c.Height))
	}
	if c.DevicePixelRatio <= 0 {
		errs = append(errs, fmt.Errorf("devicePixelRatio must be positive, got %v", c.DevicePixelRatio))
	}
	if c.TextureDir == "" {
		errs = append(errs, errors.New("textureDir must be set"))
	}
	if c.MaxTextureSize < 0 {
		errs = append(errs, fmt.Errorf("maxTextureSize must not be negative, got %d", c.MaxTextureSize))
	}
	if c.FPS <= 0 {
		errs = append(errs, fmt.Errorf("fps must be positive, got %d", c.FPS))
	}
	if c.TileSize <= 0 {
		errs = append(errs, fmt.Errorf("tileSize must be positive, got %d", c.TileSize))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	if c.DampingFactor <= 0 || c.DampingFactor > 1 {
		errs = append(errs, fmt.Errorf("dampingFactor must be in (0, 1], got %v", c.DampingFactor))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown logLevel %q", c.LogLevel))
	}
	return errors.Join(errs...)
}

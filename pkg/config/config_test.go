package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.Damping)
	assert.Equal(t, 0.05, cfg.DampingFactor)
	assert.Equal(t, "textures", cfg.TextureDir)
}

func TestParseMergesOverDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
width: 1280
height: 720
devicePixelRatio: 3
textureDir: assets/textures
watchTextures: true
logLevel: debug
`))
	require.NoError(t, err)

	assert.Equal(t, 1280, cfg.Width)
	assert.Equal(t, 720, cfg.Height)
	assert.Equal(t, 3.0, cfg.DevicePixelRatio)
	assert.Equal(t, "assets/textures", cfg.TextureDir)
	assert.True(t, cfg.WatchTextures)
	assert.Equal(t, "debug", cfg.LogLevel)

	// untouched keys keep defaults
	assert.Equal(t, 60, cfg.FPS)
	assert.Equal(t, 32, cfg.TileSize)
	assert.True(t, cfg.Damping)
}

func TestParseEmptyDocument(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"unknown key", "colour: red", "colour"},
		{"bad type", "width: wide", "failed to parse config"},
		{"zero size", "width: 0", "size must be positive"},
		{"bad fps", "fps: -1", "fps must be positive"},
		{"bad damping", "dampingFactor: 2", "dampingFactor"},
		{"bad level", "logLevel: loud", "unknown logLevel"},
		{"missing textures", `textureDir: ""`, "textureDir must be set"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateReportsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.FPS = 0
	cfg.TileSize = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fps")
	assert.Contains(t, err.Error(), "tileSize")
}

func TestLoadAndWriteRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Width = 1024
	cfg.Workers = 4

	var buf bytes.Buffer
	require.NoError(t, cfg.Write(&buf))

	path := filepath.Join(t.TempDir(), "stilllife.yaml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "failed to read config")
}

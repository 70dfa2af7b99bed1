// Package config holds runtime configuration for the viewer, loaded from an
// optional TOML file with command-line overrides applied on top.
package config

import (
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all runtime configuration.
type Config struct {
	// Source selects the frame source: "pattern" or "playback".
	Source string `toml:"source"`
	// PlaybackDir is the capture directory replayed by the playback source.
	PlaybackDir string `toml:"playback_dir"`

	Width  int `toml:"width"`
	Height int `toml:"height"`
	FPS    int `toml:"fps"`

	// Palette colors grayscale sensor output for display.
	Palette string `toml:"palette"`
	// BufferSize is the pacer ring capacity.
	BufferSize int `toml:"buffer_size"`
	// Quality is the JPEG quality for captures and the remote stream.
	Quality int `toml:"quality"`

	// Listen enables the HTTP endpoint (remote view + metrics) when set,
	// e.g. ":8080". Empty disables it.
	Listen string `toml:"listen"`
	// CaptureDir overrides the primary capture storage directory.
	CaptureDir string `toml:"capture_dir"`

	Overlay  bool   `toml:"overlay"`
	LogLevel string `toml:"log_level"`

	MinTemp float64 `toml:"min_temp"`
	MaxTemp float64 `toml:"max_temp"`
}

// Default returns the configuration used when no file or flags are given.
func Default() Config {
	return Config{
		Source:     "pattern",
		Width:      256,
		Height:     192,
		FPS:        30,
		Palette:    "iron",
		BufferSize: 5,
		Quality:    85,
		Overlay:    true,
		LogLevel:   "info",
		MinTemp:    0,
		MaxTemp:    150,
	}
}

// Load reads a TOML config file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := toml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configurations the viewer cannot start with.
func (c *Config) Validate() error {
	switch c.Source {
	case "pattern":
	case "playback":
		if c.PlaybackDir == "" {
			return fmt.Errorf("config: playback source requires playback_dir")
		}
	default:
		return fmt.Errorf("config: unknown source %q", c.Source)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("config: invalid resolution %dx%d", c.Width, c.Height)
	}
	if c.BufferSize <= 0 {
		return fmt.Errorf("config: buffer_size must be positive, got %d", c.BufferSize)
	}
	if c.Quality < 1 || c.Quality > 100 {
		return fmt.Errorf("config: quality must be 1-100, got %d", c.Quality)
	}
	if c.MaxTemp <= c.MinTemp {
		return fmt.Errorf("config: max_temp %v must exceed min_temp %v", c.MaxTemp, c.MinTemp)
	}
	return nil
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmptyPathGivesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load(\"\") = %+v, want defaults", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thermalview.toml")
	body := `
source = "playback"
playback_dir = "/data/captures"
palette = "rainbow"
buffer_size = 8
listen = ":9090"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Source != "playback" || cfg.PlaybackDir != "/data/captures" {
		t.Errorf("source not applied: %+v", cfg)
	}
	if cfg.Palette != "rainbow" || cfg.BufferSize != 8 || cfg.Listen != ":9090" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	// Untouched keys keep their defaults.
	if cfg.Width != 256 || cfg.Quality != 85 {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadRejectsBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("source = [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load accepted malformed TOML")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"unknown source", func(c *Config) { c.Source = "rtsp" }, true},
		{"playback without dir", func(c *Config) { c.Source = "playback" }, true},
		{"playback with dir", func(c *Config) { c.Source = "playback"; c.PlaybackDir = "/tmp" }, false},
		{"zero buffer", func(c *Config) { c.BufferSize = 0 }, true},
		{"quality too high", func(c *Config) { c.Quality = 101 }, true},
		{"inverted temp range", func(c *Config) { c.MinTemp = 50; c.MaxTemp = 10 }, true},
		{"zero width", func(c *Config) { c.Width = 0 }, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

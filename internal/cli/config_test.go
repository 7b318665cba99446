package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/apiary"
	"github.com/spf13/viper"
)

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(newViper())
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Width != 1280 || cfg.Height != 720 {
		t.Errorf("size = %dx%d, want 1280x720", cfg.Width, cfg.Height)
	}
	if cfg.Title != "Apiary" || cfg.PresentMode != "vsync" {
		t.Errorf("title %q present mode %q", cfg.Title, cfg.PresentMode)
	}
	if !cfg.ReconfigureOnResize || !cfg.Autoplay || !cfg.Control.Enabled {
		t.Errorf("boolean defaults = %+v", cfg)
	}
	if cfg.ForceSoftware || cfg.Profiling || cfg.ValidateShaders || cfg.Debug {
		t.Errorf("boolean defaults = %+v", cfg)
	}
}

func TestLoadConfigBundledFile(t *testing.T) {
	v := newViper()
	v.SetConfigType("toml")
	if err := v.ReadConfig(strings.NewReader(apiary.DefaultConfig)); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(v)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 1280 || cfg.Shaders.Vertex != "" || cfg.Control.Socket != "" {
		t.Errorf("bundled config = %+v", cfg)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apiary.toml")
	data := `
width = 640
height = 480
title = "  "
present_mode = "mailbox"
autoplay = false

[shaders]
vertex = "/tmp/v.wgsl"

[control]
enabled = false

[headless]
api = "vulkan"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(v)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 640 || cfg.Height != 480 {
		t.Errorf("size = %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Title != "Apiary" {
		t.Errorf("blank title = %q, want default", cfg.Title)
	}
	if cfg.PresentMode != "mailbox" || cfg.Autoplay || cfg.Control.Enabled {
		t.Errorf("overrides = %+v", cfg)
	}
	if cfg.Shaders.Vertex != "/tmp/v.wgsl" || cfg.Headless.API != "vulkan" {
		t.Errorf("nested overrides = %+v", cfg)
	}
}

func TestLoadConfigRejects(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{"zero width", "width", 0},
		{"negative height", "height", -1},
		{"unknown present mode", "present_mode", "sometimes"},
		{"negative min width", "min_width", -10},
		{"negative max height", "max_height", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newViper()
			v.Set(tt.key, tt.val)
			if _, err := LoadConfig(v); err == nil {
				t.Errorf("LoadConfig accepted %s = %v", tt.key, tt.val)
			}
		})
	}
}

func TestLoadConfigSizeLimits(t *testing.T) {
	v := newViper()
	v.Set("min_width", 320)
	v.Set("max_height", 1080)
	cfg, err := LoadConfig(v)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MinWidth != 320 || cfg.MinHeight != 0 || cfg.MaxWidth != 0 || cfg.MaxHeight != 1080 {
		t.Errorf("limits = %d %d %d %d", cfg.MinWidth, cfg.MinHeight, cfg.MaxWidth, cfg.MaxHeight)
	}

	v.Set("max_width", 200)
	if _, err := LoadConfig(v); err == nil {
		t.Error("LoadConfig accepted max_width below min_width")
	}
}

func TestEngineOptionsMissingShader(t *testing.T) {
	cfg, err := LoadConfig(newViper())
	if err != nil {
		t.Fatal(err)
	}
	cfg.Shaders.Fragment = filepath.Join(t.TempDir(), "missing.wgsl")
	if _, err := engineOptions(cfg); err == nil {
		t.Error("engineOptions accepted a missing shader file")
	}
}

func TestRotatingWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "apiary.log")
	w, err := rotatingWriter(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("hello\n")); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Lstat(path); err != nil {
		t.Errorf("link %s not created: %v", path, err)
	}
}

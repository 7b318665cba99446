package cli

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/apiary/common"
	"github.com/Carmen-Shannon/apiary/engine/gpu"
	"github.com/spf13/viper"
)

// Config is the resolved process configuration.
type Config struct {
	Width               int            `mapstructure:"width"`
	Height              int            `mapstructure:"height"`
	MinWidth            int            `mapstructure:"min_width"`
	MinHeight           int            `mapstructure:"min_height"`
	MaxWidth            int            `mapstructure:"max_width"`
	MaxHeight           int            `mapstructure:"max_height"`
	Title               string         `mapstructure:"title"`
	PresentMode         string         `mapstructure:"present_mode"`
	ForceSoftware       bool           `mapstructure:"force_software"`
	ReconfigureOnResize bool           `mapstructure:"reconfigure_on_resize"`
	Autoplay            bool           `mapstructure:"autoplay"`
	Profiling           bool           `mapstructure:"profiling"`
	ValidateShaders     bool           `mapstructure:"validate_shaders"`
	Debug               bool           `mapstructure:"debug"`
	Shaders             ShadersConfig  `mapstructure:"shaders"`
	Control             ControlConfig  `mapstructure:"control"`
	Log                 LogConfig      `mapstructure:"log"`
	Headless            HeadlessConfig `mapstructure:"headless"`
}

type ShadersConfig struct {
	Vertex   string `mapstructure:"vertex"`
	Fragment string `mapstructure:"fragment"`
}

type ControlConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Socket  string `mapstructure:"socket"`
}

type LogConfig struct {
	File string `mapstructure:"file"`
}

type HeadlessConfig struct {
	API string `mapstructure:"api"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("width", 1280)
	v.SetDefault("height", 720)
	v.SetDefault("min_width", 0)
	v.SetDefault("min_height", 0)
	v.SetDefault("max_width", 0)
	v.SetDefault("max_height", 0)
	v.SetDefault("title", "Apiary")
	v.SetDefault("present_mode", "vsync")
	v.SetDefault("force_software", false)
	v.SetDefault("reconfigure_on_resize", true)
	v.SetDefault("autoplay", true)
	v.SetDefault("profiling", false)
	v.SetDefault("validate_shaders", false)
	v.SetDefault("debug", false)
	v.SetDefault("shaders.vertex", "")
	v.SetDefault("shaders.fragment", "")
	v.SetDefault("control.enabled", true)
	v.SetDefault("control.socket", "")
	v.SetDefault("log.file", "")
	v.SetDefault("headless.api", "")
}

// LoadConfig decodes v into a Config, filling empty strings with their defaults.
//
// Parameters:
//   - v: the viper instance holding defaults, file values and environment overrides
//
// Returns:
//   - Config: the resolved configuration
//   - error: error if decoding fails or a value is out of range
func LoadConfig(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.Title = common.Coalesce(strings.TrimSpace(cfg.Title), "Apiary")
	cfg.PresentMode = common.Coalesce(strings.TrimSpace(cfg.PresentMode), "vsync")

	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Config{}, fmt.Errorf("invalid window size %dx%d", cfg.Width, cfg.Height)
	}
	if err := checkLimits("width", cfg.MinWidth, cfg.MaxWidth); err != nil {
		return Config{}, err
	}
	if err := checkLimits("height", cfg.MinHeight, cfg.MaxHeight); err != nil {
		return Config{}, err
	}
	if _, err := gpu.ParsePresentMode(cfg.PresentMode); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// checkLimits rejects negative size limits and a max below its min. Zero means unconstrained.
func checkLimits(axis string, lo, hi int) error {
	if lo < 0 || hi < 0 {
		return fmt.Errorf("invalid %s limits min=%d max=%d", axis, lo, hi)
	}
	if lo > 0 && hi > 0 && hi < lo {
		return fmt.Errorf("max_%s %d is below min_%s %d", axis, hi, axis, lo)
	}
	return nil
}

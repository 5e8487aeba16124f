// Package config loads the optional atspi-inspector configuration file.
// Command-line flags take precedence over everything loaded here.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/mj1618/atspi-inspector/internal/pick"
	"github.com/mj1618/atspi-inspector/internal/render"
	"gopkg.in/yaml.v3"
)

// Config is the file format.
type Config struct {
	LogLevel    string         `toml:"log_level"     json:"log_level"     yaml:"log_level"`
	BusAddress  string         `toml:"bus_address"   json:"bus_address"   yaml:"bus_address"`
	Fixture     string         `toml:"fixture"       json:"fixture"       yaml:"fixture"`
	Viewport    ViewportConfig `toml:"viewport"      json:"viewport"      yaml:"viewport"`
	DeviceScale float64        `toml:"device_scale"  json:"device_scale"  yaml:"device_scale"`
	// BuildTimeout bounds one-shot builds ("30s"). Empty or "0" means none.
	BuildTimeout string      `toml:"build_timeout" json:"build_timeout" yaml:"build_timeout"`
	Colors       ColorConfig `toml:"colors"        json:"colors"        yaml:"colors"`
}

// ViewportConfig is the overlay size in device pixels.
type ViewportConfig struct {
	Width  int `toml:"width"  json:"width"  yaml:"width"`
	Height int `toml:"height" json:"height" yaml:"height"`
}

// ColorConfig holds overlay colors as #rrggbbaa.
type ColorConfig struct {
	Outline string `toml:"outline" json:"outline" yaml:"outline"`
	Picked  string `toml:"picked"  json:"picked"  yaml:"picked"`
	Hovered string `toml:"hovered" json:"hovered" yaml:"hovered"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:     "warn",
		DeviceScale:  1,
		BuildTimeout: "60s",
		Colors: ColorConfig{
			Outline: render.FormatColor(render.DefaultPalette.Outline),
			Picked:  render.FormatColor(render.DefaultPalette.Picked),
			Hovered: render.FormatColor(render.DefaultPalette.Hovered),
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/atspi-inspector/config.toml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "atspi-inspector", "config.toml")
}

// Load reads configuration from path. An empty path means DefaultPath, which
// may be absent; an explicit path must exist. The format follows the
// extension (.toml, .json, .yaml, .yml); anything else is read as TOML.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path == "" {
		cfg.ApplyEnvOverrides()
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(path, data, cfg); err != nil {
			return nil, err
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch filepath.Ext(path) {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("decode JSON: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("decode YAML: %w", err)
		}
	default:
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("decode TOML: %w", err)
		}
	}
	return nil
}

// ApplyEnvOverrides applies ATSPI_INSPECTOR_* environment variables.
// AT_SPI_BUS_ADDRESS is honoured by bus discovery itself.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("ATSPI_INSPECTOR_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("ATSPI_INSPECTOR_FIXTURE"); v != "" {
		c.Fixture = v
	}
}

// Validate checks every field that is parsed later.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if _, err := c.Timeout(); err != nil {
		return err
	}
	if c.Viewport.Width < 0 || c.Viewport.Height < 0 {
		return fmt.Errorf("viewport: negative size %dx%d", c.Viewport.Width, c.Viewport.Height)
	}
	if c.DeviceScale < 0 {
		return fmt.Errorf("device_scale: must not be negative, got %g", c.DeviceScale)
	}
	if _, err := c.Palette(); err != nil {
		return err
	}
	return nil
}

// Timeout returns the parsed build timeout; zero means none.
func (c *Config) Timeout() (time.Duration, error) {
	s := strings.TrimSpace(c.BuildTimeout)
	if s == "" || s == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("build_timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("build_timeout: must not be negative, got %s", d)
	}
	return d, nil
}

// PickViewport returns the configured overlay viewport.
func (c *Config) PickViewport() pick.Viewport {
	return pick.Viewport{Width: c.Viewport.Width, Height: c.Viewport.Height, DeviceScale: c.DeviceScale}
}

// Palette parses the configured colors. Empty entries keep the default.
func (c *Config) Palette() (render.Palette, error) {
	pal := render.DefaultPalette
	var err error
	if c.Colors.Outline != "" {
		if pal.Outline, err = render.ParseColor(c.Colors.Outline); err != nil {
			return render.Palette{}, fmt.Errorf("colors.outline: %w", err)
		}
	}
	if c.Colors.Picked != "" {
		if pal.Picked, err = render.ParseColor(c.Colors.Picked); err != nil {
			return render.Palette{}, fmt.Errorf("colors.picked: %w", err)
		}
	}
	if c.Colors.Hovered != "" {
		if pal.Hovered, err = render.ParseColor(c.Colors.Hovered); err != nil {
			return render.Palette{}, fmt.Errorf("colors.hovered: %w", err)
		}
	}
	return pal, nil
}

// ParseLevel maps a level name to a slog.Level. Empty means warn.
func ParseLevel(s string) (slog.Level, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return slog.LevelWarn, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

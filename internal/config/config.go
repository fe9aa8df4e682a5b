// Package config loads the optional playlist-progression configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/justestif/go-playlist-progression/internal/chart"
	"github.com/justestif/go-playlist-progression/internal/progression"
)

// ErrInvalidGeometry is returned when the chart size leaves no plot area.
var ErrInvalidGeometry = errors.New("invalid chart geometry")

// Config represents the optional configuration file.
type Config struct {
	Server ServerConfig `toml:"server"`
	Chart  ChartConfig  `toml:"chart"`
	Theme  ThemeConfig  `toml:"theme"`
}

// ServerConfig holds web server defaults.
type ServerConfig struct {
	Addr        *string `toml:"addr"`
	RedirectURL *string `toml:"redirect_url"`
}

// ChartConfig holds canvas overrides in SVG user units.
type ChartConfig struct {
	Width   *float64 `toml:"width"`
	Height  *float64 `toml:"height"`
	Padding *float64 `toml:"padding"`
}

// ThemeConfig holds optional colour overrides as hex strings.
type ThemeConfig struct {
	Tempo       *string  `toml:"tempo"`
	Energy      *string  `toml:"energy"`
	Grid        *string  `toml:"grid"`
	GridOpacity *float64 `toml:"grid_opacity"`
	Text        *string  `toml:"text"`
	Caption     *string  `toml:"caption"`
}

// Path returns the resolved path to the config file.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "playlist-progression", "config.toml")
}

// Load reads the config file at path, or at Path() when path is empty.
// A missing file at Path() yields a zero Config; a missing file at an
// explicit path is an error.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = Path()
	}
	if path == "" {
		return Config{}, nil
	}

	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("decoding %s: %w", path, err)
	}
	return cfg, nil
}

// ProgressionOptions applies the overrides to the default chart layout.
func (c Config) ProgressionOptions() (progression.Options, error) {
	opts := progression.DefaultOptions()

	g := &opts.Geometry
	setFloat(&g.Width, c.Chart.Width)
	setFloat(&g.Height, c.Chart.Height)
	setFloat(&g.Padding, c.Chart.Padding)
	if g.Padding < 0 || g.PlotWidth() <= 0 || g.PlotHeight() <= 0 {
		return progression.Options{}, fmt.Errorf("%w: %gx%g with padding %g", ErrInvalidGeometry, g.Width, g.Height, g.Padding)
	}

	theme := &opts.Theme
	for _, o := range []struct {
		name string
		val  *string
		dst  *colorful.Color
	}{
		{"grid", c.Theme.Grid, &theme.Grid},
		{"text", c.Theme.Text, &theme.Text},
		{"caption", c.Theme.Caption, &theme.Caption},
	} {
		if err := setColor(o.dst, o.val); err != nil {
			return progression.Options{}, fmt.Errorf("theme.%s: %w", o.name, err)
		}
	}
	if op := c.Theme.GridOpacity; op != nil {
		if *op < 0 || *op > 1 {
			return progression.Options{}, fmt.Errorf("theme.grid_opacity %g: must be between 0 and 1", *op)
		}
		theme.GridOpacity = *op
	}

	var err error
	if opts.TempoTheme, err = strokeOverride(*theme, c.Theme.Tempo); err != nil {
		return progression.Options{}, fmt.Errorf("theme.tempo: %w", err)
	}
	if opts.EnergyTheme, err = strokeOverride(*theme, c.Theme.Energy); err != nil {
		return progression.Options{}, fmt.Errorf("theme.energy: %w", err)
	}
	return opts, nil
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setColor(dst *colorful.Color, v *string) error {
	if v == nil {
		return nil
	}
	col, err := chart.ParseColor(*v)
	if err != nil {
		return err
	}
	*dst = col
	return nil
}

// strokeOverride returns base with a different curve colour, or nil when
// no colour is set.
func strokeOverride(base chart.Theme, v *string) (*chart.Theme, error) {
	if v == nil {
		return nil, nil
	}
	if err := setColor(&base.Stroke, v); err != nil {
		return nil, err
	}
	return &base, nil
}

// Addr returns the configured listen address or def.
func (c Config) Addr(def string) string {
	if c.Server.Addr != nil && *c.Server.Addr != "" {
		return *c.Server.Addr
	}
	return def
}

// RedirectURL returns the configured OAuth callback or def.
func (c Config) RedirectURL(def string) string {
	if c.Server.RedirectURL != nil && *c.Server.RedirectURL != "" {
		return *c.Server.RedirectURL
	}
	return def
}

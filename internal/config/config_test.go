package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justestif/go-playlist-progression/internal/chart"
	"github.com/justestif/go-playlist-progression/internal/config"
	"github.com/justestif/go-playlist-progression/internal/progression"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	configDir := filepath.Join(dir, "playlist-progression")
	require.NoError(t, os.MkdirAll(configDir, 0o755))
	path := filepath.Join(configDir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestPath_XDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	assert.Equal(t, filepath.Join(dir, "playlist-progression", "config.toml"), config.Path())
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Nil(t, cfg.Chart.Width)
	assert.Nil(t, cfg.Theme.Tempo)
	assert.Nil(t, cfg.Server.Addr)
}

func TestLoad_FullConfig(t *testing.T) {
	writeConfig(t, `
[server]
addr = "0.0.0.0:9000"

[chart]
width = 600.0
height = 300.0
padding = 50.0

[theme]
tempo = "#ff0000"
energy = "#0000ff"
grid_opacity = 0.5
`)

	cfg, err := config.Load("")
	require.NoError(t, err)

	require.NotNil(t, cfg.Chart.Width)
	assert.Equal(t, 600.0, *cfg.Chart.Width)
	require.NotNil(t, cfg.Theme.Tempo)
	assert.Equal(t, "#ff0000", *cfg.Theme.Tempo)
	assert.Equal(t, "0.0.0.0:9000", cfg.Addr("127.0.0.1:8080"))

	// Unset fields should remain nil.
	assert.Nil(t, cfg.Theme.Caption)
	assert.Nil(t, cfg.Server.RedirectURL)
}

func TestLoad_ExplicitPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("[chart]\npadding = 20.0\n"), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Chart.Padding)
	assert.Equal(t, 20.0, *cfg.Chart.Padding)
}

func TestLoad_ExplicitPathMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "missing.toml")

	_, err := config.Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "missing.toml")
}

func TestLoad_InvalidTOML(t *testing.T) {
	writeConfig(t, "[chart\nwidth = ")

	_, err := config.Load("")
	assert.Error(t, err)
}

func TestProgressionOptions_Defaults(t *testing.T) {
	opts, err := config.Config{}.ProgressionOptions()
	require.NoError(t, err)

	assert.Equal(t, progression.DefaultOptions(), opts)
}

func TestProgressionOptions_Overrides(t *testing.T) {
	writeConfig(t, `
[chart]
width = 600.0

[theme]
tempo = "#ff0000"
grid = "#000000"
`)
	cfg, err := config.Load("")
	require.NoError(t, err)

	opts, err := cfg.ProgressionOptions()
	require.NoError(t, err)

	assert.Equal(t, 600.0, opts.Geometry.Width)
	assert.Equal(t, float64(chart.DefaultHeight), opts.Geometry.Height)
	assert.Equal(t, "#000000", opts.Theme.Grid.Hex())

	require.NotNil(t, opts.TempoTheme)
	assert.Equal(t, "#ff0000", opts.TempoTheme.Stroke.Hex())
	assert.Equal(t, "#000000", opts.TempoTheme.Grid.Hex())
	assert.Nil(t, opts.EnergyTheme)
}

func TestProgressionOptions_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name:    "bad colour",
			content: "[theme]\nenergy = \"green\"\n",
			wantErr: chart.ErrInvalidColor,
		},
		{
			name:    "padding eats plot",
			content: "[chart]\nwidth = 80.0\npadding = 40.0\n",
			wantErr: config.ErrInvalidGeometry,
		},
		{
			name:    "negative padding",
			content: "[chart]\npadding = -1.0\n",
			wantErr: config.ErrInvalidGeometry,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writeConfig(t, tt.content)
			cfg, err := config.Load("")
			require.NoError(t, err)

			_, err = cfg.ProgressionOptions()
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestProgressionOptions_GridOpacityRange(t *testing.T) {
	writeConfig(t, "[theme]\ngrid_opacity = 1.5\n")
	cfg, err := config.Load("")
	require.NoError(t, err)

	_, err = cfg.ProgressionOptions()
	assert.Error(t, err)
}

func TestServerDefaults(t *testing.T) {
	var cfg config.Config
	assert.Equal(t, "127.0.0.1:8080", cfg.Addr("127.0.0.1:8080"))
	assert.Equal(t, "http://x/callback", cfg.RedirectURL("http://x/callback"))
}

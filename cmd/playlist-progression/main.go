// Command playlist-progression charts the tempo and energy flow of Spotify
// playlists, as a web app or as standalone SVG files.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/justestif/go-playlist-progression/internal/config"
	"github.com/justestif/go-playlist-progression/internal/progression"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// rootOptions holds flags shared by every subcommand.
type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	var opts rootOptions

	rootCmd := &cobra.Command{
		Use:           "playlist-progression",
		Short:         "Chart the tempo and energy progression of Spotify playlists",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().
		StringVar(&opts.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/playlist-progression/config.toml)")

	rootCmd.AddCommand(newServeCmd(&opts))
	rootCmd.AddCommand(newRenderCmd(&opts))
	rootCmd.AddCommand(newLogoutCmd())
	return rootCmd
}

// chartFlags overrides the config file's chart size.
type chartFlags struct {
	width   float64
	height  float64
	padding float64
}

func (f *chartFlags) register(fs *pflag.FlagSet) {
	fs.Float64Var(&f.width, "width", 0, "panel width in SVG units (default 400)")
	fs.Float64Var(&f.height, "height", 0, "panel height in SVG units (default 200)")
	fs.Float64Var(&f.padding, "padding", 0, "panel padding in SVG units (default 40)")
}

// apply copies explicitly set flags over the config file values.
func (f *chartFlags) apply(fs *pflag.FlagSet, cfg *config.ChartConfig) {
	if fs.Changed("width") {
		cfg.Width = &f.width
	}
	if fs.Changed("height") {
		cfg.Height = &f.height
	}
	if fs.Changed("padding") {
		cfg.Padding = &f.padding
	}
}

// loadOptions reads the config file and applies chart flags.
func loadOptions(root *rootOptions, fs *pflag.FlagSet, flags *chartFlags) (config.Config, progression.Options, error) {
	cfg, err := config.Load(root.configPath)
	if err != nil {
		return config.Config{}, progression.Options{}, fmt.Errorf("loading config: %w", err)
	}
	if flags != nil {
		flags.apply(fs, &cfg.Chart)
	}
	opts, err := cfg.ProgressionOptions()
	if err != nil {
		return config.Config{}, progression.Options{}, fmt.Errorf("config: %w", err)
	}
	return cfg, opts, nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/justestif/go-playlist-progression/internal/auth"
	"github.com/justestif/go-playlist-progression/internal/config"
	"github.com/justestif/go-playlist-progression/internal/features"
	"github.com/justestif/go-playlist-progression/internal/mood"
	"github.com/justestif/go-playlist-progression/internal/progression"
	"github.com/justestif/go-playlist-progression/internal/spotify"
)

// renderOptions holds the render command flags.
type renderOptions struct {
	out     string
	tempo   []float64
	energy  []float64
	noMoods bool
	groups  int
	charts  chartFlags
}

func newRenderCmd(root *rootOptions) *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "render [playlist-id]",
		Short: "Write a playlist's progression as a standalone SVG",
		Long: `Write a playlist's tempo and energy progression as a standalone SVG.

With a playlist ID the tracks are fetched from Spotify, logging in through
the browser on first use. With --tempo and --energy the given samples are
charted directly.`,
		Example: `  playlist-progression render 37i9dQZF1DXcBWIGoYBM5M --out flow.svg
  playlist-progression render --tempo 100,120,110 --energy 40,80,60`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, chartOpts, err := loadOptions(root, cmd.Flags(), &opts.charts)
			if err != nil {
				return err
			}

			var p progression.Progression
			switch {
			case len(args) == 1:
				p, err = renderPlaylist(cmd.Context(), cmd.ErrOrStderr(), cfg, chartOpts, args[0], opts)
			case cmd.Flags().Changed("tempo") || cmd.Flags().Changed("energy"):
				p, err = progression.FromSamples(opts.tempo, opts.energy, chartOpts)
			default:
				return errors.New("need a playlist ID or --tempo and --energy samples")
			}
			if err != nil {
				return err
			}

			return writeOutput(cmd.OutOrStdout(), opts.out, p)
		},
	}

	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().Float64SliceVar(&opts.tempo, "tempo", nil, "tempo samples in BPM, in order")
	cmd.Flags().Float64SliceVar(&opts.energy, "energy", nil, "energy samples in percent, in order")
	cmd.Flags().BoolVar(&opts.noMoods, "no-moods", false, "do not print the mood summary")
	cmd.Flags().IntVar(&opts.groups, "moods", mood.DefaultConfig().NumGroups, "number of mood groups to look for")
	opts.charts.register(cmd.Flags())
	return cmd
}

// renderPlaylist fetches a playlist and builds its progression. Progress
// and the mood summary go to stderr.
func renderPlaylist(ctx context.Context, stderr io.Writer, cfg config.Config, chartOpts progression.Options, playlistID string, opts renderOptions) (progression.Progression, error) {
	authenticator, err := auth.New(
		auth.WithRedirectURL(cfg.RedirectURL(auth.DefaultRedirectURL)),
		auth.WithOutput(stderr),
	)
	if err != nil {
		return progression.Progression{}, err
	}

	api, err := authenticator.Authenticate(ctx)
	if err != nil {
		return progression.Progression{}, fmt.Errorf("authenticating: %w", err)
	}
	client := spotify.New(api, spotify.WithProgress(stderr))

	playlist, err := client.FetchPlaylist(ctx, playlistID)
	if err != nil {
		return progression.Progression{}, err
	}
	if playlist.Skipped > 0 {
		fmt.Fprintf(stderr, "Skipped %d local or podcast items.\n", playlist.Skipped)
	}

	var source features.Source = client
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		database, err := openDatabase(ctx, databaseURL)
		if err != nil {
			return progression.Progression{}, err
		}
		defer database.Close()
		source = features.NewCachedFetcher(database.Features(), client)
	}
	if err := source.FetchAudioFeatures(ctx, playlist.Tracks); err != nil {
		return progression.Progression{}, err
	}

	p, err := progression.Build(playlist.Tracks, chartOpts)
	if err != nil {
		return progression.Progression{}, fmt.Errorf("%s: %w", playlist.Name, err)
	}

	if !opts.noMoods {
		moodCfg := mood.DefaultConfig()
		moodCfg.NumGroups = opts.groups
		groups, unassigned := mood.Detect(playlist.Tracks, moodCfg)
		fmt.Fprint(stderr, mood.FormatSummary(groups, unassigned))
	}
	return p, nil
}

// writeOutput writes the SVG document to path, or to stdout when path is empty.
func writeOutput(stdout io.Writer, path string, p progression.Progression) error {
	if path == "" {
		return p.WriteSVG(stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	if err := p.WriteSVG(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

package main

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/justestif/go-playlist-progression/internal/auth"
	"github.com/justestif/go-playlist-progression/internal/db"
	"github.com/justestif/go-playlist-progression/internal/web"
	webfs "github.com/justestif/go-playlist-progression/web"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		addr   string
		charts chartFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web application",
		Long: `Run the web application.

Requires SPOTIFY_ID and SPOTIFY_SECRET. When DATABASE_URL is set, sessions,
audio features and snapshots are stored in PostgreSQL.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, chartOpts, err := loadOptions(root, cmd.Flags(), &charts)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") {
				addr = cfg.Addr(addr)
			}

			clientID, clientSecret, err := auth.Credentials()
			if err != nil {
				return err
			}

			templates, err := fs.Sub(webfs.TemplatesFS, "templates")
			if err != nil {
				return fmt.Errorf("creating templates filesystem: %w", err)
			}
			static, err := fs.Sub(webfs.StaticFS, "static")
			if err != nil {
				return fmt.Errorf("creating static filesystem: %w", err)
			}

			serverCfg := web.ServerConfig{
				Addr:         addr,
				ClientID:     clientID,
				ClientSecret: clientSecret,
				RedirectURL:  cfg.RedirectURL(auth.DefaultRedirectURL),
				TemplatesFS:  templates,
				StaticFS:     static,
				ChartOptions: chartOpts,
			}

			if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
				database, err := openDatabase(cmd.Context(), databaseURL)
				if err != nil {
					return err
				}
				defer database.Close()
				serverCfg.Database = database
			} else {
				log.Println("DATABASE_URL not set, using in-memory sessions")
			}

			server, err := web.NewServer(serverCfg)
			if err != nil {
				return fmt.Errorf("creating server: %w", err)
			}
			return server.Run()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", web.DefaultAddr, "listen address")
	charts.register(cmd.Flags())
	return cmd
}

// openDatabase connects and applies the schema.
func openDatabase(ctx context.Context, databaseURL string) (*db.DB, error) {
	database, err := db.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return database, nil
}

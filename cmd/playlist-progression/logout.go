package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/justestif/go-playlist-progression/internal/auth"
)

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the cached Spotify token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := auth.DefaultTokenPath()
			if err != nil {
				return err
			}
			if err := auth.NewTokenCache(path).Delete(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged out (removed %s).\n", path)
			return nil
		},
	}
}

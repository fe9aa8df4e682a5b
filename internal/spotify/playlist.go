package spotify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zmb3/spotify/v2"

	"github.com/justestif/go-playlist-progression/internal/progression"
)

const (
	maxItemsPerPage     = 100
	maxPlaylistsPerPage = 50
)

// FetchPlaylist retrieves a playlist and all of its tracks in order.
// Local files and episodes are skipped and counted in Playlist.Skipped.
// Audio features are not fetched; see FetchAudioFeatures.
func (c *Client) FetchPlaylist(ctx context.Context, playlistID string) (*Playlist, error) {
	id := spotify.ID(playlistID)

	meta, err := c.api.GetPlaylist(ctx, id, spotify.Fields("id,name,description"))
	if err != nil {
		return nil, fmt.Errorf("fetching playlist %s: %w", playlistID, err)
	}

	playlist := &Playlist{
		ID:          playlistID,
		Name:        meta.Name,
		Description: meta.Description,
	}

	page, err := c.api.GetPlaylistItems(ctx, id, spotify.Limit(maxItemsPerPage))
	if err != nil {
		return nil, fmt.Errorf("fetching playlist items: %w", err)
	}

	for {
		for _, item := range page.Items {
			track, ok := convertPlaylistItem(item)
			if !ok {
				playlist.Skipped++
				continue
			}
			playlist.Tracks = append(playlist.Tracks, track)
		}

		err = c.api.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("fetching next page: %w", err)
		}
	}

	fmt.Fprintf(c.progress, "Fetched %d tracks from %q.\n", len(playlist.Tracks), playlist.Name)
	return playlist, nil
}

// FetchUserPlaylists retrieves every playlist the current user owns or follows.
func (c *Client) FetchUserPlaylists(ctx context.Context) ([]PlaylistSummary, error) {
	page, err := c.api.CurrentUsersPlaylists(ctx, spotify.Limit(maxPlaylistsPerPage))
	if err != nil {
		return nil, fmt.Errorf("fetching playlists: %w", err)
	}

	var playlists []PlaylistSummary
	for {
		for _, p := range page.Playlists {
			playlists = append(playlists, convertPlaylist(p))
		}

		err = c.api.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("fetching next page: %w", err)
		}
	}

	return playlists, nil
}

// convertPlaylistItem converts a playlist item to a progression.Track.
// Returns false for items without a Spotify track (local files, episodes).
func convertPlaylistItem(item spotify.PlaylistItem) (progression.Track, bool) {
	full := item.Track.Track
	if item.IsLocal || full == nil || full.ID == "" {
		return progression.Track{}, false
	}

	artists := make([]string, len(full.Artists))
	for i, a := range full.Artists {
		artists[i] = a.Name
	}

	return progression.Track{
		ID:     full.ID.String(),
		Name:   full.Name,
		Artist: strings.Join(artists, ", "),
	}, true
}

// convertPlaylist converts a SimplePlaylist to a PlaylistSummary.
func convertPlaylist(p spotify.SimplePlaylist) PlaylistSummary {
	summary := PlaylistSummary{
		ID:         p.ID.String(),
		Name:       p.Name,
		Owner:      p.Owner.DisplayName,
		TrackCount: int(p.Tracks.Total),
	}
	if len(p.Images) > 0 {
		summary.ImageURL = p.Images[len(p.Images)-1].URL
	}
	return summary
}

package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"

	"github.com/justestif/go-playlist-progression/internal/progression"
)

const maxTracksPerRequest = 100

// FetchAudioFeatures retrieves audio features for the given tracks.
// Updates tracks in-place with their audio features.
// Batches requests to max 100 tracks per request per Spotify API limits.
// Tracks without available audio features will have nil feature fields.
func (c *Client) FetchAudioFeatures(ctx context.Context, tracks []progression.Track) error {
	if len(tracks) == 0 {
		return nil
	}

	// A playlist may hold the same track twice
	ids := make([]spotify.ID, 0, len(tracks))
	indexesByID := make(map[string][]int, len(tracks))
	for i, t := range tracks {
		if _, seen := indexesByID[t.ID]; !seen {
			ids = append(ids, spotify.ID(t.ID))
		}
		indexesByID[t.ID] = append(indexesByID[t.ID], i)
	}

	total := len(ids)

	for i := 0; i < total; i += maxTracksPerRequest {
		end := min(i+maxTracksPerRequest, total)
		batch := ids[i:end]

		fmt.Fprintf(c.progress, "Fetching audio features %d-%d of %d...\n", i+1, end, total)

		features, err := c.api.GetAudioFeatures(ctx, batch...)
		if err != nil {
			return fmt.Errorf("fetching audio features (batch %d-%d): %w", i+1, end, err)
		}

		for _, f := range features {
			if f == nil {
				continue // Track has no audio features
			}
			for _, idx := range indexesByID[f.ID.String()] {
				applyAudioFeatures(&tracks[idx], f)
			}
		}
	}

	fmt.Fprintf(c.progress, "Fetched audio features for %d tracks.\n", total)
	return nil
}

// applyAudioFeatures copies audio feature values to a track.
func applyAudioFeatures(t *progression.Track, f *spotify.AudioFeatures) {
	tempo, energy := f.Tempo, f.Energy
	valence, dance, acoustic := f.Valence, f.Danceability, f.Acousticness

	t.Tempo = &tempo
	t.Energy = &energy
	t.Valence = &valence
	t.Danceability = &dance
	t.Acousticness = &acoustic
}

// Package features caches Spotify audio features in PostgreSQL.
package features

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/justestif/go-playlist-progression/internal/db"
	"github.com/justestif/go-playlist-progression/internal/progression"
)

// CacheTTL is the duration after which cached features are considered stale.
const CacheTTL = 90 * 24 * time.Hour // 90 days

// DefaultBatchSize is how many uncached tracks are sent to the source at once.
const DefaultBatchSize = 100

// Source fills in audio features for tracks in place.
type Source interface {
	FetchAudioFeatures(ctx context.Context, tracks []progression.Track) error
}

// Store persists audio features keyed by track ID.
type Store interface {
	GetForTracks(ctx context.Context, trackIDs []string) (map[string]db.AudioFeatures, error)
	UpsertBatch(ctx context.Context, features []db.AudioFeatures) error
}

// CachedFetcher implements Source with database persistence.
// It checks the store first, then falls back to the underlying source for
// misses and stale rows, persisting new results.
type CachedFetcher struct {
	store     Store
	source    Source
	ttl       time.Duration
	batchSize int
	now       func() time.Time
}

// Option configures a CachedFetcher.
type Option func(*CachedFetcher)

// WithBatchSize sets how many tracks are fetched from the source per call.
func WithBatchSize(n int) Option {
	return func(c *CachedFetcher) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// WithTTL overrides CacheTTL.
func WithTTL(d time.Duration) Option {
	return func(c *CachedFetcher) {
		c.ttl = d
	}
}

// NewCachedFetcher wraps source with store.
func NewCachedFetcher(store Store, source Source, opts ...Option) *CachedFetcher {
	c := &CachedFetcher{
		store:     store,
		source:    source,
		ttl:       CacheTTL,
		batchSize: DefaultBatchSize,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchAudioFeatures fills in features for tracks, using the cache when
// available. Tracks Spotify has no analysis for are cached as unavailable
// and keep nil feature fields.
func (c *CachedFetcher) FetchAudioFeatures(ctx context.Context, tracks []progression.Track) error {
	if len(tracks) == 0 {
		return nil
	}

	indexesByID := make(map[string][]int, len(tracks))
	trackIDs := make([]string, 0, len(tracks))
	for i, t := range tracks {
		if _, seen := indexesByID[t.ID]; !seen {
			trackIDs = append(trackIDs, t.ID)
		}
		indexesByID[t.ID] = append(indexesByID[t.ID], i)
	}

	cached, err := c.store.GetForTracks(ctx, trackIDs)
	if err != nil {
		return fmt.Errorf("getting cached features: %w", err)
	}

	staleThreshold := c.now().Add(-c.ttl)
	var misses []progression.Track
	for _, id := range trackIDs {
		f, found := cached[id]
		if !found || f.FetchedAt.Before(staleThreshold) {
			misses = append(misses, tracks[indexesByID[id][0]])
			continue
		}
		for _, idx := range indexesByID[id] {
			apply(&tracks[idx], f)
		}
	}

	for i := 0; i < len(misses); i += c.batchSize {
		end := min(i+c.batchSize, len(misses))
		batch := misses[i:end]

		if err := c.source.FetchAudioFeatures(ctx, batch); err != nil {
			return fmt.Errorf("fetching features (batch %d-%d): %w", i+1, end, err)
		}

		rows := make([]db.AudioFeatures, len(batch))
		fetchedAt := c.now()
		for j, t := range batch {
			rows[j] = toRow(t, fetchedAt)
			for _, idx := range indexesByID[t.ID] {
				apply(&tracks[idx], rows[j])
			}
		}

		// A failed write only costs a refetch next time
		if err := c.store.UpsertBatch(ctx, rows); err != nil {
			log.Printf("Failed to cache audio features: %v", err)
		}
	}

	return nil
}

// toRow converts a fetched track to a cache row.
func toRow(t progression.Track, fetchedAt time.Time) db.AudioFeatures {
	return db.AudioFeatures{
		TrackID:      t.ID,
		Available:    t.Tempo != nil,
		Tempo:        t.Tempo,
		Energy:       t.Energy,
		Valence:      t.Valence,
		Danceability: t.Danceability,
		Acousticness: t.Acousticness,
		FetchedAt:    fetchedAt,
	}
}

// apply copies cached values onto a track.
func apply(t *progression.Track, f db.AudioFeatures) {
	if !f.Available {
		return
	}
	t.Tempo = f.Tempo
	t.Energy = f.Energy
	t.Valence = f.Valence
	t.Danceability = f.Danceability
	t.Acousticness = f.Acousticness
}

package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// FeatureRepository handles the audio feature cache.
type FeatureRepository struct {
	pool *pgxpool.Pool
}

// GetForTracks returns cached features keyed by track ID. Tracks with no
// cached row are absent from the map.
func (r *FeatureRepository) GetForTracks(ctx context.Context, trackIDs []string) (map[string]AudioFeatures, error) {
	result := make(map[string]AudioFeatures, len(trackIDs))
	if len(trackIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT track_id, available, tempo, energy, valence, danceability, acousticness, fetched_at
		FROM audio_features
		WHERE track_id = ANY($1)
	`
	rows, err := r.pool.Query(ctx, query, trackIDs)
	if err != nil {
		return nil, fmt.Errorf("querying audio features: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var f AudioFeatures
		if err := rows.Scan(
			&f.TrackID,
			&f.Available,
			&f.Tempo,
			&f.Energy,
			&f.Valence,
			&f.Danceability,
			&f.Acousticness,
			&f.FetchedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning audio features: %w", err)
		}
		result[f.TrackID] = f
	}
	return result, rows.Err()
}

// UpsertBatch inserts or refreshes cached features.
func (r *FeatureRepository) UpsertBatch(ctx context.Context, features []AudioFeatures) error {
	if len(features) == 0 {
		return nil
	}

	query := `
		INSERT INTO audio_features (track_id, available, tempo, energy, valence, danceability, acousticness, fetched_at)
		SELECT * FROM unnest($1::text[], $2::boolean[], $3::real[], $4::real[], $5::real[], $6::real[], $7::real[], $8::timestamptz[])
		ON CONFLICT (track_id) DO UPDATE SET
			available = EXCLUDED.available,
			tempo = EXCLUDED.tempo,
			energy = EXCLUDED.energy,
			valence = EXCLUDED.valence,
			danceability = EXCLUDED.danceability,
			acousticness = EXCLUDED.acousticness,
			fetched_at = EXCLUDED.fetched_at
	`

	ids := make([]string, len(features))
	available := make([]bool, len(features))
	tempos := make([]*float32, len(features))
	energies := make([]*float32, len(features))
	valences := make([]*float32, len(features))
	dances := make([]*float32, len(features))
	acoustics := make([]*float32, len(features))
	fetchedAts := make([]time.Time, len(features))

	for i, f := range features {
		ids[i] = f.TrackID
		available[i] = f.Available
		tempos[i] = f.Tempo
		energies[i] = f.Energy
		valences[i] = f.Valence
		dances[i] = f.Danceability
		acoustics[i] = f.Acousticness
		fetchedAts[i] = f.FetchedAt
	}

	_, err := r.pool.Exec(ctx, query, ids, available, tempos, energies, valences, dances, acoustics, fetchedAts)
	if err != nil {
		return fmt.Errorf("batch upserting audio features: %w", err)
	}
	return nil
}

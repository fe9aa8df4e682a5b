package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SnapshotRepository handles progression snapshot operations.
type SnapshotRepository struct {
	pool *pgxpool.Pool
}

// Create stores a snapshot, assigning a new ID.
func (r *SnapshotRepository) Create(ctx context.Context, snap *Snapshot) error {
	snap.ID = uuid.New()

	query := `
		INSERT INTO snapshots (id, user_id, playlist_id, playlist_name, tempo_samples, energy_samples, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING created_at
	`
	err := r.pool.QueryRow(ctx, query,
		snap.ID,
		snap.UserID,
		snap.PlaylistID,
		snap.PlaylistName,
		snap.TempoSamples,
		snap.EnergySamples,
	).Scan(&snap.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting snapshot: %w", err)
	}
	return nil
}

// Get retrieves a snapshot by ID.
func (r *SnapshotRepository) Get(ctx context.Context, id uuid.UUID) (*Snapshot, error) {
	query := `
		SELECT id, user_id, playlist_id, playlist_name, tempo_samples, energy_samples, created_at
		FROM snapshots
		WHERE id = $1
	`
	var snap Snapshot
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&snap.ID,
		&snap.UserID,
		&snap.PlaylistID,
		&snap.PlaylistName,
		&snap.TempoSamples,
		&snap.EnergySamples,
		&snap.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying snapshot: %w", err)
	}
	return &snap, nil
}

// ListForUser returns a user's snapshots, newest first.
func (r *SnapshotRepository) ListForUser(ctx context.Context, userID string, limit int) ([]Snapshot, error) {
	query := `
		SELECT id, user_id, playlist_id, playlist_name, tempo_samples, energy_samples, created_at
		FROM snapshots
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		var snap Snapshot
		if err := rows.Scan(
			&snap.ID,
			&snap.UserID,
			&snap.PlaylistID,
			&snap.PlaylistName,
			&snap.TempoSamples,
			&snap.EnergySamples,
			&snap.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

package db

import (
	"time"

	"github.com/google/uuid"
)

// User represents a Spotify user profile.
type User struct {
	ID          string
	DisplayName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Session represents an authenticated web session and the OAuth token
// it acts with. UserName is read from users and ignored on insert.
type Session struct {
	ID           string
	UserID       string
	UserName     string
	AccessToken  string
	RefreshToken string
	TokenExpiry  time.Time
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

// AudioFeatures is a cached Spotify audio analysis for one track.
// Available is false when Spotify returned no analysis; the feature
// pointers are then nil.
type AudioFeatures struct {
	TrackID      string
	Available    bool
	Tempo        *float32
	Energy       *float32
	Valence      *float32
	Danceability *float32
	Acousticness *float32
	FetchedAt    time.Time
}

// Snapshot is a frozen tempo/energy progression of a playlist.
type Snapshot struct {
	ID            uuid.UUID
	UserID        string
	PlaylistID    string
	PlaylistName  string
	TempoSamples  []float64
	EnergySamples []float64
	CreatedAt     time.Time
}

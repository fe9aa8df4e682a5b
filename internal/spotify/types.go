package spotify

import "github.com/justestif/go-playlist-progression/internal/progression"

// Playlist is a playlist with its tracks in playlist order.
type Playlist struct {
	ID          string
	Name        string
	Description string
	Tracks      []progression.Track
	Skipped     int // local files and podcast episodes, which have no audio features
}

// PlaylistSummary is a row in the user's playlist list.
type PlaylistSummary struct {
	ID         string
	Name       string
	Owner      string
	TrackCount int
	ImageURL   string
}

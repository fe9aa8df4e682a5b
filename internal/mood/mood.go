// Package mood groups playlist tracks by audio-feature similarity using
// k-means clustering.
package mood

import (
	"log"
	"slices"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"github.com/justestif/go-playlist-progression/internal/progression"
)

// Config holds grouping parameters.
type Config struct {
	NumGroups    int // Number of clusters to create (default: 3)
	MinGroupSize int // Minimum tracks per group (smaller clusters become unassigned)
}

// DefaultConfig returns the recommended default configuration.
func DefaultConfig() Config {
	return Config{
		NumGroups:    3,
		MinGroupSize: 2,
	}
}

// Entry is a track together with its 1-based position in the playlist.
type Entry struct {
	Position int
	Track    progression.Track
}

// Group is a set of tracks sharing a similar mood.
type Group struct {
	Name     string             // "Upbeat Party", "Chill & Happy (Acoustic)", ...
	Entries  []Entry            // in playlist order
	Centroid map[string]float32 // average feature values
	Color    colorful.Color
}

// Positions returns the playlist positions of the group's tracks.
func (g Group) Positions() []int {
	positions := make([]int, len(g.Entries))
	for i, e := range g.Entries {
		positions[i] = e.Position
	}
	return positions
}

// entryObservation wraps an Entry to implement clusters.Observation.
type entryObservation struct {
	entry  Entry
	coords clusters.Coordinates
}

func (o entryObservation) Coordinates() clusters.Coordinates {
	return o.coords
}

func (o entryObservation) Distance(point clusters.Coordinates) float64 {
	return o.coords.Distance(point)
}

// featureNames defines the audio features used for grouping.
var featureNames = []string{"energy", "valence", "danceability", "acousticness"}

// Detect groups tracks by mood. It returns the groups, ordered by the
// position of their first track, and the entries that fit no group.
// Tracks missing any of the grouping features are always unassigned.
func Detect(tracks []progression.Track, cfg Config) ([]Group, []Entry) {
	if len(tracks) == 0 {
		return nil, nil
	}

	if cfg.NumGroups <= 0 {
		cfg.NumGroups = DefaultConfig().NumGroups
	}

	var valid, unassigned []Entry
	for i, t := range tracks {
		e := Entry{Position: i + 1, Track: t}
		if hasMoodFeatures(t) {
			valid = append(valid, e)
		} else {
			unassigned = append(unassigned, e)
		}
	}

	// Fewer tracks than clusters: nothing to group
	if len(valid) < cfg.NumGroups {
		return nil, sortEntries(append(valid, unassigned...))
	}

	var obs clusters.Observations
	for _, e := range valid {
		obs = append(obs, entryObservation{
			entry:  e,
			coords: extractFeatures(e.Track),
		})
	}

	km := kmeans.New()
	result, err := km.Partition(obs, cfg.NumGroups)
	if err != nil {
		log.Printf("Warning: k-means clustering failed: %v", err)
		return nil, sortEntries(append(valid, unassigned...))
	}

	var groups []Group
	for _, cluster := range result {
		var entries []Entry
		var members []clusters.Coordinates
		for _, o := range cluster.Observations {
			if eo, ok := o.(entryObservation); ok {
				entries = append(entries, eo.entry)
				members = append(members, eo.coords)
			}
		}

		if len(entries) == 0 {
			continue
		}
		if len(entries) < cfg.MinGroupSize {
			unassigned = append(unassigned, entries...)
			continue
		}

		mean := meanCoordinates(members)
		centroid := make(map[string]float32, len(featureNames))
		for i, name := range featureNames {
			centroid[name] = float32(mean[i])
		}

		groups = append(groups, Group{
			Name:     Name(centroid),
			Entries:  sortEntries(entries),
			Centroid: centroid,
			Color:    Color(centroid),
		})
	}

	slices.SortFunc(groups, func(a, b Group) int {
		return a.Entries[0].Position - b.Entries[0].Position
	})

	return groups, sortEntries(unassigned)
}

// meanCoordinates averages the members of a cluster. kmeans only recenters
// clusters after an iteration that moved a point, so Center can still hold
// its random seed.
func meanCoordinates(members []clusters.Coordinates) clusters.Coordinates {
	mean := make(clusters.Coordinates, len(featureNames))
	for _, c := range members {
		for i := range mean {
			mean[i] += c[i]
		}
	}
	for i := range mean {
		mean[i] /= float64(len(members))
	}
	return mean
}

// hasMoodFeatures checks if a track has the features required for grouping.
func hasMoodFeatures(t progression.Track) bool {
	return t.Energy != nil &&
		t.Valence != nil &&
		t.Danceability != nil &&
		t.Acousticness != nil
}

// extractFeatures returns the grouping features as a coordinate vector.
func extractFeatures(t progression.Track) clusters.Coordinates {
	return clusters.Coordinates{
		float64(*t.Energy),
		float64(*t.Valence),
		float64(*t.Danceability),
		float64(*t.Acousticness),
	}
}

func sortEntries(entries []Entry) []Entry {
	slices.SortFunc(entries, func(a, b Entry) int {
		return a.Position - b.Position
	})
	return entries
}

package mood

import (
	"math"
	"slices"
	"strings"
	"testing"

	"github.com/justestif/go-playlist-progression/internal/progression"
)

func f32(v float32) *float32 { return &v }

func makeTrack(id string, energy, valence, dance, acoustic float32) progression.Track {
	return progression.Track{
		ID:           id,
		Name:         "Song " + id,
		Artist:       "Artist " + id,
		Tempo:        f32(120),
		Energy:       f32(energy),
		Valence:      f32(valence),
		Danceability: f32(dance),
		Acousticness: f32(acoustic),
	}
}

func TestName(t *testing.T) {
	tests := []struct {
		name     string
		centroid map[string]float32
		want     string
	}{
		{
			name:     "high energy high valence",
			centroid: map[string]float32{"energy": 0.8, "valence": 0.7, "acousticness": 0.2},
			want:     "Upbeat Party",
		},
		{
			name:     "high energy low valence",
			centroid: map[string]float32{"energy": 0.8, "valence": 0.3, "acousticness": 0.2},
			want:     "Intense & Dark",
		},
		{
			name:     "low energy high valence",
			centroid: map[string]float32{"energy": 0.4, "valence": 0.7, "acousticness": 0.3},
			want:     "Chill & Happy",
		},
		{
			name:     "low energy low valence",
			centroid: map[string]float32{"energy": 0.3, "valence": 0.3, "acousticness": 0.4},
			want:     "Reflective & Melancholy",
		},
		{
			name:     "high acousticness adds modifier",
			centroid: map[string]float32{"energy": 0.4, "valence": 0.7, "acousticness": 0.8},
			want:     "Chill & Happy (Acoustic)",
		},
		{
			name:     "boundary energy exactly 0.6 is low",
			centroid: map[string]float32{"energy": 0.6, "valence": 0.7, "acousticness": 0.2},
			want:     "Chill & Happy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Name(tt.centroid); got != tt.want {
				t.Errorf("Name() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestColor(t *testing.T) {
	calm := Color(map[string]float32{"energy": 0, "valence": 0})
	intense := Color(map[string]float32{"energy": 1, "valence": 1})

	calmHue, _, calmLight := calm.Hsl()
	intenseHue, _, intenseLight := intense.Hsl()

	if calmHue < 250 || calmHue > 270 {
		t.Errorf("calm hue = %v, want around 264", calmHue)
	}
	if intenseHue < 25 || intenseHue > 45 {
		t.Errorf("intense hue = %v, want around 35", intenseHue)
	}
	if intenseLight <= calmLight {
		t.Errorf("higher valence should be lighter: %v <= %v", intenseLight, calmLight)
	}
}

func TestDetectEmpty(t *testing.T) {
	groups, unassigned := Detect(nil, DefaultConfig())
	if groups != nil || unassigned != nil {
		t.Errorf("Detect(nil) = %v, %v; want nil, nil", groups, unassigned)
	}
}

func TestDetectTooFewTracks(t *testing.T) {
	tracks := []progression.Track{
		makeTrack("a", 0.9, 0.9, 0.9, 0.1),
		{ID: "b", Name: "No features"},
	}

	groups, unassigned := Detect(tracks, Config{NumGroups: 3, MinGroupSize: 1})

	if len(groups) != 0 {
		t.Errorf("got %d groups, want 0", len(groups))
	}
	if got := positions(unassigned); !slices.Equal(got, []int{1, 2}) {
		t.Errorf("unassigned positions = %v, want [1 2]", got)
	}
}

func TestDetectSingleGroup(t *testing.T) {
	tracks := []progression.Track{
		makeTrack("a", 0.80, 0.70, 0.7, 0.1),
		{ID: "gap", Name: "Local file"},
		makeTrack("b", 0.90, 0.80, 0.8, 0.2),
		makeTrack("c", 0.85, 0.75, 0.6, 0.1),
	}

	groups, unassigned := Detect(tracks, Config{NumGroups: 1, MinGroupSize: 1})

	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	g := groups[0]
	if g.Name != "Upbeat Party" {
		t.Errorf("Name = %q, want Upbeat Party", g.Name)
	}
	if got := g.Positions(); !slices.Equal(got, []int{1, 3, 4}) {
		t.Errorf("Positions() = %v, want [1 3 4]", got)
	}
	if got := positions(unassigned); !slices.Equal(got, []int{2}) {
		t.Errorf("unassigned positions = %v, want [2]", got)
	}
}

func TestDetectSingleGroupCentroidIsMean(t *testing.T) {
	tracks := []progression.Track{
		makeTrack("a", 0.80, 0.70, 0.7, 0.1),
		makeTrack("b", 0.90, 0.80, 0.8, 0.2),
		makeTrack("c", 0.85, 0.75, 0.6, 0.3),
	}
	want := map[string]float64{
		"energy":       0.85,
		"valence":      0.75,
		"danceability": 0.7,
		"acousticness": 0.2,
	}

	// Seeds are random, so repeat to catch a centroid taken from them.
	for run := 0; run < 20; run++ {
		groups, _ := Detect(tracks, Config{NumGroups: 1, MinGroupSize: 1})
		if len(groups) != 1 {
			t.Fatalf("run %d: got %d groups, want 1", run, len(groups))
		}
		for name, w := range want {
			if got := float64(groups[0].Centroid[name]); math.Abs(got-w) > 1e-6 {
				t.Fatalf("run %d: Centroid[%s] = %v, want %v", run, name, got, w)
			}
		}
		if groups[0].Name != "Upbeat Party" {
			t.Fatalf("run %d: Name = %q, want Upbeat Party", run, groups[0].Name)
		}
	}
}

func TestDetectCoversEveryTrack(t *testing.T) {
	var tracks []progression.Track
	for i := 0; i < 12; i++ {
		switch i % 3 {
		case 0:
			tracks = append(tracks, makeTrack(string(rune('a'+i)), 0.9, 0.9, 0.8, 0.1))
		case 1:
			tracks = append(tracks, makeTrack(string(rune('a'+i)), 0.2, 0.2, 0.3, 0.9))
		default:
			tracks = append(tracks, makeTrack(string(rune('a'+i)), 0.9, 0.1, 0.5, 0.1))
		}
	}

	groups, unassigned := Detect(tracks, DefaultConfig())

	var seen []int
	for _, g := range groups {
		seen = append(seen, g.Positions()...)
		if !slices.IsSorted(g.Positions()) {
			t.Errorf("group %q positions not sorted: %v", g.Name, g.Positions())
		}
	}
	seen = append(seen, positions(unassigned)...)
	slices.Sort(seen)

	want := make([]int, len(tracks))
	for i := range want {
		want[i] = i + 1
	}
	if !slices.Equal(seen, want) {
		t.Errorf("positions covered = %v, want %v", seen, want)
	}

	for i := 1; i < len(groups); i++ {
		if groups[i].Entries[0].Position < groups[i-1].Entries[0].Position {
			t.Errorf("groups not ordered by first position")
		}
	}
}

func TestFormatSummary(t *testing.T) {
	group := Group{
		Name: "Upbeat Party",
		Entries: []Entry{
			{Position: 1, Track: progression.Track{Name: "Song1", Artist: "Artist1"}},
			{Position: 4, Track: progression.Track{Name: "Song2", Artist: "Artist2"}},
			{Position: 5, Track: progression.Track{Name: "Song3", Artist: "Artist3"}},
			{Position: 7, Track: progression.Track{Name: "Song4", Artist: "Artist4"}},
		},
		Centroid: map[string]float32{"energy": 0.75, "valence": 0.5, "danceability": 0.25},
	}

	tests := []struct {
		name           string
		groups         []Group
		unassigned     []Entry
		wantContains   []string
		wantNotContain []string
	}{
		{
			name:           "no groups",
			wantContains:   []string{"No moods found across 0 tracks"},
			wantNotContain: []string{"unassigned"},
		},
		{
			name:         "no groups with unassigned",
			unassigned:   []Entry{{Position: 1}},
			wantContains: []string{"No moods found across 1 tracks", "(1 unassigned)"},
		},
		{
			name:       "one group",
			groups:     []Group{group},
			unassigned: []Entry{{Position: 2}, {Position: 3}},
			wantContains: []string{
				"Found 1 mood across 6 tracks (2 unassigned)",
				"Mood 1: Upbeat Party (4 tracks)",
				"Positions: 1, 4, 5, 7",
				"Energy=75% Valence=50% Danceability=25%",
				`"Song1" - Artist1`,
				"... and 1 more",
			},
			wantNotContain: []string{`"Song4"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatSummary(tt.groups, tt.unassigned)

			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("FormatSummary() missing %q\nGot:\n%s", want, got)
				}
			}
			for _, notWant := range tt.wantNotContain {
				if strings.Contains(got, notWant) {
					t.Errorf("FormatSummary() contains %q\nGot:\n%s", notWant, got)
				}
			}
		})
	}
}

func positions(entries []Entry) []int {
	out := make([]int, len(entries))
	for i, e := range entries {
		out[i] = e.Position
	}
	return out
}

package mood

import (
	"fmt"
	"strconv"
	"strings"
)

const sampleTrackCount = 3

// FormatSummary returns a human-readable summary of mood groups.
// Shows positions, mood indicators and the first 3 tracks of each group.
// Unassigned tracks are summarized by count only.
func FormatSummary(groups []Group, unassigned []Entry) string {
	var sb strings.Builder

	totalTracks := len(unassigned)
	for _, g := range groups {
		totalTracks += len(g.Entries)
	}

	if len(groups) == 0 {
		fmt.Fprintf(&sb, "No moods found across %d tracks", totalTracks)
		if len(unassigned) > 0 {
			fmt.Fprintf(&sb, " (%d unassigned)", len(unassigned))
		}
		sb.WriteString("\n")
		return sb.String()
	}

	moodWord := "mood"
	if len(groups) > 1 {
		moodWord = "moods"
	}

	fmt.Fprintf(&sb, "Found %d %s across %d tracks", len(groups), moodWord, totalTracks)
	if len(unassigned) > 0 {
		fmt.Fprintf(&sb, " (%d unassigned)", len(unassigned))
	}
	sb.WriteString("\n")

	for i, g := range groups {
		sb.WriteString("\n")
		sb.WriteString(formatGroup(i+1, g))
	}

	return sb.String()
}

// formatGroup formats a single group with its sample tracks.
func formatGroup(num int, g Group) string {
	var sb strings.Builder

	trackWord := "track"
	if len(g.Entries) > 1 {
		trackWord = "tracks"
	}

	fmt.Fprintf(&sb, "Mood %d: %s (%d %s)\n", num, g.Name, len(g.Entries), trackWord)
	fmt.Fprintf(&sb, "  Positions: %s\n", joinInts(g.Positions()))
	fmt.Fprintf(&sb, "  Energy=%.0f%% Valence=%.0f%% Danceability=%.0f%%\n",
		g.Centroid["energy"]*100, g.Centroid["valence"]*100, g.Centroid["danceability"]*100)

	sampleCount := min(sampleTrackCount, len(g.Entries))
	for i := 0; i < sampleCount; i++ {
		t := g.Entries[i].Track
		fmt.Fprintf(&sb, "  • \"%s\" - %s\n", t.Name, t.Artist)
	}

	remaining := len(g.Entries) - sampleTrackCount
	if remaining > 0 {
		fmt.Fprintf(&sb, "  ... and %d more\n", remaining)
	}

	return sb.String()
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}

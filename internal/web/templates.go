package web

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/justestif/go-playlist-progression/internal/mood"
	"github.com/justestif/go-playlist-progression/internal/progression"
)

// Templates manages HTML template rendering.
type Templates struct {
	templates map[string]*template.Template
	funcs     template.FuncMap
}

// NewTemplates creates a new template manager by loading templates from the given filesystem.
func NewTemplates(templatesFS fs.FS) (*Templates, error) {
	t := &Templates{
		templates: make(map[string]*template.Template),
		funcs:     defaultFuncs(),
	}

	if err := t.load(templatesFS); err != nil {
		return nil, err
	}

	return t, nil
}

// Render renders a page template with the given data.
func (t *Templates) Render(w io.Writer, page string, data any) error {
	tmpl, ok := t.templates[page]
	if !ok {
		return fmt.Errorf("template %q not found", page)
	}

	// Render into a buffer so a failing template never leaves a half-written page
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		return fmt.Errorf("executing template %q: %w", page, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// load parses every page together with the layouts and partials.
func (t *Templates) load(templatesFS fs.FS) error {
	layouts, err := fs.Glob(templatesFS, "layouts/*.html")
	if err != nil {
		return fmt.Errorf("finding layouts: %w", err)
	}

	partials, err := fs.Glob(templatesFS, "partials/*.html")
	if err != nil {
		return fmt.Errorf("finding partials: %w", err)
	}

	pages, err := fs.Glob(templatesFS, "pages/*.html")
	if err != nil {
		return fmt.Errorf("finding pages: %w", err)
	}

	commonFiles := append(layouts, partials...)

	for _, page := range pages {
		name := strings.TrimSuffix(filepath.Base(page), ".html")
		files := append([]string{page}, commonFiles...)

		tmpl, err := template.New(name).Funcs(t.funcs).ParseFS(templatesFS, files...)
		if err != nil {
			return fmt.Errorf("parsing template %s: %w", name, err)
		}
		t.templates[name] = tmpl
	}

	return nil
}

// defaultFuncs returns the default template functions.
func defaultFuncs() template.FuncMap {
	return template.FuncMap{
		// formatDate formats a time as "Jan 2, 2006"
		"formatDate": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},

		// positions joins playlist positions as "1, 4, 7"
		"positions": func(values []int) string {
			parts := make([]string, len(values))
			for i, v := range values {
				parts[i] = strconv.Itoa(v)
			}
			return strings.Join(parts, ", ")
		},

		// plural picks the singular or plural noun for n
		"plural": func(n int, singular, plural string) string {
			if n == 1 {
				return singular
			}
			return plural
		},
	}
}

// renderCharts renders each chart of a progression as inline SVG.
func renderCharts(p progression.Progression) ([]template.HTML, error) {
	charts := p.Charts()
	out := make([]template.HTML, len(charts))
	for i, c := range charts {
		var buf bytes.Buffer
		if err := c.WriteSVG(&buf); err != nil {
			return nil, fmt.Errorf("rendering %s: %w", c.Title, err)
		}
		out[i] = template.HTML(buf.String()) //nolint:gosec // produced by html/template
	}
	return out, nil
}

// PageData contains common data passed to all page templates.
type PageData struct {
	Title       string
	User        *UserData
	Flash       *FlashMessage
	CurrentPath string
}

// UserData contains authenticated user information.
type UserData struct {
	ID   string
	Name string
}

// FlashMessage represents a temporary notification message.
type FlashMessage struct {
	Type    string // "success", "error", "info"
	Message string
}

// HomePageData contains data for the home page template.
type HomePageData struct {
	PageData
	Authenticated bool
	Playlists     []PlaylistData
	Snapshots     []SnapshotData
}

// PlaylistData is a row in the playlist list.
type PlaylistData struct {
	ID         string
	Name       string
	Owner      string
	TrackCount int
	ImageURL   string
}

// SnapshotData describes a saved progression.
type SnapshotData struct {
	ID           string
	PlaylistID   string
	PlaylistName string
	TrackCount   int
	CreatedAt    time.Time
}

// ProgressionPageData contains data for the playlist and snapshot pages.
type ProgressionPageData struct {
	PageData
	PlaylistID   string
	PlaylistName string
	TrackCount   int
	Skipped      int // entries without audio analysis support
	Missing      int // tracks Spotify has no features for, charted as 0
	Charts       []template.HTML
	SVGURL       string
	Moods        []MoodData
	Unassigned   int
	CanSnapshot  bool
	Snapshot     *SnapshotData
}

// MoodData is one mood group shown under the charts.
type MoodData struct {
	Name      string
	Color     template.CSS
	Positions []int
	Tracks    []TrackData
	More      int
}

// TrackData contains data for a single track in templates.
type TrackData struct {
	Position int
	Name     string
	Artist   string
}

// maxMoodTracks is how many tracks are listed per mood group.
const maxMoodTracks = 3

// newMoodData converts mood groups for display.
func newMoodData(groups []mood.Group) []MoodData {
	out := make([]MoodData, len(groups))
	for i, g := range groups {
		md := MoodData{
			Name:      g.Name,
			Color:     template.CSS(g.Color.Clamped().Hex()), //nolint:gosec // hex colour
			Positions: g.Positions(),
		}
		for j, e := range g.Entries {
			if j == maxMoodTracks {
				md.More = len(g.Entries) - maxMoodTracks
				break
			}
			md.Tracks = append(md.Tracks, TrackData{
				Position: e.Position,
				Name:     e.Track.Name,
				Artist:   e.Track.Artist,
			})
		}
		out[i] = md
	}
	return out
}

package web

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	zspotify "github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"

	"github.com/justestif/go-playlist-progression/internal/db"
	"github.com/justestif/go-playlist-progression/internal/mood"
	"github.com/justestif/go-playlist-progression/internal/progression"
	"github.com/justestif/go-playlist-progression/internal/spotify"
)

const (
	appTitle = "Playlist Progression"

	// recentSnapshots is how many snapshots the home page lists.
	recentSnapshots = 10
)

// SnapshotStore persists progression snapshots.
type SnapshotStore interface {
	Create(ctx context.Context, snap *db.Snapshot) error
	Get(ctx context.Context, id uuid.UUID) (*db.Snapshot, error)
	ListForUser(ctx context.Context, userID string, limit int) ([]db.Snapshot, error)
}

// Handlers contains HTTP handlers for the web application.
type Handlers struct {
	auth      *spotifyauth.Authenticator
	sessions  SessionManager
	templates *Templates
	library   LibraryFunc
	snapshots SnapshotStore // nil without a database
	chartOpts progression.Options
	moodCfg   mood.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(auth *spotifyauth.Authenticator, sessions SessionManager, templates *Templates, library LibraryFunc, snapshots SnapshotStore, chartOpts progression.Options) *Handlers {
	return &Handlers{
		auth:      auth,
		sessions:  sessions,
		templates: templates,
		library:   library,
		snapshots: snapshots,
		chartOpts: chartOpts,
		moodCfg:   mood.DefaultConfig(),
	}
}

// Home handles the home page (GET /).
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	session := sessionFromRequest(h.sessions, r)

	data := HomePageData{
		PageData:      h.pageData(r, session, appTitle),
		Authenticated: session != nil,
	}

	if session != nil {
		lib := h.library(r.Context(), session.Token)
		playlists, err := lib.FetchUserPlaylists(r.Context())
		h.saveToken(r.Context(), session, lib)
		if err != nil {
			log.Printf("Failed to fetch playlists for %s: %v", session.UserID, err)
			data.Flash = &FlashMessage{Type: "error", Message: "Could not load your playlists from Spotify."}
		}
		for _, p := range playlists {
			data.Playlists = append(data.Playlists, PlaylistData(p))
		}

		if h.snapshots != nil {
			snaps, err := h.snapshots.ListForUser(r.Context(), session.UserID, recentSnapshots)
			if err != nil {
				log.Printf("Failed to list snapshots for %s: %v", session.UserID, err)
			}
			for i := range snaps {
				data.Snapshots = append(data.Snapshots, newSnapshotData(&snaps[i]))
			}
		}
	}

	h.render(w, "home", data)
}

// Playlist shows the tempo and energy progression of a playlist (GET /playlists/{id}).
func (h *Handlers) Playlist(w http.ResponseWriter, r *http.Request) {
	session := sessionFromRequest(h.sessions, r)
	if session == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	playlist, ok := h.loadPlaylist(w, r, session)
	if !ok {
		return
	}

	data := ProgressionPageData{
		PageData:     h.pageData(r, session, playlist.Name+" · "+appTitle),
		PlaylistID:   playlist.ID,
		PlaylistName: playlist.Name,
		TrackCount:   len(playlist.Tracks),
		Skipped:      playlist.Skipped,
		Missing:      countMissing(playlist.Tracks),
		SVGURL:       "/playlists/" + playlist.ID + "/progression.svg",
		CanSnapshot:  h.snapshots != nil,
	}

	p, err := progression.Build(playlist.Tracks, h.chartOpts)
	if err != nil && !errors.Is(err, progression.ErrNoTracks) {
		log.Printf("Failed to build progression for %s: %v", playlist.ID, err)
		http.Error(w, "Failed to build charts", http.StatusInternalServerError)
		return
	}
	if err == nil {
		if data.Charts, err = renderCharts(p); err != nil {
			log.Printf("Failed to render charts for %s: %v", playlist.ID, err)
			http.Error(w, "Failed to render charts", http.StatusInternalServerError)
			return
		}
		groups, unassigned := mood.Detect(playlist.Tracks, h.moodCfg)
		data.Moods = newMoodData(groups)
		data.Unassigned = len(unassigned)
	}

	h.render(w, "playlist", data)
}

// PlaylistSVG serves the two-panel chart as a standalone SVG document
// (GET /playlists/{id}/progression.svg).
func (h *Handlers) PlaylistSVG(w http.ResponseWriter, r *http.Request) {
	session := sessionFromRequest(h.sessions, r)
	if session == nil {
		http.Error(w, "Not signed in", http.StatusUnauthorized)
		return
	}

	playlist, ok := h.loadPlaylist(w, r, session)
	if !ok {
		return
	}

	p, err := progression.Build(playlist.Tracks, h.chartOpts)
	h.writeSVG(w, p, err)
}

// CreateSnapshot freezes a playlist's progression (POST /playlists/{id}/snapshots).
func (h *Handlers) CreateSnapshot(w http.ResponseWriter, r *http.Request) {
	session := sessionFromRequest(h.sessions, r)
	if session == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	playlist, ok := h.loadPlaylist(w, r, session)
	if !ok {
		return
	}
	if len(playlist.Tracks) == 0 {
		http.Error(w, "Playlist has no tracks", http.StatusUnprocessableEntity)
		return
	}

	snap := &db.Snapshot{
		UserID:        session.UserID,
		PlaylistID:    playlist.ID,
		PlaylistName:  playlist.Name,
		TempoSamples:  progression.TempoSamples(playlist.Tracks),
		EnergySamples: progression.EnergySamples(playlist.Tracks),
	}
	if err := h.snapshots.Create(r.Context(), snap); err != nil {
		log.Printf("Failed to save snapshot of %s: %v", playlist.ID, err)
		http.Error(w, "Failed to save snapshot", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/snapshots/"+snap.ID.String()+"?saved=1", http.StatusSeeOther)
}

// Snapshot shows a saved progression (GET /snapshots/{id}). Snapshots are
// public so the link can be shared.
func (h *Handlers) Snapshot(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.loadSnapshot(w, r)
	if !ok {
		return
	}

	p, err := progression.FromSamples(snap.TempoSamples, snap.EnergySamples, h.chartOpts)
	if err != nil {
		log.Printf("Failed to build snapshot %s: %v", snap.ID, err)
		http.Error(w, "Snapshot is damaged", http.StatusInternalServerError)
		return
	}
	charts, err := renderCharts(p)
	if err != nil {
		log.Printf("Failed to render snapshot %s: %v", snap.ID, err)
		http.Error(w, "Failed to render charts", http.StatusInternalServerError)
		return
	}

	session := sessionFromRequest(h.sessions, r)
	snapData := newSnapshotData(snap)
	data := ProgressionPageData{
		PageData:     h.pageData(r, session, snap.PlaylistName+" · "+appTitle),
		PlaylistID:   snap.PlaylistID,
		PlaylistName: snap.PlaylistName,
		TrackCount:   len(snap.TempoSamples),
		Charts:       charts,
		SVGURL:       "/snapshots/" + snapData.ID + "/progression.svg",
		Snapshot:     &snapData,
	}
	if r.URL.Query().Get("saved") != "" {
		data.Flash = &FlashMessage{Type: "success", Message: "Snapshot saved. Share this page's link to show it to others."}
	}

	h.render(w, "snapshot", data)
}

// SnapshotSVG serves a saved progression as SVG (GET /snapshots/{id}/progression.svg).
func (h *Handlers) SnapshotSVG(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.loadSnapshot(w, r)
	if !ok {
		return
	}

	p, err := progression.FromSamples(snap.TempoSamples, snap.EnergySamples, h.chartOpts)
	h.writeSVG(w, p, err)
}

// Login initiates the Spotify OAuth flow (GET /auth/login).
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	state, err := generateOAuthState()
	if err != nil {
		http.Error(w, "Failed to generate state", http.StatusInternalServerError)
		return
	}

	// Store state in cookie for validation on callback
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   300, // 5 minutes
	})

	http.Redirect(w, r, h.auth.AuthURL(state), http.StatusTemporaryRedirect)
}

// Callback handles the OAuth callback from Spotify (GET /callback).
func (h *Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil {
		http.Error(w, "Missing state cookie", http.StatusBadRequest)
		return
	}

	state := r.URL.Query().Get("state")
	if state != stateCookie.Value {
		http.Error(w, "State mismatch", http.StatusBadRequest)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		http.Error(w, fmt.Sprintf("Spotify auth error: %s", errMsg), http.StatusBadRequest)
		return
	}

	token, err := h.auth.Token(r.Context(), state, r)
	if err != nil {
		http.Error(w, "Failed to get token", http.StatusInternalServerError)
		return
	}

	client := spotify.New(zspotify.New(h.auth.Client(r.Context(), token)))
	userID, userName, err := client.CurrentUser(r.Context())
	if err != nil {
		log.Printf("Callback: %v", err)
		http.Error(w, "Failed to get user info", http.StatusInternalServerError)
		return
	}

	session, err := h.sessions.Create(r.Context(), token, userID, userName)
	if err != nil {
		log.Printf("Failed to create session for %s: %v", userID, err)
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	setCookie(w, session)
	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

// Logout clears the session and redirects to home (POST /auth/logout).
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if session := sessionFromRequest(h.sessions, r); session != nil {
		h.sessions.Delete(r.Context(), session.ID)
	}

	clearCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// loadPlaylist fetches the {id} playlist with audio features. It writes an
// error response and returns false on failure.
func (h *Handlers) loadPlaylist(w http.ResponseWriter, r *http.Request, session *Session) (*spotify.Playlist, bool) {
	id := chi.URLParam(r, "id")
	lib := h.library(r.Context(), session.Token)
	defer h.saveToken(r.Context(), session, lib)

	playlist, err := lib.FetchPlaylist(r.Context(), id)
	if err != nil {
		log.Printf("Failed to fetch playlist %s: %v", id, err)
		http.Error(w, "Failed to fetch playlist", spotifyStatus(err))
		return nil, false
	}

	if err := lib.FetchAudioFeatures(r.Context(), playlist.Tracks); err != nil {
		log.Printf("Failed to fetch audio features for %s: %v", id, err)
		http.Error(w, "Failed to fetch audio features", http.StatusBadGateway)
		return nil, false
	}
	return playlist, true
}

// loadSnapshot looks up the {id} snapshot. It writes an error response and
// returns false on failure.
func (h *Handlers) loadSnapshot(w http.ResponseWriter, r *http.Request) (*db.Snapshot, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return nil, false
	}

	snap, err := h.snapshots.Get(r.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		http.NotFound(w, r)
		return nil, false
	}
	if err != nil {
		log.Printf("Failed to load snapshot %s: %v", id, err)
		http.Error(w, "Failed to load snapshot", http.StatusInternalServerError)
		return nil, false
	}
	return snap, true
}

// writeSVG writes a standalone chart document, or the matching error.
func (h *Handlers) writeSVG(w http.ResponseWriter, p progression.Progression, buildErr error) {
	if errors.Is(buildErr, progression.ErrNoTracks) {
		http.Error(w, "Nothing to chart", http.StatusNotFound)
		return
	}
	if buildErr != nil {
		log.Printf("Failed to build progression: %v", buildErr)
		http.Error(w, "Failed to build charts", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	if err := p.WriteSVG(w); err != nil {
		log.Printf("Failed to write SVG: %v", err)
	}
}

// saveToken persists a token the OAuth client refreshed during the request.
func (h *Handlers) saveToken(ctx context.Context, session *Session, lib Library) {
	ts, ok := lib.(tokenSource)
	if !ok {
		return
	}
	token, err := ts.Token()
	if err != nil || token == nil || session.Token == nil || token.AccessToken == session.Token.AccessToken {
		return
	}
	h.sessions.UpdateToken(ctx, session.ID, token)
	session.Token = token
}

func (h *Handlers) render(w http.ResponseWriter, page string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.Render(w, page, data); err != nil {
		log.Printf("Failed to render %s: %v", page, err)
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
	}
}

func (h *Handlers) pageData(r *http.Request, session *Session, title string) PageData {
	data := PageData{
		Title:       title,
		CurrentPath: r.URL.Path,
	}
	if session != nil {
		data.User = &UserData{
			ID:   session.UserID,
			Name: session.UserName,
		}
	}
	return data
}

// spotifyStatus maps a Spotify API error to the response status.
func spotifyStatus(err error) int {
	var apiErr zspotify.Error
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}

// countMissing counts tracks charted as 0 for lack of audio features.
func countMissing(tracks []progression.Track) int {
	n := 0
	for _, t := range tracks {
		if !t.HasFeatures() {
			n++
		}
	}
	return n
}

func newSnapshotData(s *db.Snapshot) SnapshotData {
	return SnapshotData{
		ID:           s.ID.String(),
		PlaylistID:   s.PlaylistID,
		PlaylistName: s.PlaylistName,
		TrackCount:   len(s.TempoSamples),
		CreatedAt:    s.CreatedAt,
	}
}

// generateOAuthState creates a random state string for OAuth.
func generateOAuthState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

package web

import (
	"context"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/justestif/go-playlist-progression/internal/auth"
	"github.com/justestif/go-playlist-progression/internal/db"
	"github.com/justestif/go-playlist-progression/internal/progression"
	"github.com/justestif/go-playlist-progression/internal/spotify"
	webfs "github.com/justestif/go-playlist-progression/web"
)

func ptr(f float32) *float32 { return &f }

// fakeLibrary implements Library for testing.
type fakeLibrary struct {
	playlists []spotify.PlaylistSummary
	playlist  *spotify.Playlist
	fetchErr  error
	features  map[string][2]float32 // track ID -> tempo, energy
	token     *oauth2.Token         // returned by Token when set
}

func (f *fakeLibrary) FetchUserPlaylists(ctx context.Context) ([]spotify.PlaylistSummary, error) {
	return f.playlists, f.fetchErr
}

func (f *fakeLibrary) FetchPlaylist(ctx context.Context, id string) (*spotify.Playlist, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	p := *f.playlist
	p.Tracks = append([]progression.Track(nil), f.playlist.Tracks...)
	return &p, nil
}

func (f *fakeLibrary) FetchAudioFeatures(ctx context.Context, tracks []progression.Track) error {
	for i := range tracks {
		if v, ok := f.features[tracks[i].ID]; ok {
			tracks[i].Tempo = ptr(v[0])
			tracks[i].Energy = ptr(v[1])
		}
	}
	return nil
}

// refreshingLibrary also reports a refreshed token.
type refreshingLibrary struct {
	*fakeLibrary
}

func (r refreshingLibrary) Token() (*oauth2.Token, error) {
	return r.token, nil
}

// memorySnapshots implements SnapshotStore for testing.
type memorySnapshots struct {
	mu    sync.Mutex
	snaps map[uuid.UUID]db.Snapshot
}

func newMemorySnapshots() *memorySnapshots {
	return &memorySnapshots{snaps: make(map[uuid.UUID]db.Snapshot)}
}

func (m *memorySnapshots) Create(ctx context.Context, snap *db.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap.ID = uuid.New()
	snap.CreatedAt = time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	m.snaps[snap.ID] = *snap
	return nil
}

func (m *memorySnapshots) Get(ctx context.Context, id uuid.UUID) (*db.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.snaps[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &snap, nil
}

func (m *memorySnapshots) ListForUser(ctx context.Context, userID string, limit int) ([]db.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []db.Snapshot
	for _, s := range m.snaps {
		if s.UserID == userID && len(out) < limit {
			out = append(out, s)
		}
	}
	return out, nil
}

func testPlaylist() *spotify.Playlist {
	return &spotify.Playlist{
		ID:   "pl1",
		Name: "Road Trip",
		Tracks: []progression.Track{
			{ID: "a", Name: "Opener", Artist: "Band A"},
			{ID: "b", Name: "Middle", Artist: "Band B"},
			{ID: "c", Name: "Closer", Artist: "Band C"},
		},
	}
}

func testLibrary() *fakeLibrary {
	return &fakeLibrary{
		playlists: []spotify.PlaylistSummary{
			{ID: "pl1", Name: "Road Trip", Owner: "me", TrackCount: 3},
			{ID: "pl2", Name: "Focus", Owner: "me", TrackCount: 1},
		},
		playlist: testPlaylist(),
		features: map[string][2]float32{
			"a": {100, 0.2},
			"b": {120, 0.9},
			// c has no analysis
		},
	}
}

type testEnv struct {
	server    *Server
	sessions  *SessionStore
	snapshots *memorySnapshots
	library   Library
}

// newTestEnv builds a server with in-memory stores. snapshots may be nil to
// run without a database.
func newTestEnv(t *testing.T, lib Library, snapshots *memorySnapshots) *testEnv {
	t.Helper()

	templatesFS, err := fs.Sub(webfs.TemplatesFS, "templates")
	if err != nil {
		t.Fatal(err)
	}
	staticFS, err := fs.Sub(webfs.StaticFS, "static")
	if err != nil {
		t.Fatal(err)
	}
	templates, err := NewTemplates(templatesFS)
	if err != nil {
		t.Fatalf("NewTemplates() error = %v", err)
	}

	sessions := NewSessionStore()
	var store SnapshotStore
	if snapshots != nil {
		store = snapshots
	}
	libFunc := func(ctx context.Context, token *oauth2.Token) Library { return lib }
	handlers := NewHandlers(
		auth.NewSpotifyAuthenticator("client-id", "client-secret", auth.DefaultRedirectURL),
		sessions, templates, libFunc, store, progression.DefaultOptions(),
	)

	return &testEnv{
		server:    newServer("127.0.0.1:0", handlers, staticFS),
		sessions:  sessions,
		snapshots: snapshots,
		library:   lib,
	}
}

// login creates a session and returns its cookie.
func (e *testEnv) login(t *testing.T) (*Session, *http.Cookie) {
	t.Helper()
	session, err := e.sessions.Create(context.Background(), &oauth2.Token{AccessToken: "old"}, "user1", "Test User")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return session, &http.Cookie{Name: sessionCookieName, Value: session.ID}
}

func (e *testEnv) do(method, target string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

package web

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/justestif/go-playlist-progression/internal/auth"
	"github.com/justestif/go-playlist-progression/internal/db"
	"github.com/justestif/go-playlist-progression/internal/features"
	"github.com/justestif/go-playlist-progression/internal/progression"
)

const (
	// DefaultAddr is the default server address.
	DefaultAddr = "127.0.0.1:8080"

	// sessionSweepInterval is how often expired sessions are removed.
	sessionSweepInterval = time.Hour
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Addr         string
	ClientID     string
	ClientSecret string
	RedirectURL  string // must match the Spotify app configuration
	TemplatesFS  fs.FS
	StaticFS     fs.FS
	ChartOptions progression.Options

	// Database enables persistent sessions, the audio feature cache and
	// snapshots. Optional.
	Database *db.DB
}

// Server is the HTTP server for the web application.
type Server struct {
	router   chi.Router
	server   *http.Server
	sessions SessionManager
	handlers *Handlers
}

// NewServer creates a new web server.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.RedirectURL == "" {
		cfg.RedirectURL = auth.DefaultRedirectURL
	}
	spotifyAuth := auth.NewSpotifyAuthenticator(cfg.ClientID, cfg.ClientSecret, cfg.RedirectURL)

	templates, err := NewTemplates(cfg.TemplatesFS)
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}

	var (
		sessions  SessionManager
		snapshots SnapshotStore
		cache     features.Store
	)
	if cfg.Database != nil {
		sessions = NewDBSessionStore(cfg.Database)
		snapshots = cfg.Database.Snapshots()
		cache = cfg.Database.Features()
	} else {
		sessions = NewSessionStore()
	}

	handlers := NewHandlers(spotifyAuth, sessions, templates, spotifyLibrary(spotifyAuth, cache), snapshots, cfg.ChartOptions)

	return newServer(cfg.Addr, handlers, cfg.StaticFS), nil
}

// newServer wires handlers into a router and HTTP server.
func newServer(addr string, handlers *Handlers, staticFS fs.FS) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		sessions: handlers.sessions,
		handlers: handlers,
	}

	s.setupMiddleware()
	s.setupRoutes(staticFS)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second, // playlist pages wait on Spotify
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// setupMiddleware configures middleware for the router.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5, "text/html", "text/css", "image/svg+xml"))
}

// setupRoutes configures routes for the application.
func (s *Server) setupRoutes(staticFS fs.FS) {
	fileServer := http.FileServer(http.FS(staticFS))
	s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	s.router.Get("/", s.handlers.Home)

	// Auth routes
	s.router.Get("/auth/login", s.handlers.Login)
	s.router.Get("/callback", s.handlers.Callback)
	s.router.Post("/auth/logout", s.handlers.Logout)

	s.router.Route("/playlists/{id}", func(r chi.Router) {
		r.Get("/", s.handlers.Playlist)
		r.Get("/progression.svg", s.handlers.PlaylistSVG)
		if s.handlers.snapshots != nil {
			r.Post("/snapshots", s.handlers.CreateSnapshot)
		}
	})

	if s.handlers.snapshots != nil {
		s.router.Route("/snapshots/{id}", func(r chi.Router) {
			r.Get("/", s.handlers.Snapshot)
			r.Get("/progression.svg", s.handlers.SnapshotSVG)
		})
	}
}

// ServeHTTP lets the server be exercised without a listener.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	log.Printf("Starting server at http://%s", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Run starts the server and handles graceful shutdown on interrupt signals.
func (s *Server) Run() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	sweepCtx, cancelSweep := context.WithCancel(context.Background())
	defer cancelSweep()
	go s.sweepSessions(sweepCtx, sessionSweepInterval)

	errCh := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-stop:
		log.Println("Shutting down server...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// sweepSessions removes expired sessions until ctx is cancelled.
func (s *Server) sweepSessions(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.sessions.DeleteExpired(ctx)
			if err != nil {
				log.Printf("Failed to delete expired sessions: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("Deleted %d expired sessions", n)
			}
		}
	}
}

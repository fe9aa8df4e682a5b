package spotify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zmb3/spotify/v2"
)

func TestCurrentUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/me" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"user1","display_name":"Test User"}`))
	}))
	defer srv.Close()

	c := New(spotify.New(srv.Client(), spotify.WithBaseURL(srv.URL+"/")))

	id, name, err := c.CurrentUser(context.Background())
	if err != nil {
		t.Fatalf("CurrentUser() error = %v", err)
	}
	if id != "user1" || name != "Test User" {
		t.Errorf("CurrentUser() = %q, %q, want user1, Test User", id, name)
	}
}

func TestCurrentUserError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"status":401,"message":"Invalid access token"}}`))
	}))
	defer srv.Close()

	c := New(spotify.New(srv.Client(), spotify.WithBaseURL(srv.URL+"/")))

	if _, _, err := c.CurrentUser(context.Background()); err == nil {
		t.Error("CurrentUser() should fail on 401")
	}
}

// Package spotify provides a wrapper around the Spotify Web API.
package spotify

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"
)

// Client wraps the Spotify API client with convenience methods.
type Client struct {
	api      *spotify.Client
	progress io.Writer
}

// Option configures a Client.
type Option func(*Client)

// WithProgress sets where fetch progress lines are written.
// Defaults to stderr so rendered output on stdout stays clean.
func WithProgress(w io.Writer) Option {
	return func(c *Client) {
		c.progress = w
	}
}

// New creates a new Spotify client wrapper.
// The underlying client should already be authenticated.
func New(api *spotify.Client, opts ...Option) *Client {
	c := &Client{api: api, progress: os.Stderr}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CurrentUser returns the signed-in user's Spotify ID and display name.
func (c *Client) CurrentUser(ctx context.Context) (id, name string, err error) {
	user, err := c.api.CurrentUser(ctx)
	if err != nil {
		return "", "", fmt.Errorf("getting current user: %w", err)
	}
	return user.ID, user.DisplayName, nil
}

// Token returns the current OAuth token, which may have been refreshed
// since the client was created.
func (c *Client) Token() (*oauth2.Token, error) {
	return c.api.Token()
}

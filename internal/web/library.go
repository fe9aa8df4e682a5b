package web

import (
	"context"

	zspotify "github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"github.com/justestif/go-playlist-progression/internal/features"
	"github.com/justestif/go-playlist-progression/internal/progression"
	"github.com/justestif/go-playlist-progression/internal/spotify"
)

// Library is the Spotify data the handlers read for a signed-in user.
type Library interface {
	FetchUserPlaylists(ctx context.Context) ([]spotify.PlaylistSummary, error)
	FetchPlaylist(ctx context.Context, id string) (*spotify.Playlist, error)
	FetchAudioFeatures(ctx context.Context, tracks []progression.Track) error
}

// LibraryFunc opens a Library with a user's token.
type LibraryFunc func(ctx context.Context, token *oauth2.Token) Library

// tokenSource is implemented by libraries whose token may be refreshed
// while serving a request.
type tokenSource interface {
	Token() (*oauth2.Token, error)
}

// cachedLibrary serves audio features through the database cache.
type cachedLibrary struct {
	*spotify.Client
	features *features.CachedFetcher
}

func (l cachedLibrary) FetchAudioFeatures(ctx context.Context, tracks []progression.Track) error {
	return l.features.FetchAudioFeatures(ctx, tracks)
}

// spotifyLibrary returns a LibraryFunc backed by the Spotify Web API.
// A non-nil store caches audio features.
func spotifyLibrary(auth *spotifyauth.Authenticator, store features.Store) LibraryFunc {
	return func(ctx context.Context, token *oauth2.Token) Library {
		client := spotify.New(zspotify.New(auth.Client(ctx, token), zspotify.WithRetry(true)))
		if store == nil {
			return client
		}
		return cachedLibrary{
			Client:   client,
			features: features.NewCachedFetcher(store, client),
		}
	}
}

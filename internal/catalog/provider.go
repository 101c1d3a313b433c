package catalog

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/cesargomez89/tubedrums/internal/domain"
)

// Credential is the authenticated identity used for catalog calls. A nil
// Credential means anonymous access.
type Credential = oauth2.TokenSource

// Provider lists the items of a playlist in playlist order.
type Provider interface {
	ListPlaylistItems(ctx context.Context, playlistID string, cred Credential) (*domain.Playlist, error)
}

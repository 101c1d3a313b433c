package catalog

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"

	"github.com/kkdai/youtube/v2"

	"github.com/cesargomez89/tubedrums/internal/domain"
)

// PublicProvider lists public and unlisted playlists without credentials by
// reading the web player's playlist data.
type PublicProvider struct {
	client youtube.Client
}

func NewPublicProvider(hc *http.Client) *PublicProvider {
	return &PublicProvider{client: youtube.Client{HTTPClient: hc}}
}

func (p *PublicProvider) ListPlaylistItems(ctx context.Context, playlistID string, _ Credential) (*domain.Playlist, error) {
	pl, err := p.client.GetPlaylistContext(ctx, playlistID)
	if err != nil {
		return nil, mapPublicError(err)
	}

	playlist := &domain.Playlist{
		ID:    playlistID,
		Title: pl.Title,
		Items: make([]domain.PlaylistItem, 0, len(pl.Videos)),
	}
	for _, v := range pl.Videos {
		if v == nil || v.ID == "" {
			continue
		}
		playlist.Items = append(playlist.Items, domain.PlaylistItem{VideoID: v.ID, Title: v.Title})
	}
	return playlist, nil
}

func mapPublicError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return MapTransportError(err)
	}
	return domain.NewError(domain.CodeYouTubeNotFound, http.StatusNotFound,
		"Playlist not found or not publicly accessible").Wrap(err)
}

var _ Provider = (*PublicProvider)(nil)

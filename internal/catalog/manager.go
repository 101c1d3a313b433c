package catalog

import (
	"context"
	"net/http"
	"time"

	"github.com/cesargomez89/tubedrums/internal/domain"
	"github.com/cesargomez89/tubedrums/internal/logger"
	"github.com/cesargomez89/tubedrums/internal/store"
)

// ProviderManager routes listings to the Data API when a credential is
// present and to the public provider otherwise.
type ProviderManager struct {
	authed *CachedProvider
	public *CachedProvider
	logger *logger.Logger

	dataAPI Provider
	anon    Provider
}

type ManagerOptions struct {
	DB       *store.DB
	Logger   *logger.Logger
	DataAPI  Provider // nil when OAuth is not configured
	Public   Provider // nil when anonymous listing is disabled
	CacheTTL time.Duration
}

func NewProviderManager(opts ManagerOptions) *ProviderManager {
	log := opts.Logger
	if log == nil {
		log = logger.Default()
	}
	m := &ProviderManager{
		dataAPI: opts.DataAPI,
		anon:    opts.Public,
		logger:  log.WithComponent("catalog"),
	}
	if opts.DB != nil && opts.CacheTTL > 0 {
		cache := &storeCache{store: opts.DB}
		if m.dataAPI != nil {
			m.authed = NewCachedProvider(m.dataAPI, cache, opts.CacheTTL)
		}
		if m.anon != nil {
			m.public = NewCachedProvider(m.anon, cache, opts.CacheTTL)
		}
	}
	return m
}

// CanServe reports whether a listing is possible with cred.
func (m *ProviderManager) CanServe(cred Credential) bool {
	return (cred != nil && m.dataAPI != nil) || m.anon != nil
}

func (m *ProviderManager) ListPlaylistItems(ctx context.Context, playlistID string, cred Credential) (*domain.Playlist, error) {
	p, source := m.pick(cred)
	if p == nil {
		return nil, domain.NewError(domain.CodeYouTubeNotAuthed, http.StatusServiceUnavailable,
			"YouTube API not authenticated. Run the auth command first.")
	}

	start := time.Now()
	playlist, err := p.ListPlaylistItems(ctx, playlistID, cred)
	if err != nil {
		m.logger.Warn("Playlist listing failed", "playlist_id", playlistID, "source", source, "error", err)
		return nil, err
	}
	m.logger.Debug("Playlist listed", "playlist_id", playlistID, "source", source,
		"items", len(playlist.Items), "duration", time.Since(start))
	return playlist, nil
}

func (m *ProviderManager) pick(cred Credential) (Provider, string) {
	if cred != nil && m.dataAPI != nil {
		if m.authed != nil {
			return m.authed, "data_api"
		}
		return m.dataAPI, "data_api"
	}
	if m.anon != nil {
		if m.public != nil {
			return m.public, "public"
		}
		return m.anon, "public"
	}
	return nil, ""
}

var _ Provider = (*ProviderManager)(nil)

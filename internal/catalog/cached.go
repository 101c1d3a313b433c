package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cesargomez89/tubedrums/internal/domain"
	"github.com/cesargomez89/tubedrums/internal/store"
)

type Cache interface {
	GetCache(key string) ([]byte, error)
	SetCache(key string, data []byte, ttl time.Duration) error
}

// CachedProvider memoizes listings for a short TTL. Authenticated and
// anonymous listings are cached apart since they can differ.
type CachedProvider struct {
	provider Provider
	cache    Cache
	cacheTTL time.Duration
}

func NewCachedProvider(provider Provider, cache Cache, cacheTTL time.Duration) *CachedProvider {
	return &CachedProvider{
		provider: provider,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

func (c *CachedProvider) ListPlaylistItems(ctx context.Context, playlistID string, cred Credential) (*domain.Playlist, error) {
	scope := "anon"
	if cred != nil {
		scope = "auth"
	}
	cacheKey := fmt.Sprintf("playlist:%s:%s", scope, playlistID)

	data, err := c.cache.GetCache(cacheKey)
	if err != nil {
		return nil, err
	}
	if data != nil {
		var playlist domain.Playlist
		if err := json.Unmarshal(data, &playlist); err == nil {
			return &playlist, nil
		}
	}

	playlist, err := c.provider.ListPlaylistItems(ctx, playlistID, cred)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(playlist); err == nil {
		_ = c.cache.SetCache(cacheKey, data, c.cacheTTL)
	}

	return playlist, nil
}

var _ Provider = (*CachedProvider)(nil)

type storeCache struct {
	store *store.DB
}

func (s *storeCache) GetCache(key string) ([]byte, error) {
	return s.store.GetCache(key)
}

func (s *storeCache) SetCache(key string, data []byte, ttl time.Duration) error {
	return s.store.SetCache(key, data, ttl)
}

var _ Cache = (*storeCache)(nil)

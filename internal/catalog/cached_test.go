package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

type mockCache struct {
	data map[string][]byte
	err  error
}

func (m *mockCache) GetCache(key string) ([]byte, error) {
	return m.data[key], m.err
}

func (m *mockCache) SetCache(key string, data []byte, ttl time.Duration) error {
	m.data[key] = data
	return m.err
}

func TestCachedProvider_ListPlaylistItems(t *testing.T) {
	inner := NewMockProvider(2)
	cache := &mockCache{data: make(map[string][]byte)}
	cp := NewCachedProvider(inner, cache, time.Hour)

	ctx := context.Background()

	// 1. First call - should call inner provider
	pl, err := cp.ListPlaylistItems(ctx, "PL1", nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if inner.Calls != 1 {
		t.Errorf("Expected 1 call to inner provider, got %d", inner.Calls)
	}
	if len(pl.Items) != 2 {
		t.Errorf("Expected 2 items, got %d", len(pl.Items))
	}

	// 2. Second call - should use cache
	pl, err = cp.ListPlaylistItems(ctx, "PL1", nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if inner.Calls != 1 {
		t.Errorf("Expected still 1 call to inner provider, got %d", inner.Calls)
	}
	if pl.Items[1].VideoID != "mockvid0002" {
		t.Errorf("Expected cached order to be preserved, got %s", pl.Items[1].VideoID)
	}

	// 3. Authenticated listing is cached separately
	cred := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok"})
	if _, err := cp.ListPlaylistItems(ctx, "PL1", cred); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if inner.Calls != 2 {
		t.Errorf("Expected 2 calls after authenticated listing, got %d", inner.Calls)
	}
}

func TestCachedProvider_DoesNotCacheErrors(t *testing.T) {
	inner := NewMockProvider(1)
	inner.Err = errors.New("boom")
	cache := &mockCache{data: make(map[string][]byte)}
	cp := NewCachedProvider(inner, cache, time.Hour)

	if _, err := cp.ListPlaylistItems(context.Background(), "PL1", nil); err == nil {
		t.Fatal("Expected error from inner provider")
	}
	if len(cache.data) != 0 {
		t.Errorf("Expected nothing cached, got %d entries", len(cache.data))
	}
}

func TestCachedProvider_CacheReadError(t *testing.T) {
	inner := NewMockProvider(1)
	cache := &mockCache{data: make(map[string][]byte), err: errors.New("disk gone")}
	cp := NewCachedProvider(inner, cache, time.Hour)

	if _, err := cp.ListPlaylistItems(context.Background(), "PL1", nil); err == nil {
		t.Fatal("Expected cache error to surface")
	}
	if inner.Calls != 0 {
		t.Errorf("Expected inner provider not to be called, got %d", inner.Calls)
	}
}

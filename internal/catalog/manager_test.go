package catalog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/cesargomez89/tubedrums/internal/domain"
	"github.com/cesargomez89/tubedrums/internal/logger"
	"github.com/cesargomez89/tubedrums/internal/store"
)

func TestProviderManager_Routing(t *testing.T) {
	cred := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok"})

	t.Run("credential uses data api", func(t *testing.T) {
		api, pub := NewMockProvider(1), NewMockProvider(1)
		m := NewProviderManager(ManagerOptions{Logger: logger.Discard(), DataAPI: api, Public: pub})
		if _, err := m.ListPlaylistItems(context.Background(), "PL1", cred); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if api.Calls != 1 || pub.Calls != 0 {
			t.Errorf("Expected data api only, got api=%d public=%d", api.Calls, pub.Calls)
		}
	})

	t.Run("anonymous uses public", func(t *testing.T) {
		api, pub := NewMockProvider(1), NewMockProvider(1)
		m := NewProviderManager(ManagerOptions{Logger: logger.Discard(), DataAPI: api, Public: pub})
		if _, err := m.ListPlaylistItems(context.Background(), "PL1", nil); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if api.Calls != 0 || pub.Calls != 1 {
			t.Errorf("Expected public only, got api=%d public=%d", api.Calls, pub.Calls)
		}
	})

	t.Run("no usable provider", func(t *testing.T) {
		m := NewProviderManager(ManagerOptions{Logger: logger.Discard(), DataAPI: NewMockProvider(1)})
		if m.CanServe(nil) {
			t.Error("Expected CanServe(nil) to be false without a public provider")
		}
		_, err := m.ListPlaylistItems(context.Background(), "PL1", nil)
		if !domain.IsCode(err, domain.CodeYouTubeNotAuthed) {
			t.Errorf("Expected %s, got %v", domain.CodeYouTubeNotAuthed, err)
		}
	})
}

func TestProviderManager_StoreCache(t *testing.T) {
	db, err := store.NewSQLiteDB(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	defer db.Close()

	pub := NewMockProvider(3)
	m := NewProviderManager(ManagerOptions{DB: db, Logger: logger.Discard(), Public: pub, CacheTTL: time.Minute})

	for i := 0; i < 2; i++ {
		pl, err := m.ListPlaylistItems(context.Background(), "PL1", nil)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(pl.Items) != 3 {
			t.Errorf("Expected 3 items, got %d", len(pl.Items))
		}
	}
	if pub.Calls != 1 {
		t.Errorf("Expected one upstream call, got %d", pub.Calls)
	}

	if err := db.ClearCache(); err != nil {
		t.Fatalf("ClearCache failed: %v", err)
	}
	if _, err := m.ListPlaylistItems(context.Background(), "PL1", nil); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if pub.Calls != 2 {
		t.Errorf("Expected a second upstream call after clearing, got %d", pub.Calls)
	}
}

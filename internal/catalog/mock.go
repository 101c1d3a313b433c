package catalog

import (
	"context"
	"fmt"

	"github.com/cesargomez89/tubedrums/internal/domain"
)

// MockProvider serves a fixed playlist, or an error, to tests. Nothing in the
// server wires it in.
type MockProvider struct {
	Err   error
	Items []domain.PlaylistItem
	Calls int
}

func NewMockProvider(n int) *MockProvider {
	items := make([]domain.PlaylistItem, n)
	for i := range items {
		items[i] = domain.PlaylistItem{
			VideoID: fmt.Sprintf("mockvid%04d", i+1),
			Title:   fmt.Sprintf("Mock Video %d", i+1),
		}
	}
	return &MockProvider{Items: items}
}

func (p *MockProvider) ListPlaylistItems(ctx context.Context, playlistID string, cred Credential) (*domain.Playlist, error) {
	p.Calls++
	if p.Err != nil {
		return nil, p.Err
	}
	items := make([]domain.PlaylistItem, len(p.Items))
	copy(items, p.Items)
	return &domain.Playlist{ID: playlistID, Title: "Mock Playlist " + playlistID, Items: items}, nil
}

var _ Provider = (*MockProvider)(nil)

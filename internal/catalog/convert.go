package catalog

import (
	"github.com/cesargomez89/tubedrums/internal/domain"
)

func (r APIPlaylistItem) ToDomain() (domain.PlaylistItem, bool) {
	id := r.Snippet.ResourceID.VideoID
	if id == "" {
		id = r.ContentDetails.VideoID
	}
	if id == "" {
		return domain.PlaylistItem{}, false
	}
	return domain.PlaylistItem{VideoID: id, Title: r.Snippet.Title}, true
}

// ToItems keeps API order and drops entries that do not reference a video.
func (r APIPlaylistItemListResponse) ToItems() []domain.PlaylistItem {
	items := make([]domain.PlaylistItem, 0, len(r.Items))
	for _, it := range r.Items {
		if item, ok := it.ToDomain(); ok {
			items = append(items, item)
		}
	}
	return items
}

func (r APIErrorResponse) Reason() string {
	if len(r.Error.Errors) > 0 {
		return r.Error.Errors[0].Reason
	}
	return "unknown"
}

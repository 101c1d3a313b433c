package domain

// PlaylistItem is one entry of a catalog listing, in playlist order.
type PlaylistItem struct {
	VideoID string `json:"video_id"`
	Title   string `json:"title"`
}

// Playlist is a snapshot of a playlist's metadata and items.
type Playlist struct {
	ID    string         `json:"id"`
	Title string         `json:"title"`
	Items []PlaylistItem `json:"items"`
}

// DirStats summarizes the video files stored for a job.
type DirStats struct {
	TotalFiles int   `json:"total_files"`
	TotalSize  int64 `json:"total_size"`
}

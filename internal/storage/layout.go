package storage

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/cesargomez89/tubedrums/internal/constants"
)

// Layout maps playlists to per-day directories under an absolute base.
type Layout struct {
	baseDir string
}

// NewLayout resolves baseDir to an absolute path.
func NewLayout(baseDir string) (*Layout, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("base directory cannot be empty")
	}
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory %s: %w", baseDir, err)
	}
	return &Layout{baseDir: abs}, nil
}

func (l *Layout) BaseDir() string {
	return l.baseDir
}

// PlaylistDir returns <base>/<YYYY-MM-DD>/<sanitized playlist id>.
// Two runs of the same playlist on the same day share a directory.
func (l *Layout) PlaylistDir(playlistID string, now time.Time) string {
	return filepath.Join(l.baseDir, now.Format(constants.DateLayout), SanitizeSegment(playlistID))
}

package storage

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cesargomez89/tubedrums/internal/constants"
	"github.com/cesargomez89/tubedrums/internal/domain"
	"github.com/cesargomez89/tubedrums/internal/logger"
)

// SanitizeSegment replaces characters that are illegal in a path segment with
// an underscore and strips trailing dots and spaces. The result is never empty
// and never a relative reference such as "..".
func SanitizeSegment(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || strings.ContainsRune(constants.InvalidPathChars, r) {
			return '_'
		}
		return r
	}, s)

	mapped = strings.TrimRight(mapped, ". ")
	if mapped == "" {
		return "_"
	}
	return mapped
}

// EnsureDir creates path and any missing parents. Existing directories are fine.
func EnsureDir(path string) error {
	return os.MkdirAll(path, constants.DirPermissions)
}

// Cleanup removes path recursively. Failures are logged, never returned.
func Cleanup(path string, log *logger.Logger) {
	if path == "" {
		return
	}
	if err := os.RemoveAll(path); err != nil {
		if log != nil {
			log.Warn("Failed to clean up directory", "path", path, "error", err)
		}
		return
	}
	if log != nil {
		log.Debug("Cleaned up directory", "path", path)
	}
}

// IsEmpty reports whether path has no entries. A missing path counts as empty.
func IsEmpty(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, err
	}
	return len(entries) == 0, nil
}

// DeleteFolderIfEmpty removes dirPath when it exists and has no entries.
func DeleteFolderIfEmpty(dirPath string) error {
	empty, err := IsEmpty(dirPath)
	if err != nil {
		return err
	}
	if !empty {
		return nil
	}
	if err := os.Remove(dirPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func DirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func FileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// IsVideoFile reports whether name has a recognized video extension.
func IsVideoFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, v := range constants.VideoExtensions {
		if ext == v {
			return true
		}
	}
	return false
}

func isPartial(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == constants.ExtPart || ext == constants.ExtYtdl
}

// FindDownloaded returns the file in dir written for videoID, matched by the
// "<videoID>_" name prefix. Partial leftovers are ignored and recognized video
// files win over anything else. Returns "" when nothing matches.
func FindDownloaded(dir, videoID string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}

	prefix := videoID + "_"
	var fallback string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) || isPartial(name) {
			continue
		}
		if IsVideoFile(name) {
			return filepath.Join(dir, name), nil
		}
		if fallback == "" {
			fallback = filepath.Join(dir, name)
		}
	}
	return fallback, nil
}

// VideoFiles lists recognized video files directly inside dir, sorted by name.
func VideoFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() && IsVideoFile(e.Name()) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// Stats counts recognized video files in dir and their total size.
func Stats(dir string) (domain.DirStats, error) {
	var stats domain.DirStats
	files, err := VideoFiles(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return stats, nil
		}
		return stats, err
	}
	for _, f := range files {
		size, err := FileSize(f)
		if err != nil {
			continue
		}
		stats.TotalFiles++
		stats.TotalSize += size
	}
	return stats, nil
}

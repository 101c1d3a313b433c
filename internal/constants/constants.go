// Package constants contains application-wide constants to avoid magic numbers and strings.
package constants

import "time"

// Application defaults
const (
	DefaultPort               = "3001"
	DefaultDBPath             = "tubedrums.db"
	DefaultDownloadsDir       = "downloads"
	DefaultYtDlpPath          = "yt-dlp"
	DefaultTokenFile          = ".tubedrums-token.json"
	DefaultYouTubeAPIURL      = "https://www.googleapis.com/youtube/v3"
	DefaultFetchTimeout       = 30 * time.Minute
	DefaultInterVideoDelay    = 1 * time.Second
	DefaultJobRetention       = 24 * time.Hour
	DefaultRetentionSchedule  = "@every 10m"
	DefaultCacheTTL           = 5 * time.Minute
	DefaultCatalogMinInterval = 200 * time.Millisecond
	DefaultHTTPTimeout        = 30 * time.Second
	DefaultRetryCount         = 3
	DefaultRetryBase          = 1 * time.Second
	DefaultShutdownTimeout    = 5 * time.Second
	DefaultLogMaxSizeMB       = 50
	DefaultLogMaxBackups      = 3
	DefaultLogMaxAgeDays      = 14
)

// Fetch policy
const (
	MaxVideoHeight       = 720
	VideoFormat          = "bestvideo[height<=720]+bestaudio/best[height<=720]"
	OutputTemplate       = "%(id)s_%(title)s.%(ext)s"
	ProgressInterval     = 500 * time.Millisecond
	VideoURLPrefix       = "https://www.youtube.com/watch?v="
	YouTubeReadonlyScope = "https://www.googleapis.com/auth/youtube.readonly"
)

// Catalog paging
const (
	PlaylistPageSize = 50
	MaxPlaylistPages = 200
)

// Archive naming
const (
	ArchiveFallbackName = "playlist"
	ArchiveMaxNameRunes = 200
	ArchiveExt          = ".zip"
	DateLayout          = "2006-01-02"
)

// Video file extensions recognized as completed artifacts
const (
	ExtMP4  = ".mp4"
	ExtWEBM = ".webm"
	ExtMKV  = ".mkv"
	ExtAVI  = ".avi"
	ExtMOV  = ".mov"
)

// VideoExtensions lists every extension the archive and skip checks accept.
var VideoExtensions = []string{ExtMP4, ExtWEBM, ExtMKV, ExtAVI, ExtMOV}

// Partial download leftovers written by yt-dlp
const (
	ExtPart = ".part"
	ExtYtdl = ".ytdl"
)

// Database
const (
	CacheTable = "cache"
)

// File Permissions
const (
	DirPermissions   = 0755
	FilePermissions  = 0644
	TokenPermissions = 0600
)

// Validation
const (
	MaxPlaylistIDLength = 100
)

// Characters to sanitize from filesystem paths
const InvalidPathChars = "<>:\"/\\|?*"

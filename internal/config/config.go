package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/cesargomez89/tubedrums/internal/constants"
)

// Config holds all application configuration
type Config struct {
	Port         string
	DBPath       string
	DownloadsDir string

	LogLevel      string
	LogFormat     string
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int

	YtDlpPath       string
	FetchTimeout    time.Duration
	InterVideoDelay time.Duration
	CleanupAfterZip bool

	JobRetention      time.Duration
	RetentionSchedule string

	CatalogCacheTTL    time.Duration
	CatalogMinInterval time.Duration
	AllowPublicCatalog bool
	YouTubeAPIURL      string

	YouTubeClientID     string
	YouTubeClientSecret string
	OAuthRedirectURI    string
	TokenFile           string

	// values that were set but could not be parsed, reported by Validate
	invalid []string
}

// Load reads an optional .env file and then builds the configuration from
// environment variables with defaults. Variables already present in the
// environment win over the file.
func Load() *Config {
	_ = godotenv.Load()

	c := &Config{
		Port:              getEnv("PORT", constants.DefaultPort),
		DBPath:            getEnv("DB_PATH", constants.DefaultDBPath),
		DownloadsDir:      getEnv("DOWNLOADS_DIR", constants.DefaultDownloadsDir),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "text"),
		LogFile:           getEnv("LOG_FILE", ""),
		YtDlpPath:         getEnv("YTDLP_PATH", constants.DefaultYtDlpPath),
		RetentionSchedule: getEnv("RETENTION_SCHEDULE", constants.DefaultRetentionSchedule),
		YouTubeAPIURL:     getEnv("YOUTUBE_API_URL", constants.DefaultYouTubeAPIURL),

		YouTubeClientID:     getEnv("YOUTUBE_CLIENT_ID", ""),
		YouTubeClientSecret: getEnv("YOUTUBE_CLIENT_SECRET", ""),
		OAuthRedirectURI:    getEnv("OAUTH_REDIRECT_URI", ""),
		TokenFile:           getEnv("YOUTUBE_TOKEN_FILE", constants.DefaultTokenFile),
	}

	c.LogMaxSizeMB = c.getInt("LOG_MAX_SIZE_MB", constants.DefaultLogMaxSizeMB)
	c.LogMaxBackups = c.getInt("LOG_MAX_BACKUPS", constants.DefaultLogMaxBackups)
	c.LogMaxAgeDays = c.getInt("LOG_MAX_AGE_DAYS", constants.DefaultLogMaxAgeDays)

	c.FetchTimeout = c.getDuration("FETCH_TIMEOUT", constants.DefaultFetchTimeout)
	c.InterVideoDelay = c.getDuration("INTER_VIDEO_DELAY", constants.DefaultInterVideoDelay)
	c.JobRetention = c.getDuration("JOB_RETENTION", constants.DefaultJobRetention)
	c.CatalogCacheTTL = c.getDuration("CATALOG_CACHE_TTL", constants.DefaultCacheTTL)
	c.CatalogMinInterval = c.getDuration("CATALOG_MIN_INTERVAL", constants.DefaultCatalogMinInterval)

	c.CleanupAfterZip = c.getBool("CLEANUP_AFTER_ZIP", false)
	c.AllowPublicCatalog = c.getBool("ALLOW_PUBLIC_CATALOG", true)

	return c
}

// OAuthConfigured reports whether client credentials for the Data API are set.
func (c *Config) OAuthConfigured() bool {
	return c.YouTubeClientID != "" && c.YouTubeClientSecret != ""
}

// Validate validates the configuration and returns detailed errors
func (c *Config) Validate() error {
	errors := append([]string(nil), c.invalid...)

	// Validate Port
	if c.Port == "" {
		errors = append(errors, "PORT cannot be empty")
	} else {
		port, err := strconv.Atoi(c.Port)
		if err != nil {
			errors = append(errors, fmt.Sprintf("PORT must be a valid number, got: %s", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("PORT must be between 1 and 65535, got: %d", port))
		}
	}

	if c.DBPath == "" {
		errors = append(errors, "DB_PATH cannot be empty")
	}

	if c.DownloadsDir == "" {
		errors = append(errors, "DOWNLOADS_DIR cannot be empty")
	}

	if c.YtDlpPath == "" {
		errors = append(errors, "YTDLP_PATH cannot be empty")
	}

	if c.YouTubeAPIURL == "" {
		errors = append(errors, "YOUTUBE_API_URL cannot be empty")
	} else if u, err := url.Parse(c.YouTubeAPIURL); err != nil || u.Scheme == "" || u.Host == "" {
		errors = append(errors, fmt.Sprintf("YOUTUBE_API_URL is not a valid URL: %s", c.YouTubeAPIURL))
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: debug, info, warn, error, got: %s", c.LogLevel))
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.LogFormat] {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: text, json, got: %s", c.LogFormat))
	}

	if c.FetchTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("FETCH_TIMEOUT must be positive, got: %s", c.FetchTimeout))
	}
	if c.InterVideoDelay < 0 {
		errors = append(errors, fmt.Sprintf("INTER_VIDEO_DELAY cannot be negative, got: %s", c.InterVideoDelay))
	}
	if c.JobRetention < 0 {
		errors = append(errors, fmt.Sprintf("JOB_RETENTION cannot be negative, got: %s", c.JobRetention))
	}
	if c.JobRetention > 0 && c.RetentionSchedule == "" {
		errors = append(errors, "RETENTION_SCHEDULE cannot be empty when JOB_RETENTION is set")
	}
	if c.CatalogCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("CATALOG_CACHE_TTL cannot be negative, got: %s", c.CatalogCacheTTL))
	}

	// Client credentials come in pairs
	if (c.YouTubeClientID == "") != (c.YouTubeClientSecret == "") {
		errors = append(errors, "YOUTUBE_CLIENT_ID and YOUTUBE_CLIENT_SECRET must be set together")
	}
	if !c.OAuthConfigured() && !c.AllowPublicCatalog {
		errors = append(errors, "no catalog source available: set YOUTUBE_CLIENT_ID/YOUTUBE_CLIENT_SECRET or ALLOW_PUBLIC_CATALOG=true")
	}
	if c.OAuthConfigured() && c.TokenFile == "" {
		errors = append(errors, "YOUTUBE_TOKEN_FILE cannot be empty when OAuth is configured")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func (c *Config) getDuration(key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		c.invalid = append(c.invalid, fmt.Sprintf("%s must be a duration like 30s or 5m, got: %s", key, raw))
		return fallback
	}
	return d
}

func (c *Config) getInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		c.invalid = append(c.invalid, fmt.Sprintf("%s must be a non-negative number, got: %s", key, raw))
		return fallback
	}
	return n
}

func (c *Config) getBool(key string, fallback bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		c.invalid = append(c.invalid, fmt.Sprintf("%s must be true or false, got: %s", key, raw))
		return fallback
	}
	return b
}

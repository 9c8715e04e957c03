package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	LogLevel string

	// Site
	SiteURL    string
	SiteDomain string

	// Sanity connection
	SanityProjectID  string
	SanityDataset    string
	SanityAPIVersion string
	SanityUseCDN     bool
	SanityToken      string
	SanityTimeout    time.Duration

	// Local drafts directory; replaces Sanity when set.
	ContentDir string

	// Render cache; empty dir keeps it in memory.
	CacheDir   string
	Revalidate time.Duration

	// Auth
	AdminAPIKey string

	// Warmer pool
	WorkerCount         int
	MaxQueueSize        int
	MaxConcurrentRender int
	JobTTL              time.Duration

	// Upload limits
	MaxUploadBytes int64

	// Rendering
	ImageWidth     int
	ImageHeight    int
	HighlightCode  bool
	HighlightStyle string
}

// Load reads configuration from the environment. A .env file in the working
// directory, or the file named by ENV_FILE, is applied first without
// overriding variables that are already set.
func Load() Config {
	envFile := envOr("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "config: ignoring %s: %v\n", envFile, err)
	}

	cfg := Config{
		Port:     envOr("PORT", "8090"),
		LogLevel: envOr("LOG_LEVEL", "info"),

		SiteURL:    strings.TrimRight(envOr("SITE_URL", "https://casevalue.law"), "/"),
		SiteDomain: envOr("SITE_DOMAIN", "casevalue.law"),

		SanityProjectID:  os.Getenv("SANITY_PROJECT_ID"),
		SanityDataset:    envOr("SANITY_DATASET", "production"),
		SanityAPIVersion: envOr("SANITY_API_VERSION", "2024-01-01"),
		SanityUseCDN:     envBool("SANITY_USE_CDN", true),
		SanityToken:      os.Getenv("SANITY_TOKEN"),
		SanityTimeout:    envDuration("SANITY_TIMEOUT", 30*time.Second),

		ContentDir: os.Getenv("CONTENT_DIR"),

		CacheDir:   os.Getenv("CACHE_DIR"),
		Revalidate: envDuration("REVALIDATE", time.Hour),

		AdminAPIKey: os.Getenv("ADMIN_API_KEY"),

		WorkerCount:         envInt("WORKER_COUNT", 2),
		MaxQueueSize:        envInt("MAX_QUEUE_SIZE", 32),
		MaxConcurrentRender: envInt("MAX_CONCURRENT_RENDER", 4),
		JobTTL:              envDuration("JOB_TTL", 1*time.Hour),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 10485760), // 10MB

		ImageWidth:     envInt("IMAGE_WIDTH", 1000),
		ImageHeight:    envInt("IMAGE_HEIGHT", 563),
		HighlightCode:  envBool("HIGHLIGHT_CODE", true),
		HighlightStyle: envOr("HIGHLIGHT_STYLE", "monokai"),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 32
	}
	if cfg.MaxConcurrentRender <= 0 {
		cfg.MaxConcurrentRender = 4
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10485760
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.SanityTimeout <= 0 {
		cfg.SanityTimeout = 30 * time.Second
	}
	if cfg.Revalidate < 0 {
		cfg.Revalidate = 0
	}
	if cfg.ImageWidth <= 0 {
		cfg.ImageWidth = 1000
	}
	if cfg.ImageHeight <= 0 {
		cfg.ImageHeight = 563
	}

	return cfg
}

func (c Config) Validate() error {
	if c.AdminAPIKey == "" {
		return fmt.Errorf("ADMIN_API_KEY is required")
	}
	if c.SanityProjectID == "" && c.ContentDir == "" {
		return fmt.Errorf("one of SANITY_PROJECT_ID or CONTENT_DIR is required")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LOG_LEVEL.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q", c.LogLevel)
	}
	return l, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	for _, k := range []string{"PORT", "SITE_URL", "WORKER_COUNT", "REVALIDATE", "SANITY_USE_CDN", "LOG_LEVEL", "SANITY_DATASET"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.Port != "8090" {
		t.Errorf("expected port 8090, got %s", cfg.Port)
	}
	if cfg.SiteURL != "https://casevalue.law" || cfg.SiteDomain != "casevalue.law" {
		t.Errorf("unexpected site %s %s", cfg.SiteURL, cfg.SiteDomain)
	}
	if cfg.SanityDataset != "production" || !cfg.SanityUseCDN {
		t.Errorf("unexpected sanity defaults %+v", cfg)
	}
	if cfg.Revalidate != time.Hour || cfg.WorkerCount != 2 {
		t.Errorf("unexpected warmer defaults %v %d", cfg.Revalidate, cfg.WorkerCount)
	}
}

func TestLoad_OverridesAndClamps(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("SITE_URL", "https://example.com/")
	t.Setenv("WORKER_COUNT", "-3")
	t.Setenv("REVALIDATE", "15m")
	t.Setenv("SANITY_USE_CDN", "false")
	t.Setenv("MAX_UPLOAD_BYTES", "0")

	cfg := Load()
	if cfg.SiteURL != "https://example.com" {
		t.Errorf("expected trailing slash trimmed, got %s", cfg.SiteURL)
	}
	if cfg.WorkerCount != 2 {
		t.Errorf("expected non-positive worker count reset, got %d", cfg.WorkerCount)
	}
	if cfg.Revalidate != 15*time.Minute || cfg.SanityUseCDN {
		t.Errorf("unexpected overrides %v %v", cfg.Revalidate, cfg.SanityUseCDN)
	}
	if cfg.MaxUploadBytes != 10485760 {
		t.Errorf("expected default upload limit, got %d", cfg.MaxUploadBytes)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("CONTENT_DIR=/srv/posts\nPORT=9999\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ENV_FILE", path)
	t.Setenv("PORT", "7000")
	t.Setenv("CONTENT_DIR", "")
	os.Unsetenv("CONTENT_DIR")

	cfg := Load()
	if cfg.ContentDir != "/srv/posts" {
		t.Errorf("expected CONTENT_DIR from env file, got %q", cfg.ContentDir)
	}
	if cfg.Port != "7000" {
		t.Errorf("expected process env to win, got %s", cfg.Port)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"missing key", Config{ContentDir: "x", LogLevel: "info"}, true},
		{"missing source", Config{AdminAPIKey: "k", LogLevel: "info"}, true},
		{"sanity", Config{AdminAPIKey: "k", SanityProjectID: "p", LogLevel: "info"}, false},
		{"local", Config{AdminAPIKey: "k", ContentDir: "x", LogLevel: "debug"}, false},
		{"bad level", Config{AdminAPIKey: "k", ContentDir: "x", LogLevel: "loud"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("expected err=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLevel(t *testing.T) {
	l, err := Config{LogLevel: "warn"}.Level()
	if err != nil || l != slog.LevelWarn {
		t.Errorf("expected warn, got %v %v", l, err)
	}
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"CACHE_TTL", "FETCH_TIMEOUT", "MAX_RETRIES", "OUTPUT_DIR", "POSTGRES_ENABLED", "NATS_URL"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	if cfg.CacheTTL != time.Hour {
		t.Errorf("CacheTTL: got %v, want 1h", cfg.CacheTTL)
	}
	if cfg.FetchTimeout != 10*time.Second {
		t.Errorf("FetchTimeout: got %v, want 10s", cfg.FetchTimeout)
	}
	if cfg.MaxRetries != 1 {
		t.Errorf("MaxRetries: got %d, want 1", cfg.MaxRetries)
	}
	if cfg.OutputDir != "data" {
		t.Errorf("OutputDir: got %q, want data", cfg.OutputDir)
	}
	if cfg.PostgresEnabled || cfg.NATSURL != "" {
		t.Error("mirror sinks should be disabled by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("FETCH_TIMEOUT", "5")
	t.Setenv("MAX_RETRIES", "3")
	t.Setenv("POSTGRES_ENABLED", "true")
	t.Setenv("POSTGRES_HOST", "db")

	cfg := Load()
	if cfg.CacheTTL != 90*time.Second {
		t.Errorf("CacheTTL: got %v, want 90s", cfg.CacheTTL)
	}
	if cfg.FetchTimeout != 5*time.Second {
		t.Errorf("FetchTimeout: got %v, want 5s", cfg.FetchTimeout)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries: got %d, want 3", cfg.MaxRetries)
	}
	if !cfg.PostgresEnabled {
		t.Error("PostgresEnabled should be true")
	}
	if !strings.Contains(cfg.DSN(), "host=db") {
		t.Errorf("DSN: %q", cfg.DSN())
	}
}

func TestGetEnvDurationRejectsGarbage(t *testing.T) {
	t.Setenv("CACHE_TTL", "soon")
	if got := getEnvDuration("CACHE_TTL", time.Minute); got != time.Minute {
		t.Errorf("got %v, want fallback 1m", got)
	}
}

func TestLoadSources(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	body := "sources:\n  MagicBricks:\n    url: http://localhost/mb/{locality}\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := LoadSources(path)
	if err != nil {
		t.Fatalf("LoadSources: %v", err)
	}
	if got["magicbricks"] != "http://localhost/mb/{locality}" {
		t.Errorf("template: got %q", got["magicbricks"])
	}
}

func TestLoadSourcesEmptyPath(t *testing.T) {
	got, err := LoadSources("")
	if err != nil || len(got) != 0 {
		t.Errorf("expected no overrides, got %v, %v", got, err)
	}
}

func TestLoadSourcesRejectsMissingPlaceholder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	body := "sources:\n  makaan:\n    url: http://localhost/static\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadSources(path); err == nil {
		t.Error("expected an error for a template without {locality}")
	}
}

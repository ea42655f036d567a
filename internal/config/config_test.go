package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadUsesDefaultsAndYAMLOverrides(t *testing.T) {
	clearConfigEnv(t)

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	yaml := `
upstream:
  base_url: http://api.internal:8000
  timeout: 3s
search:
  page_size: 25
  snapshot_ttl: 45m
amqp:
  exchange: custom.matches
cors:
  allowed_origins:
    - https://app.example.com
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Upstream.BaseURL != "http://api.internal:8000" {
		t.Fatalf("unexpected upstream base url: %s", cfg.Upstream.BaseURL)
	}
	if cfg.Upstream.Timeout.String() != "3s" {
		t.Fatalf("unexpected upstream timeout: %s", cfg.Upstream.Timeout)
	}
	if cfg.Search.PageSize != 25 {
		t.Fatalf("unexpected search page size: %d", cfg.Search.PageSize)
	}
	if cfg.Search.SnapshotTTL.String() != "45m0s" {
		t.Fatalf("unexpected snapshot ttl: %s", cfg.Search.SnapshotTTL)
	}
	if cfg.AMQP.Exchange != "custom.matches" {
		t.Fatalf("unexpected amqp exchange: %s", cfg.AMQP.Exchange)
	}
	if len(cfg.CORS.AllowedOrigins) != 1 || cfg.CORS.AllowedOrigins[0] != "https://app.example.com" {
		t.Fatalf("unexpected cors origins: %v", cfg.CORS.AllowedOrigins)
	}

	if cfg.Search.MaxPageSize != 50 {
		t.Fatalf("max_page_size default should stay 50")
	}
	if cfg.Search.AgeClampMin != 19 || cfg.Search.AgeClampMax != 100 {
		t.Fatalf("age clamp defaults should stay 19-100, got %d-%d", cfg.Search.AgeClampMin, cfg.Search.AgeClampMax)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("http addr default should stay :8080")
	}
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config with missing file: %v", err)
	}

	if cfg.Search.PageSize != 20 {
		t.Fatalf("unexpected default page size: %d", cfg.Search.PageSize)
	}
	if cfg.Search.SnapshotTTL.String() != "30m0s" {
		t.Fatalf("unexpected default snapshot ttl: %s", cfg.Search.SnapshotTTL)
	}
	if cfg.AMQP.Exchange != "search.matches" {
		t.Fatalf("unexpected default exchange: %s", cfg.AMQP.Exchange)
	}
	if cfg.Notifier.Interval.String() != "6h0m0s" {
		t.Fatalf("unexpected default notifier interval: %s", cfg.Notifier.Interval)
	}
}

func TestLoadRejectsDefaultJWTSecretInProduction(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("APP_ENV", "prod")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatalf("expected error when auth.jwt_secret keeps its default in production")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("UPSTREAM_BASE_URL", "http://override:9000")
	t.Setenv("SEARCH_PAGE_SIZE", "10")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Upstream.BaseURL != "http://override:9000" {
		t.Fatalf("env override for upstream base url not applied: %s", cfg.Upstream.BaseURL)
	}
	if cfg.Search.PageSize != 10 {
		t.Fatalf("env override for page size not applied: %d", cfg.Search.PageSize)
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV",
		"HTTP_ADDR",
		"HTTP_READ_TIMEOUT",
		"HTTP_WRITE_TIMEOUT",
		"HTTP_IDLE_TIMEOUT",
		"LOG_LEVEL",
		"POSTGRES_DSN",
		"REDIS_ADDR",
		"REDIS_PASSWORD",
		"REDIS_DB",
		"S3_ENDPOINT",
		"S3_ACCESS_KEY",
		"S3_SECRET_KEY",
		"S3_BUCKET",
		"S3_USE_SSL",
		"AMQP_URI",
		"AMQP_EXCHANGE",
		"JWT_SECRET",
		"JWT_ACCESS_TTL",
		"REFRESH_TTL",
		"UPSTREAM_BASE_URL",
		"UPSTREAM_TIMEOUT",
		"SEARCH_PAGE_SIZE",
		"SEARCH_SNAPSHOT_TTL",
		"NOTIFIER_INTERVAL",
	} {
		t.Setenv(key, "")
	}
}

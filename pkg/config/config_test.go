package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load with empty path: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Catalog.Source != "files" {
		t.Errorf("Catalog.Source = %q, want files", cfg.Catalog.Source)
	}
	if cfg.Search.DefaultLimit != 20 || cfg.Search.MaxResults != 100 {
		t.Errorf("search limits = %d/%d, want 20/100", cfg.Search.DefaultLimit, cfg.Search.MaxResults)
	}
	if cfg.Kafka.Topics.ContentUpdate != "content-update" {
		t.Errorf("content update topic = %q", cfg.Kafka.Topics.ContentUpdate)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9999
catalog:
  source: postgres
  refreshInterval: 42s
search:
  defaultLimit: 5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Catalog.Source != "postgres" {
		t.Errorf("Catalog.Source = %q, want postgres", cfg.Catalog.Source)
	}
	if cfg.Catalog.RefreshInterval != 42*time.Second {
		t.Errorf("RefreshInterval = %v, want 42s", cfg.Catalog.RefreshInterval)
	}
	if cfg.Search.DefaultLimit != 5 {
		t.Errorf("DefaultLimit = %d, want 5", cfg.Search.DefaultLimit)
	}
	// Untouched sections keep their defaults.
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("Redis.Addr = %q, want default", cfg.Redis.Addr)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("AH_SERVER_PORT", "7070")
	t.Setenv("AH_CATALOG_SOURCE", "postgres")
	t.Setenv("AH_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("AH_SEARCH_DEFAULT_LIMIT", "50")
	t.Setenv("AH_LOGGING_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Catalog.Source != "postgres" {
		t.Errorf("Catalog.Source = %q, want postgres", cfg.Catalog.Source)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "k2:9092" {
		t.Errorf("Kafka.Brokers = %v", cfg.Kafka.Brokers)
	}
	if cfg.Search.DefaultLimit != 50 {
		t.Errorf("DefaultLimit = %d, want 50", cfg.Search.DefaultLimit)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestEnvOverrideIgnoresInvalidValues(t *testing.T) {
	t.Setenv("AH_SERVER_PORT", "not-a-port")
	t.Setenv("AH_SEARCH_DEFAULT_LIMIT", "-3")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("invalid port override applied: %d", cfg.Server.Port)
	}
	if cfg.Search.DefaultLimit != 20 {
		t.Errorf("invalid limit override applied: %d", cfg.Search.DefaultLimit)
	}
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{
		Host: "db", Port: 5433, User: "u", Password: "p",
		Database: "catalog", SSLMode: "require",
	}
	want := "host=db port=5433 user=u password=p dbname=catalog sslmode=require"
	if got := p.DSN(); got != want {
		t.Errorf("DSN = %q, want %q", got, want)
	}
}

package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/badgehub/badgehub/internal/bytesize"
)

// yamlSafePath converts a filesystem path to a YAML-safe representation.
func yamlSafePath(p string) string {
	return filepath.ToSlash(p)
}

// writeConfig writes content to config.yaml in a temp dir and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoad_DefaultsApplied(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
logging:
  level: "info"

database:
  engine: sqlite
  sqlite:
    path: "`+yamlSafePath(dir)+`/metadata.db"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected normalized level INFO, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stderr" {
		t.Errorf("Expected default output 'stderr', got %q", cfg.Logging.Output)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected default shutdown_timeout 30s, got %v", cfg.ShutdownTimeout)
	}
	if cfg.Metrics.Port != 9090 {
		t.Errorf("Expected default metrics port 9090, got %d", cfg.Metrics.Port)
	}
	if cfg.Uploads.MaxFileSize != 32*bytesize.MiB {
		t.Errorf("Expected default max_file_size 32Mi, got %v", cfg.Uploads.MaxFileSize)
	}
	if cfg.Reports.RefreshInterval != time.Hour {
		t.Errorf("Expected default refresh_interval 1h, got %v", cfg.Reports.RefreshInterval)
	}
	if cfg.Database.SQLite.BusyTimeoutMs != 5000 {
		t.Errorf("Expected default busy timeout 5000, got %d", cfg.Database.SQLite.BusyTimeoutMs)
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err != nil {
		t.Fatalf("Expected no error when loading default config, got: %v", err)
	}
	if cfg.Database.Engine != EngineSQLite {
		t.Errorf("Expected default engine sqlite, got %q", cfg.Database.Engine)
	}
	if cfg.StatsCache.Enabled {
		t.Error("Expected stats cache to be disabled by default")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: INFO
  invalid yaml here [[[
`)

	if _, err := Load(path); err == nil {
		t.Fatal("Expected error with invalid YAML, got nil")
	}
}

func TestLoad_InvalidValue(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: chatty
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("Expected validation error, got nil")
	}
	if !strings.Contains(err.Error(), "Logging.Level") {
		t.Errorf("Expected error to name Logging.Level, got: %v", err)
	}
}

func TestLoad_DurationsAndSizes(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
shutdown_timeout: 10s
uploads:
  max_file_size: 8Mi
reports:
  refresh_interval: 15m
database:
  engine: sqlite
  sqlite:
    path: "`+yamlSafePath(dir)+`/metadata.db"
stats_cache:
  enabled: true
  addr: redis:6379
  ttl: 2m
catalog:
  badges: [mch2022, why2025]
  categories: [Games]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("shutdown_timeout = %v, want 10s", cfg.ShutdownTimeout)
	}
	if cfg.Uploads.MaxFileSize != 8*bytesize.MiB {
		t.Errorf("max_file_size = %v, want 8Mi", cfg.Uploads.MaxFileSize)
	}
	if cfg.Reports.RefreshInterval != 15*time.Minute {
		t.Errorf("refresh_interval = %v, want 15m", cfg.Reports.RefreshInterval)
	}
	if !cfg.StatsCache.Enabled || cfg.StatsCache.Addr != "redis:6379" || cfg.StatsCache.TTL != 2*time.Minute {
		t.Errorf("stats_cache = %+v", cfg.StatsCache)
	}
	if cfg.StatsCache.Key != "badgehub:stats" {
		t.Errorf("stats_cache key = %q, want default", cfg.StatsCache.Key)
	}
	if !slices.Equal(cfg.Catalog.Badges, []string{"mch2022", "why2025"}) {
		t.Errorf("catalog badges = %v", cfg.Catalog.Badges)
	}
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("BADGEHUB_LOGGING_LEVEL", "ERROR")
	t.Setenv("BADGEHUB_METRICS_PORT", "9191")
	t.Setenv("BADGEHUB_UPLOADS_MAX_FILE_SIZE", "1Mi")
	t.Setenv("BADGEHUB_STATS_CACHE_TTL", "30s")

	dir := t.TempDir()
	path := writeConfig(t, `
logging:
  level: "INFO"
metrics:
  port: 8080
database:
  engine: sqlite
  sqlite:
    path: "`+yamlSafePath(dir)+`/metadata.db"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Logging.Level != "ERROR" {
		t.Errorf("Expected level 'ERROR' from env var, got %q", cfg.Logging.Level)
	}
	if cfg.Metrics.Port != 9191 {
		t.Errorf("Expected port 9191 from env var, got %d", cfg.Metrics.Port)
	}
	if cfg.Uploads.MaxFileSize != bytesize.MiB {
		t.Errorf("Expected max_file_size 1Mi from env var, got %v", cfg.Uploads.MaxFileSize)
	}
	if cfg.StatsCache.TTL != 30*time.Second {
		t.Errorf("Expected stats cache ttl 30s from env var, got %v", cfg.StatsCache.TTL)
	}
}

func TestSaveConfig_Reloads(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := GetDefaultConfig()
	cfg.Logging.Level = "WARN"
	cfg.Uploads.MaxFileSize = 4 * bytesize.MiB
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Saved config missing: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("Saved config mode = %o, want 600", perm)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to reload saved config: %v", err)
	}
	if loaded.Logging.Level != "WARN" || loaded.Uploads.MaxFileSize != 4*bytesize.MiB {
		t.Errorf("Reloaded config = %+v / %v", loaded.Logging, loaded.Uploads.MaxFileSize)
	}
	if loaded.Database.SQLite.Path != cfg.Database.SQLite.Path {
		t.Errorf("sqlite path = %q, want %q", loaded.Database.SQLite.Path, cfg.Database.SQLite.Path)
	}
}

func TestMustLoad_MissingFile(t *testing.T) {
	_, err := MustLoad(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("Expected error for missing config file")
	}
	if !strings.Contains(err.Error(), "badgehub config init") {
		t.Errorf("Expected init instructions, got: %v", err)
	}
}

func TestMustLoad_MissingDefault(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if DefaultConfigExists() {
		t.Fatal("Expected no default config in empty XDG_CONFIG_HOME")
	}
	if _, err := MustLoad(""); err == nil {
		t.Fatal("Expected error when default config is missing")
	}
}

func TestGetDefaultConfigPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	want := filepath.Join(dir, "badgehub", "config.yaml")
	if got := GetDefaultConfigPath(); got != want {
		t.Errorf("GetDefaultConfigPath() = %q, want %q", got, want)
	}
	if got := GetConfigDir(); filepath.Base(got) != "badgehub" {
		t.Errorf("Expected directory name 'badgehub', got %q", filepath.Base(got))
	}
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	content := func(level string) string {
		return `
logging:
  level: ` + level + `
database:
  engine: sqlite
  sqlite:
    path: "` + yamlSafePath(dir) + `/metadata.db"
`
	}
	path := writeConfig(t, content("INFO"))

	changes := make(chan *Config, 4)
	if err := Watch(path, func(c *Config) { changes <- c }, nil); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	if err := os.WriteFile(path, []byte(content("DEBUG")), 0644); err != nil {
		t.Fatalf("Failed to rewrite config: %v", err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-changes:
			if cfg.Logging.Level == "DEBUG" {
				return
			}
		case <-deadline:
			t.Fatal("Timed out waiting for config reload")
		}
	}
}

func TestWatch_MissingFile(t *testing.T) {
	err := Watch(filepath.Join(t.TempDir(), "missing.yaml"), func(*Config) {}, nil)
	if err == nil {
		t.Fatal("Expected error when watching a missing file")
	}
}

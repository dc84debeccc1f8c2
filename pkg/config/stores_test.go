package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/badgehub/badgehub/pkg/metadata"
	"github.com/badgehub/badgehub/pkg/metrics"
)

// sqliteConfig returns a default config whose database lives in a temp dir.
func sqliteConfig(t *testing.T) *Config {
	t.Helper()
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	cfg := GetDefaultConfig()
	cfg.Database.SQLite.Path = filepath.Join(t.TempDir(), "metadata.db")
	return cfg
}

func TestCreateService_SQLite(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.Catalog.Badges = []string{"mch2022"}

	svc, err := CreateService(t.Context(), cfg)
	if err != nil {
		t.Fatalf("CreateService failed: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })

	if err := svc.InsertProject(t.Context(), metadata.NewProject{Slug: "snake"}, nil); err != nil {
		t.Fatalf("InsertProject failed: %v", err)
	}
	stats, err := svc.GetStats(t.Context())
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.Projects != 1 {
		t.Errorf("Projects = %d, want 1", stats.Projects)
	}
	if got := svc.GetBadges(); len(got) != 1 || got[0] != "mch2022" {
		t.Errorf("GetBadges() = %v", got)
	}
}

func TestCreateService_UploadLimit(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.Uploads.MaxFileSize = 10

	svc, err := CreateService(t.Context(), cfg)
	if err != nil {
		t.Fatalf("CreateService failed: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })

	if err := svc.InsertProject(t.Context(), metadata.NewProject{Slug: "snake"}, nil); err != nil {
		t.Fatalf("InsertProject failed: %v", err)
	}
	err = svc.WriteDraftFileMetadata(t.Context(), "snake", []string{"main.py"},
		metadata.UploadedFile{Mimetype: "text/x-python", Size: 11},
		"9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08")
	if err == nil {
		t.Fatal("Expected upload over the configured limit to fail")
	}
}

func TestCreateService_StatsCacheUnreachable(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.StatsCache.Enabled = true
	cfg.StatsCache.Addr = "127.0.0.1:1"
	cfg.StatsCache.DialTimeout = 200 * time.Millisecond

	if _, err := CreateService(t.Context(), cfg); err == nil {
		t.Fatal("Expected error when Redis is unreachable")
	}
}

func TestCreateMetadataStore_UnknownEngine(t *testing.T) {
	_, err := CreateMetadataStore(t.Context(), &DatabaseConfig{Engine: "mysql"})
	if err == nil {
		t.Fatal("Expected error for unknown engine")
	}
}

func TestMigrateDatabase_SQLite(t *testing.T) {
	cfg := sqliteConfig(t)

	if err := MigrateDatabase(t.Context(), &cfg.Database); err != nil {
		t.Fatalf("MigrateDatabase failed: %v", err)
	}
	if _, err := os.Stat(cfg.Database.SQLite.Path); err != nil {
		t.Errorf("Database file not created: %v", err)
	}
	if err := MigrateDatabase(t.Context(), &cfg.Database); err != nil {
		t.Errorf("Second MigrateDatabase failed: %v", err)
	}
}

func TestInitializeMetrics(t *testing.T) {
	metrics.Reset()
	t.Cleanup(metrics.Reset)

	cfg := GetDefaultConfig()
	if InitializeMetrics(cfg) {
		t.Error("InitializeMetrics reported enabled for disabled config")
	}
	if metrics.IsEnabled() {
		t.Error("Registry created while metrics are disabled")
	}

	cfg.Metrics.Enabled = true
	if !InitializeMetrics(cfg) || !metrics.IsEnabled() {
		t.Error("Expected registry after enabling metrics")
	}
}

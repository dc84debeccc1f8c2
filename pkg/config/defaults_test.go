package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/badgehub/badgehub/internal/bytesize"
)

func TestApplyDefaults_Logging(t *testing.T) {
	cfg := &Config{Logging: LoggingConfig{Level: "debug"}}
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected level normalized to DEBUG, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" || cfg.Logging.Output != "stderr" {
		t.Errorf("Unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestApplyDefaults_Telemetry(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Telemetry.Endpoint != "localhost:4317" {
		t.Errorf("Expected OTLP endpoint localhost:4317, got %q", cfg.Telemetry.Endpoint)
	}
	if cfg.Telemetry.SampleRate != 1.0 {
		t.Errorf("Expected sample rate 1.0, got %v", cfg.Telemetry.SampleRate)
	}
	if len(cfg.Telemetry.Profiling.ProfileTypes) != 6 {
		t.Errorf("Expected 6 default profile types, got %v", cfg.Telemetry.Profiling.ProfileTypes)
	}
}

func TestApplyDefaults_SQLite(t *testing.T) {
	dataHome := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dataHome)

	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Database.Engine != EngineSQLite {
		t.Errorf("Expected engine sqlite, got %q", cfg.Database.Engine)
	}
	want := filepath.Join(dataHome, "badgehub", "metadata.db")
	if cfg.Database.SQLite.Path != want {
		t.Errorf("sqlite path = %q, want %q", cfg.Database.SQLite.Path, want)
	}
}

func TestApplyDefaults_GORMPostgres(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{Engine: EngineGORMPostgres}}
	ApplyDefaults(cfg)

	if cfg.Database.GORMPostgres.Port != 5432 || cfg.Database.GORMPostgres.MaxOpenConns != 25 {
		t.Errorf("Unexpected gorm postgres defaults: %+v", cfg.Database.GORMPostgres)
	}
	if cfg.Database.SQLite.Path != "" {
		t.Errorf("sqlite section filled for gorm-postgres engine: %q", cfg.Database.SQLite.Path)
	}
}

func TestApplyDefaults_Postgres(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{Engine: EnginePostgres}}
	ApplyDefaults(cfg)

	pg := cfg.Database.Postgres
	if pg.Port != 5432 || pg.MaxConns != 10 || pg.SSLMode != "prefer" {
		t.Errorf("Unexpected postgres defaults: %+v", pg)
	}
}

func TestApplyDefaults_StatsCacheOnlyWhenEnabled(t *testing.T) {
	disabled := &Config{}
	ApplyDefaults(disabled)
	if disabled.StatsCache.Addr != "" {
		t.Errorf("Expected untouched stats cache when disabled, got %+v", disabled.StatsCache)
	}

	enabled := &Config{StatsCache: StatsCacheConfig{Enabled: true}}
	ApplyDefaults(enabled)
	if enabled.StatsCache.Addr != "localhost:6379" || enabled.StatsCache.TTL != 5*time.Minute {
		t.Errorf("Unexpected stats cache defaults: %+v", enabled.StatsCache)
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		Logging:         LoggingConfig{Level: "WARN", Format: "json", Output: "/var/log/badgehub.log"},
		ShutdownTimeout: 5 * time.Second,
		Metrics:         MetricsConfig{Enabled: true, Port: 9999},
		Uploads:         UploadsConfig{MaxFileSize: 2 * bytesize.MiB},
		Reports:         ReportsConfig{RefreshInterval: time.Minute},
	}
	ApplyDefaults(cfg)

	if cfg.Logging.Format != "json" || cfg.Logging.Output != "/var/log/badgehub.log" {
		t.Errorf("Logging overwritten: %+v", cfg.Logging)
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("ShutdownTimeout overwritten: %v", cfg.ShutdownTimeout)
	}
	if cfg.Metrics.Port != 9999 {
		t.Errorf("Metrics port overwritten: %d", cfg.Metrics.Port)
	}
	if cfg.Uploads.MaxFileSize != 2*bytesize.MiB {
		t.Errorf("MaxFileSize overwritten: %v", cfg.Uploads.MaxFileSize)
	}
	if cfg.Reports.RefreshInterval != time.Minute {
		t.Errorf("RefreshInterval overwritten: %v", cfg.Reports.RefreshInterval)
	}
}

func TestGetDefaultConfig_IsValid(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	if err := Validate(GetDefaultConfig()); err != nil {
		t.Errorf("Default config failed validation: %v", err)
	}
}

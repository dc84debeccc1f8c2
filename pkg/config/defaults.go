package config

import (
	"strings"
	"time"

	"github.com/badgehub/badgehub/internal/bytesize"
	"github.com/badgehub/badgehub/internal/telemetry"
	"github.com/badgehub/badgehub/pkg/metadata"
	"github.com/badgehub/badgehub/pkg/metadata/store/gormstore"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// Zero values are replaced with defaults; explicit values are preserved.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	applyMetricsDefaults(&cfg.Metrics)
	applyDatabaseDefaults(&cfg.Database)
	if cfg.Uploads.MaxFileSize == 0 {
		cfg.Uploads.MaxFileSize = bytesize.ByteSize(metadata.DefaultMaxFileSize)
	}
	if cfg.StatsCache.Enabled {
		cfg.StatsCache.ApplyDefaults()
	}
	if cfg.Reports.RefreshInterval == 0 {
		cfg.Reports.RefreshInterval = time.Hour
	}
}

// applyLoggingDefaults sets logging defaults and normalizes values.
// Logs default to stderr so command output on stdout stays parseable.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stderr"
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}

	if cfg.Profiling.Endpoint == "" {
		cfg.Profiling.Endpoint = "http://localhost:4040"
	}
	if len(cfg.Profiling.ProfileTypes) == 0 {
		cfg.Profiling.ProfileTypes = append([]string(nil), telemetry.DefaultProfileTypes...)
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Port == 0 {
		cfg.Port = 9090
	}
}

// applyDatabaseDefaults fills the section of the selected engine only.
func applyDatabaseDefaults(cfg *DatabaseConfig) {
	if cfg.Engine == "" {
		cfg.Engine = EngineSQLite
	}

	switch cfg.Engine {
	case EngineSQLite, EngineGORMPostgres:
		g := cfg.gormConfig()
		g.ApplyDefaults()
		cfg.SQLite, cfg.GORMPostgres = g.SQLite, g.Postgres
	case EnginePostgres:
		cfg.Postgres.ApplyDefaults()
	}
}

// gormConfig maps the GORM-backed engines onto gormstore.Config.
func (c *DatabaseConfig) gormConfig() *gormstore.Config {
	g := &gormstore.Config{SQLite: c.SQLite, Postgres: c.GORMPostgres}
	if c.Engine == EngineGORMPostgres {
		g.Type = gormstore.DatabaseTypePostgres
	} else {
		g.Type = gormstore.DatabaseTypeSQLite
	}
	return g
}

// GetDefaultConfig returns a Config with all default values applied.
func GetDefaultConfig() *Config {
	cfg := &Config{
		Database: DatabaseConfig{Engine: EngineSQLite},
	}
	ApplyDefaults(cfg)
	return cfg
}

package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	return GetDefaultConfig()
}

func TestValidate_ValidConfig(t *testing.T) {
	if err := Validate(validConfig(t)); err != nil {
		t.Errorf("Expected valid config to pass validation, got error: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"InvalidLogLevel", func(c *Config) { c.Logging.Level = "INVALID" }, "oneof"},
		{"InvalidLogFormat", func(c *Config) { c.Logging.Format = "xml" }, "Logging.Format"},
		{"PortOutOfRange", func(c *Config) { c.Metrics.Port = 70000 }, "max"},
		{"NegativePort", func(c *Config) { c.Metrics.Port = -1 }, "min"},
		{"ZeroShutdownTimeout", func(c *Config) { c.ShutdownTimeout = 0 }, "ShutdownTimeout"},
		{"SampleRateAboveOne", func(c *Config) { c.Telemetry.SampleRate = 1.5 }, "lte"},
		{"UnknownProfileType", func(c *Config) { c.Telemetry.Profiling.ProfileTypes = []string{"heap"} }, "ProfileTypes"},
		{"UnknownEngine", func(c *Config) { c.Database.Engine = "mysql" }, "oneof"},
		{"EmptyBadge", func(c *Config) { c.Catalog.Badges = []string{"mch2022", ""} }, "Catalog.Badges"},
		{"NegativeUploadLimit", func(c *Config) { c.Uploads.MaxFileSize = -1 }, "MaxFileSize"},
		{"NegativeRefresh", func(c *Config) { c.Reports.RefreshInterval = -time.Second }, "RefreshInterval"},
		{"MissingSQLitePath", func(c *Config) { c.Database.SQLite.Path = "" }, "sqlite path"},
		{"PostgresWithoutHost", func(c *Config) {
			c.Database.Engine = EnginePostgres
			c.Database.Postgres.ApplyDefaults()
		}, "host is required"},
		{"GORMPostgresWithoutHost", func(c *Config) { c.Database.Engine = EngineGORMPostgres }, "postgres host"},
		{"StatsCacheNegativeTTL", func(c *Config) {
			c.StatsCache.Enabled = true
			c.StatsCache.TTL = -time.Minute
		}, "stats_cache"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("Expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got: %v", tt.want, err)
			}
		})
	}
}

func TestValidate_TelemetryEnabledWithoutEndpoint(t *testing.T) {
	cfg := validConfig(t)
	cfg.Telemetry.Enabled = true
	cfg.Telemetry.Endpoint = ""

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected error for enabled telemetry without endpoint")
	}

	cfg.Telemetry.Enabled = false
	if err := Validate(cfg); err != nil {
		t.Errorf("Disabled telemetry should not need an endpoint: %v", err)
	}
}

func TestValidate_DisabledStatsCacheIgnored(t *testing.T) {
	cfg := validConfig(t)
	cfg.StatsCache.TTL = -time.Minute

	if err := Validate(cfg); err != nil {
		t.Errorf("Disabled stats cache should not be validated: %v", err)
	}
}

package postgres

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds the configuration of the PostgreSQL metadata store.
type Config struct {
	// Connection parameters
	Host     string `mapstructure:"host" yaml:"host" validate:"required"`
	Port     int    `mapstructure:"port" yaml:"port" validate:"required"`
	Database string `mapstructure:"database" yaml:"database" validate:"required"`
	User     string `mapstructure:"user" yaml:"user" validate:"required"`
	Password string `mapstructure:"password" yaml:"password"`
	SSLMode  string `mapstructure:"ssl_mode" yaml:"ssl_mode" validate:"omitempty,oneof=disable prefer require verify-ca verify-full"`

	// Connection pool
	MaxConns          int32         `mapstructure:"max_conns" yaml:"max_conns"`                     // Default: 10
	MinConns          int32         `mapstructure:"min_conns" yaml:"min_conns"`                     // Default: 2
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime" yaml:"max_conn_lifetime"`     // Default: 1h
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time" yaml:"max_conn_idle_time"`   // Default: 30m
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period" yaml:"health_check_period"` // Default: 1m

	// Timeouts
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" yaml:"connect_timeout"` // Default: 5s
	QueryTimeout   time.Duration `mapstructure:"query_timeout" yaml:"query_timeout"`     // Default: 30s

	// AutoMigrate applies pending schema migrations on open. When false the
	// schema must be brought up with `badgehub migrate`.
	AutoMigrate bool `mapstructure:"auto_migrate" yaml:"auto_migrate"`
}

// ApplyDefaults sets default values for unspecified fields.
func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = 5432
	}
	if c.MaxConns == 0 {
		c.MaxConns = 10
	}
	if c.MinConns == 0 {
		c.MinConns = 2
	}
	if c.MaxConnLifetime == 0 {
		c.MaxConnLifetime = time.Hour
	}
	if c.MaxConnIdleTime == 0 {
		c.MaxConnIdleTime = 30 * time.Minute
	}
	if c.HealthCheckPeriod == 0 {
		c.HealthCheckPeriod = time.Minute
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = 5 * time.Second
	}
	if c.QueryTimeout == 0 {
		c.QueryTimeout = 30 * time.Second
	}
	if c.SSLMode == "" {
		c.SSLMode = "prefer"
	}
}

// Validate checks that the configuration can be used to connect.
func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.Database == "" {
		return fmt.Errorf("database is required")
	}
	if c.User == "" {
		return fmt.Errorf("user is required")
	}
	if c.MaxConns < 1 {
		return fmt.Errorf("max_conns must be at least 1")
	}
	if c.MinConns < 0 {
		return fmt.Errorf("min_conns cannot be negative")
	}
	if c.MinConns > c.MaxConns {
		return fmt.Errorf("min_conns (%d) cannot be greater than max_conns (%d)", c.MinConns, c.MaxConns)
	}

	switch c.SSLMode {
	case "disable", "prefer", "require", "verify-ca", "verify-full":
	default:
		return fmt.Errorf("invalid ssl_mode: %s (must be one of: disable, prefer, require, verify-ca, verify-full)", c.SSLMode)
	}
	return nil
}

// ConnectionString builds a postgres:// URL from the config. The URL form is
// accepted by both pgxpool and golang-migrate.
func (c *Config) ConnectionString() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   "/" + c.Database,
	}
	q := url.Values{}
	q.Set("sslmode", c.SSLMode)
	q.Set("connect_timeout", fmt.Sprintf("%d", int(c.ConnectTimeout.Seconds())))
	u.RawQuery = q.Encode()
	return u.String()
}

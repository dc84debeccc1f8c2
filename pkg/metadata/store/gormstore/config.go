package gormstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DatabaseType selects the GORM dialect.
type DatabaseType string

const (
	DatabaseTypeSQLite   DatabaseType = "sqlite"
	DatabaseTypePostgres DatabaseType = "postgres"
)

// SQLiteConfig configures the embedded single-file engine.
type SQLiteConfig struct {
	// Path defaults to $XDG_DATA_HOME/badgehub/metadata.db.
	Path          string `mapstructure:"path" yaml:"path"`
	BusyTimeoutMs int    `mapstructure:"busy_timeout_ms" yaml:"busy_timeout_ms"`
}

// DSN opens the file in WAL mode so readers do not block the writer.
func (c *SQLiteConfig) DSN() string {
	return c.Path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(" + strconv.Itoa(c.BusyTimeoutMs) + ")"
}

// PostgresConfig configures the "gorm-postgres" engine.
type PostgresConfig struct {
	Host         string `mapstructure:"host" yaml:"host"`
	Port         int    `mapstructure:"port" yaml:"port"`
	Database     string `mapstructure:"database" yaml:"database"`
	User         string `mapstructure:"user" yaml:"user"`
	Password     string `mapstructure:"password" yaml:"password"`
	SSLMode      string `mapstructure:"ssl_mode" yaml:"ssl_mode"`
	MaxOpenConns int    `mapstructure:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" yaml:"max_idle_conns"`
}

// DSN renders the libpq key=value form understood by gorm.io/driver/postgres.
func (c *PostgresConfig) DSN() string {
	pairs := []string{
		"host=" + c.Host,
		"port=" + strconv.Itoa(c.Port),
		"user=" + c.User,
		"password=" + c.Password,
		"dbname=" + c.Database,
	}
	if c.SSLMode != "" {
		pairs = append(pairs, "sslmode="+c.SSLMode)
	}
	return strings.Join(pairs, " ")
}

// Config picks one dialect; only the matching section is read.
type Config struct {
	Type     DatabaseType   `mapstructure:"type" yaml:"type"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite" yaml:"sqlite"`
	Postgres PostgresConfig `mapstructure:"postgres" yaml:"postgres"`
}

func DefaultSQLitePath() string {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "badgehub", "metadata.db")
}

func setDefault[T comparable](field *T, value T) {
	var zero T
	if *field == zero {
		*field = value
	}
}

// ApplyDefaults fills unset fields of the selected dialect. An empty
// Type means SQLite.
func (c *Config) ApplyDefaults() {
	setDefault(&c.Type, DatabaseTypeSQLite)
	switch c.Type {
	case DatabaseTypeSQLite:
		setDefault(&c.SQLite.Path, DefaultSQLitePath())
		setDefault(&c.SQLite.BusyTimeoutMs, 5000)
	case DatabaseTypePostgres:
		p := &c.Postgres
		setDefault(&p.Port, 5432)
		setDefault(&p.SSLMode, "disable")
		setDefault(&p.MaxOpenConns, 25)
		setDefault(&p.MaxIdleConns, 5)
	}
}

// Validate reports every missing required field of the selected dialect.
func (c *Config) Validate() error {
	var errs []error
	require := func(value, name string) {
		if value == "" {
			errs = append(errs, fmt.Errorf("%s is required", name))
		}
	}

	switch c.Type {
	case DatabaseTypeSQLite:
		require(c.SQLite.Path, "sqlite path")
	case DatabaseTypePostgres:
		require(c.Postgres.Host, "postgres host")
		require(c.Postgres.Database, "postgres database")
		require(c.Postgres.User, "postgres user")
	default:
		return fmt.Errorf("unsupported database type %q", c.Type)
	}
	return errors.Join(errs...)
}

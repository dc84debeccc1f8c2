package postgres

import (
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/badgehub/badgehub/pkg/metadata"
)

func validConfig() *Config {
	return &Config{Host: "db.internal", Database: "badgehub", User: "hub", Password: "p@ss word"}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.ApplyDefaults()

	assert.Equal(t, 5432, cfg.Port)
	assert.Equal(t, int32(10), cfg.MaxConns)
	assert.Equal(t, int32(2), cfg.MinConns)
	assert.Equal(t, time.Hour, cfg.MaxConnLifetime)
	assert.Equal(t, 5*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, 30*time.Second, cfg.QueryTimeout)
	assert.Equal(t, "prefer", cfg.SSLMode)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing host", func(c *Config) { c.Host = "" }, "host is required"},
		{"missing database", func(c *Config) { c.Database = "" }, "database is required"},
		{"missing user", func(c *Config) { c.User = "" }, "user is required"},
		{"bad port", func(c *Config) { c.Port = 70000 }, "invalid port"},
		{"min over max", func(c *Config) { c.MinConns = 20 }, "min_conns"},
		{"bad ssl mode", func(c *Config) { c.SSLMode = "sometimes" }, "invalid ssl_mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.ApplyDefaults()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConnectionStringEscapesCredentials(t *testing.T) {
	cfg := validConfig()
	cfg.ApplyDefaults()

	u, err := url.Parse(cfg.ConnectionString())
	require.NoError(t, err)

	assert.Equal(t, "postgres", u.Scheme)
	assert.Equal(t, "db.internal:5432", u.Host)
	assert.Equal(t, "/badgehub", u.Path)
	pw, _ := u.User.Password()
	assert.Equal(t, "p@ss word", pw)
	assert.Equal(t, "prefer", u.Query().Get("sslmode"))
	assert.Equal(t, "5", u.Query().Get("connect_timeout"))
}

func TestMapPgError(t *testing.T) {
	tests := []struct {
		code string
		want metadata.ErrorCode
	}{
		{"23505", metadata.ErrAlreadyExists},
		{"23503", metadata.ErrNotFound},
		{"23514", metadata.ErrInvalidArgument},
		{"40P01", metadata.ErrIOError},
		{"XX000", metadata.ErrIOError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := mapPgError(&pgconn.PgError{Code: tt.code, Message: "boom"}, "Op", "snake")

			var storeErr *metadata.StoreError
			require.True(t, errors.As(err, &storeErr))
			assert.Equal(t, tt.want, storeErr.Code)
			assert.Equal(t, "snake", storeErr.Slug)
		})
	}
}

func TestMapPgErrorPassesThrough(t *testing.T) {
	assert.NoError(t, mapPgError(nil, "Op", ""))

	noDraft := metadata.NewNoDraftError("snake")
	assert.Same(t, noDraft, mapPgError(noDraft, "Op", "snake"))

	cause := errors.New("socket closed")
	plain := mapPgError(cause, "GetStats", "snake")
	assert.Equal(t, metadata.ErrIOError, metadata.Code(plain))
	assert.ErrorIs(t, plain, cause)
	assert.Equal(t, "IOError: GetStats (slug: snake): socket closed", plain.Error())
}

func TestPoolConfig(t *testing.T) {
	cfg := validConfig()
	cfg.QueryTimeout = 1500 * time.Millisecond
	cfg.ApplyDefaults()
	require.NoError(t, cfg.Validate())

	pc, err := poolConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, cfg.MaxConns, pc.MaxConns)
	assert.Equal(t, cfg.MinConns, pc.MinConns)
	assert.Equal(t, cfg.HealthCheckPeriod, pc.HealthCheckPeriod)
	assert.Equal(t, "badgehub", pc.ConnConfig.RuntimeParams["application_name"])
	assert.Equal(t, "1500ms", pc.ConnConfig.RuntimeParams["statement_timeout"])
	assert.Equal(t, "p@ss word", pc.ConnConfig.Password)
}

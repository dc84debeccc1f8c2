package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
)

const applicationName = "badgehub"

// poolConfig translates cfg into pgxpool settings. cfg must already be
// defaulted and validated.
func poolConfig(cfg *Config) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	pc.MaxConns, pc.MinConns = cfg.MaxConns, cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.HealthCheckPeriod = cfg.HealthCheckPeriod

	params := pc.ConnConfig.RuntimeParams
	params["application_name"] = applicationName
	if ms := cfg.QueryTimeout.Milliseconds(); ms > 0 {
		params["statement_timeout"] = strconv.FormatInt(ms, 10) + "ms"
	}
	return pc, nil
}

// openPool connects to PostgreSQL and fails unless the server answers a ping.
func openPool(ctx context.Context, cfg *Config, log *slog.Logger) (*pgxpool.Pool, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	pc, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}

	log.Info("Connecting to PostgreSQL",
		"host", cfg.Host, "port", cfg.Port, "database", cfg.Database,
		"max_conns", cfg.MaxConns, "ssl_mode", cfg.SSLMode)

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping PostgreSQL: %w", err)
	}
	return pool, nil
}

// Package postgres implements metadata.MetadataStore directly on pgx.
//
// This is the client/server engine. Schema is managed by golang-migrate with
// embedded SQL files; aggregate event counts are served from a materialized
// view that RefreshReports rebuilds.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/badgehub/badgehub/internal/logger"
	"github.com/badgehub/badgehub/pkg/metadata"
)

// Store implements metadata.MetadataStore using PostgreSQL.
type Store struct {
	pool   *pgxpool.Pool
	config *Config
	log    *slog.Logger
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// New connects to PostgreSQL and, when cfg.AutoMigrate is set, applies
// pending migrations.
func New(ctx context.Context, cfg *Config) (*Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("postgres config is required")
	}

	log := logger.With(logger.KeyComponent, "postgres_metadata_store")

	pool, err := openPool(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := runMigrations(ctx, cfg.ConnectionString(), log); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	} else {
		log.Info("AutoMigrate is disabled, run 'badgehub migrate' to apply migrations")
	}

	log.Info("Metadata store opened",
		logger.KeyEngine, "postgres",
		logger.KeyHost, cfg.Host,
		logger.KeyDatabase, cfg.Database,
	)

	return &Store{pool: pool, config: cfg, log: log}, nil
}

// Pool returns the underlying connection pool.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// now returns the store clock at the precision PostgreSQL keeps.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// Compile-time interface check
var _ metadata.MetadataStore = (*Store)(nil)

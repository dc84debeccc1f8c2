package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver

	"github.com/badgehub/badgehub/internal/logger"
	"github.com/badgehub/badgehub/pkg/metadata/store/postgres/migrations"
)

const migrationsTable = "schema_migrations"

// newMigrate builds a migrate instance over the embedded migrations. The
// caller closes db.
func newMigrate(db *sql.DB) (*migrate.Migrate, error) {
	driver, err := migratepg.WithInstance(db, &migratepg.Config{
		MigrationsTable: migrationsTable,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}

	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to create source driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

// runMigrations applies all pending migrations. golang-migrate takes a
// PostgreSQL advisory lock, so concurrent instances apply them once.
func runMigrations(ctx context.Context, connString string, log *slog.Logger) error {
	log.Info("Running database migrations")

	db, err := sql.Open("pgx", connString)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	m, err := newMigrate(db)
	if err != nil {
		return err
	}

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		log.Info("No migrations to apply (database is up to date)")
	case err != nil:
		return fmt.Errorf("migration failed: %w", err)
	default:
		log.Info("Migrations completed successfully")
	}

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		log.Info("No migrations applied yet")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	log.Info("Current schema version", logger.KeyVersion, version, logger.KeyDirty, dirty)
	if dirty {
		log.Warn("Database schema is in dirty state - manual intervention may be required")
	}
	return nil
}

// RunMigrations applies pending migrations for cfg. Used by `badgehub migrate`.
func RunMigrations(ctx context.Context, cfg *Config) error {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return runMigrations(ctx, cfg.ConnectionString(), logger.With(logger.KeyComponent, "postgres_migrate"))
}

// MigrationVersion reports the applied schema version. A database without
// any migration reports (0, false, nil).
func MigrationVersion(ctx context.Context, cfg *Config) (uint, bool, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return 0, false, fmt.Errorf("invalid configuration: %w", err)
	}

	db, err := sql.Open("pgx", cfg.ConnectionString())
	if err != nil {
		return 0, false, fmt.Errorf("failed to open database connection: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return 0, false, fmt.Errorf("failed to ping database: %w", err)
	}

	m, err := newMigrate(db)
	if err != nil {
		return 0, false, err
	}

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

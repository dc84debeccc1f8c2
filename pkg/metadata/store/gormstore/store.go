// Package gormstore implements metadata.MetadataStore on GORM.
//
// The same code runs on SQLite (the embedded single-file engine) and on
// PostgreSQL. Schema is created with AutoMigrate on open.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/badgehub/badgehub/internal/logger"
	"github.com/badgehub/badgehub/pkg/metadata/models"
)

// GORMStore implements metadata.MetadataStore using GORM.
type GORMStore struct {
	db     *gorm.DB
	config *Config

	// writeMu serializes write transactions on SQLite. A deferred SQLite
	// transaction that reads before writing fails with SQLITE_BUSY instead
	// of waiting when another writer holds the lock, so writers queue here.
	writeMu sync.Mutex
}

// New opens the database described by config and migrates the schema.
// A nil config opens the default SQLite file.
func New(ctx context.Context, config *Config) (*GORMStore, error) {
	if config == nil {
		config = new(Config)
	}
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid database configuration: %w", err)
	}

	dialector, err := openDialector(config)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", config.Type, err)
	}

	if config.Type == DatabaseTypePostgres {
		pool, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("access connection pool: %w", err)
		}
		pool.SetMaxOpenConns(config.Postgres.MaxOpenConns)
		pool.SetMaxIdleConns(config.Postgres.MaxIdleConns)
	}

	if err := migrate(ctx, db); err != nil {
		return nil, err
	}
	logger.Info("Metadata store opened", logger.KeyEngine, "gorm", "type", string(config.Type))
	return &GORMStore{db: db, config: config}, nil
}

func openDialector(config *Config) (gorm.Dialector, error) {
	if config.Type == DatabaseTypePostgres {
		return postgres.Open(config.Postgres.DSN()), nil
	}
	if err := os.MkdirAll(filepath.Dir(config.SQLite.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	return sqlite.Open(config.SQLite.DSN()), nil
}

// migrate creates or updates the schema. It is idempotent.
func migrate(ctx context.Context, db *gorm.DB) error {
	db = db.WithContext(ctx)
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		return fmt.Errorf("auto-migrate schema: %w", err)
	}
	for _, stmt := range models.PostMigrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("apply %q: %w", stmt, err)
		}
	}
	return nil
}

// DB exposes the GORM handle for tests and ad-hoc queries.
func (s *GORMStore) DB() *gorm.DB {
	return s.db
}

func (s *GORMStore) isPostgres() bool {
	return s.db.Dialector.Name() == "postgres"
}

// write runs fn in a transaction, queued behind other writers on SQLite.
func (s *GORMStore) write(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if !s.isPostgres() {
		s.writeMu.Lock()
		defer s.writeMu.Unlock()
	}
	return s.db.WithContext(ctx).Transaction(fn)
}

// forUpdate locks the selected rows until the transaction ends. SQLite has
// no row locks; its writers are already serialized by write.
func (s *GORMStore) forUpdate(tx *gorm.DB) *gorm.DB {
	if s.isPostgres() {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// isUniqueConstraintError matches translated and raw unique-index
// violations from either dialect.
func isUniqueConstraintError(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return true
	}
	msg := err.Error()
	for _, marker := range []string{"UNIQUE constraint failed", "duplicate key value violates unique constraint"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

package config

import (
	"context"
	"fmt"

	"github.com/badgehub/badgehub/internal/logger"
	"github.com/badgehub/badgehub/pkg/metadata"
	"github.com/badgehub/badgehub/pkg/metadata/statscache"
	"github.com/badgehub/badgehub/pkg/metadata/store/gormstore"
	"github.com/badgehub/badgehub/pkg/metadata/store/postgres"
	"github.com/badgehub/badgehub/pkg/metrics"
	"github.com/badgehub/badgehub/pkg/metrics/prometheus"
)

// InitializeMetrics creates the Prometheus registry when metrics are
// enabled. It must run before CreateService so collectors register.
func InitializeMetrics(cfg *Config) bool {
	if !cfg.Metrics.Enabled {
		return false
	}
	metrics.InitRegistry()
	logger.Info("Metrics enabled", logger.KeyAddress, fmt.Sprintf(":%d", cfg.Metrics.Port))
	return true
}

// CreateMetadataStore opens the engine selected by cfg.Engine. Opening a
// GORM engine migrates its schema; the pgx engine migrates only when
// postgres.auto_migrate is set.
func CreateMetadataStore(ctx context.Context, cfg *DatabaseConfig) (metadata.MetadataStore, error) {
	switch cfg.Engine {
	case EngineSQLite, EngineGORMPostgres:
		store, err := gormstore.New(ctx, cfg.gormConfig())
		if err != nil {
			return nil, fmt.Errorf("failed to open %s metadata store: %w", cfg.Engine, err)
		}
		return store, nil
	case EnginePostgres:
		pgCfg := cfg.Postgres
		store, err := postgres.New(ctx, &pgCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres metadata store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown metadata engine: %q", cfg.Engine)
	}
}

// MigrateDatabase brings the schema of the selected engine up to date.
func MigrateDatabase(ctx context.Context, cfg *DatabaseConfig) error {
	if cfg.Engine == EnginePostgres {
		pgCfg := cfg.Postgres
		pgCfg.ApplyDefaults()
		return postgres.RunMigrations(ctx, &pgCfg)
	}

	// GORM engines migrate on open.
	store, err := CreateMetadataStore(ctx, cfg)
	if err != nil {
		return err
	}
	return store.Close()
}

// CreateService assembles the metadata stack described by cfg: the engine,
// the optional Redis stats cache, and the validating Service on top.
func CreateService(ctx context.Context, cfg *Config) (*metadata.Service, error) {
	store, err := CreateMetadataStore(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if cfg.StatsCache.Enabled {
		cached, err := statscache.New(ctx, store, cfg.StatsCache.Config, prometheus.NewStatsCacheMetrics())
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		store = cached
	}

	svc, err := metadata.NewService(store, metadata.ServiceConfig{
		MaxFileSize: cfg.Uploads.MaxFileSize.Int64(),
		Badges:      cfg.Catalog.Badges,
		Categories:  cfg.Catalog.Categories,
	}, prometheus.NewStoreMetrics())
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return svc, nil
}

package gormstore

import (
	"context"
	"fmt"

	"github.com/badgehub/badgehub/pkg/metadata"
)

// ============================================
// HEALTH & LIFECYCLE
// ============================================

func (s *GORMStore) Healthcheck(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying database: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (s *GORMStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying database: %w", err)
	}
	return sqlDB.Close()
}

// Compile-time interface checks
var _ metadata.MetadataStore = (*GORMStore)(nil)

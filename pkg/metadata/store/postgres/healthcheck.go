package postgres

import (
	"context"

	"github.com/badgehub/badgehub/pkg/metadata"
)

// Healthcheck pings the pool.
func (s *Store) Healthcheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.pool.Ping(ctx); err != nil {
		return &metadata.StoreError{
			Code:    metadata.ErrIOError,
			Message: "PostgreSQL health check failed",
			Err:     err,
		}
	}
	return nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	s.log.Info("Closing PostgreSQL metadata store")
	s.pool.Close()
	return nil
}

package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// withTx runs fn in a read-committed transaction. fn's error rolls back.
func (s *Store) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }() // no-op after commit

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

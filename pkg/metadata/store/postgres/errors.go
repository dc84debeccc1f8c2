package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/badgehub/badgehub/pkg/metadata"
	storeerrors "github.com/badgehub/badgehub/pkg/metadata/errors"
)

// mapPgError maps PostgreSQL errors to metadata store errors. StoreErrors
// raised by the store itself pass through unchanged.
func mapPgError(err error, operation, slug string) error {
	if err == nil {
		return nil
	}

	var storeErr *metadata.StoreError
	if errors.As(err, &storeErr) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return mapPgErrorCode(pgErr, operation, slug)
	}

	ioErr := storeerrors.NewIOError(operation, err)
	ioErr.Slug = slug
	return ioErr
}

// mapPgErrorCode maps SQLSTATE codes.
// See https://www.postgresql.org/docs/current/errcodes-appendix.html
func mapPgErrorCode(pgErr *pgconn.PgError, operation, slug string) error {
	code := metadata.ErrIOError
	var msg string

	switch pgErr.Code {
	case "23505": // unique_violation
		code, msg = metadata.ErrAlreadyExists, "already exists"
	case "23503": // foreign_key_violation
		code, msg = metadata.ErrNotFound, "referenced project not found"
	case "23514", "23502", "22P02": // check_violation, not_null_violation, invalid_text_representation
		code, msg = metadata.ErrInvalidArgument, "invalid value"
	case "40001":
		msg = "transaction conflict, retry"
	case "40P01":
		msg = "deadlock detected, retry"
	case "57014":
		msg = "operation canceled"
	case "08000", "08003", "08006":
		msg = "database connection error"
	default:
		msg = fmt.Sprintf("database error [%s] %s", pgErr.Code, pgErr.Message)
	}

	return &metadata.StoreError{
		Code:    code,
		Message: fmt.Sprintf("%s: %s", operation, msg),
		Slug:    slug,
		Err:     pgErr,
	}
}

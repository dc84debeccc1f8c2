package metadata

import (
	"github.com/badgehub/badgehub/pkg/metadata/errors"
)

// StoreError is re-exported from the errors package so callers of the
// contract rarely need a second import.
type StoreError = errors.StoreError

// ErrorCode is re-exported from the errors package.
type ErrorCode = errors.ErrorCode

const (
	ErrNotFound        = errors.ErrNotFound
	ErrAlreadyExists   = errors.ErrAlreadyExists
	ErrInvalidArgument = errors.ErrInvalidArgument
	ErrInvalidState    = errors.ErrInvalidState
	ErrIOError         = errors.ErrIOError
)

// Sentinel errors for use with errors.Is. Matching is by code, so any
// StoreError with the same code satisfies the comparison.
var (
	// ErrNoDraft is returned when an operation needs the project's open
	// draft and there is none (project missing, deleted or never initialized).
	ErrNoDraft = &StoreError{Code: ErrInvalidState, Message: "project has no open draft"}

	// ErrInvalidInput is returned by the Service for rejected arguments.
	ErrInvalidInput = &StoreError{Code: ErrInvalidArgument, Message: "invalid argument"}
)

// NewNoDraftError creates the invalid-state error returned when slug has no open draft.
func NewNoDraftError(slug string) *StoreError {
	return errors.NewInvalidStateError(slug, "project has no open draft")
}

// NewProjectNotFoundError is returned when a row would reference a project
// that was never created.
func NewProjectNotFoundError(slug string) *StoreError {
	return errors.NewNotFoundError(slug, "project")
}

// Code returns the ErrorCode of err, or 0 if it is not a StoreError.
func Code(err error) ErrorCode { return errors.Code(err) }

// IsNotFoundError reports whether err is a not-found StoreError.
func IsNotFoundError(err error) bool { return errors.IsNotFoundError(err) }

// IsInvalidStateError reports whether err is an invalid-state StoreError.
func IsInvalidStateError(err error) bool { return errors.IsInvalidStateError(err) }

// IsInvalidArgumentError reports whether err is an invalid-argument StoreError.
func IsInvalidArgumentError(err error) bool { return errors.IsInvalidArgumentError(err) }

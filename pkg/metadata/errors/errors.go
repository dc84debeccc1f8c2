// Package errors defines the coded error returned by every metadata engine.
// It imports nothing from badgehub so the metadata contract and each
// engine can depend on it.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode classifies a StoreError.
type ErrorCode int

const (
	// ErrNotFound is reserved for mutations that need an existing row.
	// Lookups report absence as nil, not as an error.
	ErrNotFound ErrorCode = iota + 1
	ErrAlreadyExists
	ErrInvalidArgument
	// ErrInvalidState covers transitions such as publishing without a draft.
	ErrInvalidState
	// ErrIOError wraps a failure of the underlying database.
	ErrIOError
)

var codeNames = map[ErrorCode]string{
	ErrNotFound:        "NotFound",
	ErrAlreadyExists:   "AlreadyExists",
	ErrInvalidArgument: "InvalidArgument",
	ErrInvalidState:    "InvalidState",
	ErrIOError:         "IOError",
}

func (e ErrorCode) String() string {
	if name, ok := codeNames[e]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", int(e))
}

// StoreError is formatted as "<Code>: <Message> (slug: <Slug>): <cause>",
// omitting the parts that are empty.
type StoreError struct {
	Code    ErrorCode
	Message string
	Slug    string
	Err     error
}

func (e *StoreError) Error() string {
	var b strings.Builder
	b.WriteString(e.Code.String())
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Slug != "" {
		fmt.Fprintf(&b, " (slug: %s)", e.Slug)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *StoreError) Unwrap() error { return e.Err }

// Is compares codes only, so a package-level StoreError works as a
// sentinel for every error of its code.
func (e *StoreError) Is(target error) bool {
	t, ok := target.(*StoreError)
	return ok && t.Code == e.Code
}

// NewNotFoundError reports that a mutation's target row does not exist.
func NewNotFoundError(slug, what string) *StoreError {
	return &StoreError{Code: ErrNotFound, Message: what + " not found", Slug: slug}
}

// NewInvalidStateError rejects an operation that the project's current
// state does not allow.
func NewInvalidStateError(slug, message string) *StoreError {
	return &StoreError{Code: ErrInvalidState, Message: message, Slug: slug}
}

// NewIOError wraps err as the failure of operation.
func NewIOError(operation string, err error) *StoreError {
	return &StoreError{Code: ErrIOError, Message: operation, Err: err}
}

// Code extracts the ErrorCode from anywhere in err's chain. It returns 0
// when there is no StoreError.
func Code(err error) ErrorCode {
	var se *StoreError
	if !errors.As(err, &se) {
		return 0
	}
	return se.Code
}

func IsNotFoundError(err error) bool { return Code(err) == ErrNotFound }

func IsInvalidStateError(err error) bool { return Code(err) == ErrInvalidState }

func IsInvalidArgumentError(err error) bool { return Code(err) == ErrInvalidArgument }

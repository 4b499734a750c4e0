package library

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError reports missing or malformed input.
type ValidationError struct {
	Details string
}

func (e *ValidationError) Error() string { return "validation failed: " + e.Details }

func Invalid(format string, args ...any) error {
	return &ValidationError{Details: fmt.Sprintf(format, args...)}
}

// NotFoundError reports that no row matched an id.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string     { return e.Entity + " not found" }
func (e *NotFoundError) Is(err error) bool { return err == ErrNotFound }

type ConflictError struct {
	Details string
}

func (e *ConflictError) Error() string     { return e.Details }
func (e *ConflictError) Is(err error) bool { return err == ErrConflict }

// PersistenceError wraps any failure of the underlying data store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *PersistenceError) Unwrap() error { return e.Err }

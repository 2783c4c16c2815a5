package dao

import "errors"

// Common, reusable DAO errors. Using sentinel variables allows callers to
// reliably detect error conditions via errors.Is/As instead of brittle string
// comparisons.

var (
	// ErrNotFound is returned when the requested declaration is not cached.
	ErrNotFound = errors.New("dao: not found")

	// ErrInvalidID indicates that the supplied location is empty.
	ErrInvalidID = errors.New("dao: invalid id")

	// ErrNilEntity is returned when the caller attempts to store a nil
	// declaration.
	ErrNilEntity = errors.New("dao: nil entity")
)

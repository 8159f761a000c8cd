package store

import "errors"

var (
	// ErrNotFound is returned when a record or registry entry is absent.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique constraint rejects a write.
	ErrConflict = errors.New("conflict")
)

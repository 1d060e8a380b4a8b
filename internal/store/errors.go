package store

import (
	"errors"
	"fmt"
)

// ConflictError reports that the backend rejected a perfume create because
// a record with the same title already exists. Callers treat it as "already
// ingested", not as a failure.
type ConflictError struct {
	Title string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("store: perfume %q already exists", e.Title)
}

// IsConflict reports whether the error chain contains a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// StoreError is any other backend failure. Item-scoped: the caller logs
// it and continues with the rest of the batch.
type StoreError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *StoreError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("store: %s: status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

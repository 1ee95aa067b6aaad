package controller

import (
	"errors"
	"fmt"
)

// ErrNotFetched is returned by projection reads before the first
// successful PerformFetch.
var ErrNotFetched = errors.New("controller: PerformFetch has not run")

// FetchError reports a failed commit-time refetch. The transaction that
// triggered it is dropped; the next relevant transaction retries, so a
// transient failure recovers on its own.
type FetchError struct {
	// Query is the SQL whose refetch failed.
	Query string

	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch error: %v", e.Err)
}

// Unwrap returns the underlying cause.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsFetchError reports whether err is (or wraps) a FetchError.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

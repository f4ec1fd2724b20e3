package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound        = errors.New("resource not found")
	ErrRecordNotFound  = fmt.Errorf("%w: record", ErrNotFound)
	ErrUnknownResource = fmt.Errorf("%w: unknown resource", ErrNotFound)

	// Fetch errors
	ErrFetchFailed  = errors.New("catalog fetch failed")
	ErrSourceStatus = errors.New("source returned non-success status")
	ErrBadPayload   = errors.New("source payload could not be decoded")

	// Selection errors
	ErrCompareFull = errors.New("comparison selection is full")

	// Dimension errors
	ErrUnknownDimension = errors.New("unknown categorical dimension")
)

// NewNotFoundError builds a not-found error for a named resource
func NewNotFoundError(resource string, key string) error {
	return fmt.Errorf("%w: %s %q", ErrNotFound, resource, key)
}

// NewFetchError wraps a transport-level failure for a resource
func NewFetchError(resource string, err error) error {
	return fmt.Errorf("%w for %s: %v", ErrFetchFailed, resource, err)
}

// IsNotFoundError reports whether err is any not-found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsFetchError reports whether err originated at a data source boundary
func IsFetchError(err error) bool {
	return errors.Is(err, ErrFetchFailed) ||
		errors.Is(err, ErrSourceStatus) ||
		errors.Is(err, ErrBadPayload)
}

package storage

import (
	"errors"
	"fmt"
)

// Sentinel errors for storage operations. Callers are expected to collapse
// these into a single NotFound response at the HTTP boundary, but every
// layer underneath keeps the specific kind so it can be logged first.
var (
	// ErrNotFound indicates the blob, video or metadata does not exist.
	ErrNotFound = errors.New("storage: not found")

	// ErrAuthentication indicates the credentials or signature were rejected.
	ErrAuthentication = errors.New("storage: authentication failed")
)

// HTTPError is a transport-level failure talking to a storage backend.
type HTTPError struct {
	Desc string
	Err  error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("storage: http error: %s: %v", e.Desc, e.Err)
	}
	return fmt.Sprintf("storage: http error: %s", e.Desc)
}

func (e *HTTPError) Unwrap() error { return e.Err }

// NewHTTPError wraps a transport failure with a description.
func NewHTTPError(desc string, err error) *HTTPError {
	return &HTTPError{Desc: desc, Err: err}
}

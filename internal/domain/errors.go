package domain

import (
	"errors"
	"fmt"
)

// ErrQuotaExceeded marks rate-limit/quota exhaustion reported by a generative
// call. Callers check it with errors.Is and degrade instead of failing.
var ErrQuotaExceeded = errors.New("model quota exceeded")

// ValidationError rejects a request before any remote call is made
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ExtractionError means text extraction failed or produced no usable text
type ExtractionError struct {
	Filename string
	Err      error
}

func (e *ExtractionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("extraction failed for %q", e.Filename)
	}
	return fmt.Sprintf("extraction failed for %q: %v", e.Filename, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// StoreError is a vector backend failure. It never reaches the request
// boundary: orchestrators consume it and switch to the fallback tier.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("vector store %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// UpstreamError is any other remote failure, surfaced as a server error
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s failed: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Package ctxerr defines the error taxonomy shared by every ctx
// component: stores, source handlers, and the render engine all return
// errors from this closed set so callers can branch on errors.Is/As
// instead of parsing messages.
package ctxerr

import "fmt"

// Sentinel errors for taxonomy members with no payload. Wrap with
// fmt.Errorf("...: %w", ErrNotFound) to attach context.
var (
	ErrNotFound  = fmt.Errorf("not found")
	ErrConflict  = fmt.Errorf("conflict")
	ErrCancelled = fmt.Errorf("cancelled")
)

// DenylistMatchError reports that a candidate artifact matched a
// denylist pattern and was rejected before any row was created for it.
type DenylistMatchError struct {
	Pattern string
	URI     string
}

func (e *DenylistMatchError) Error() string {
	return fmt.Sprintf("uri %q matches denylist pattern %q", e.URI, e.Pattern)
}

// UnknownSchemeError reports that no registered source handler claims
// the URI's scheme.
type UnknownSchemeError struct {
	Scheme string
	URI    string
}

func (e *UnknownSchemeError) Error() string {
	return fmt.Sprintf("unknown scheme %q in uri %q", e.Scheme, e.URI)
}

// SourceFailureError wraps a failure that occurred while parsing,
// loading, or expanding a source artifact (filesystem I/O, a failed git
// subprocess, malformed markdown, and so on).
type SourceFailureError struct {
	URI    string
	Detail string
	Err    error
}

func (e *SourceFailureError) Error() string {
	if e.URI != "" {
		return fmt.Sprintf("source failure for %q: %s", e.URI, e.Detail)
	}
	return fmt.Sprintf("source failure: %s", e.Detail)
}

func (e *SourceFailureError) Unwrap() error { return e.Err }

// StorageFailureError wraps a failure in the blob store or metadata
// store (disk I/O, a broken transaction, a driver error).
type StorageFailureError struct {
	Detail string
	Err    error
}

func (e *StorageFailureError) Error() string {
	return fmt.Sprintf("storage failure: %s", e.Detail)
}

func (e *StorageFailureError) Unwrap() error { return e.Err }

// NotFound wraps ErrNotFound with a descriptive message.
func NotFound(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// Conflict wraps ErrConflict with a descriptive message.
func Conflict(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrConflict)...)
}

package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrValidation marks client-side input problems caught before any request.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned when a referenced user, store or rating does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write collides with an existing record.
	ErrConflict = errors.New("conflict")
	// ErrTransport wraps collaborator failures: unreachable, timed out or 5xx.
	ErrTransport = errors.New("transport failure")
	// ErrUnauthorized is returned for missing, invalid or revoked credentials.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned when the caller's role may not perform an operation.
	ErrForbidden = errors.New("forbidden")
	// ErrCancelled signals an abandoned form. Callers treat it as a silent no-op.
	ErrCancelled = errors.New("cancelled")
	// ErrInvalidTransition is returned by the session state machine.
	ErrInvalidTransition = errors.New("invalid session transition")
)

// ValidationError collects every field problem of one structured input.
type ValidationError struct {
	Fields map[string]string
}

// Add records a message for field, keeping the first one reported.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = message
	}
}

// OrNil returns nil when no field failed, so callers can `return verr.OrNil()`.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is lets errors.Is(err, ErrValidation) match any *ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// FieldError is a convenience for a single-field validation failure.
func FieldError(field, message string) error {
	verr := &ValidationError{}
	verr.Add(field, message)
	return verr
}

package domain

import (
	"errors"
	"fmt"
)

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.

var (
	// Repository errors
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrConflict      = errors.New("conflict")
	ErrTransport     = errors.New("transport error")

	// Parser/validator errors
	ErrInvalidInput = errors.New("invalid input")

	// Feasibility errors
	ErrTimeout             = errors.New("operation timed out")
	ErrFeasibilityUnknown  = errors.New("feasibility could not be determined within limits")

	// Catch-all
	ErrInternal = errors.New("internal error")
)

// Kind is the abstract, transport-independent error taxonomy.
type Kind string

const (
	KindInvalidInput        Kind = "InvalidInput"
	KindNotFound            Kind = "NotFound"
	KindConflict            Kind = "Conflict"
	KindTransport           Kind = "Transport"
	KindTimeout             Kind = "Timeout"
	KindFeasibilityUnknown  Kind = "FeasibilityUnknown"
	KindInternal            Kind = "Internal"
)

// Error is the typed error every external-facing operation returns.
// It carries a stable kind, a human message, and optional structured
// context for diagnostics (e.g. a parser field path).
type Error struct {
	Kind    Kind
	Message string
	Context map[string]string
	cause   error
}

// NewError builds a new Error, optionally wrapping a lower-layer cause.
func NewError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// WithContext attaches a structured diagnostic value and returns e for chaining.
func (e *Error) WithContext(key, value string) *Error {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

func (e *Error) Error() string {
	if e.Context != nil {
		if path, ok := e.Context["path"]; ok {
			return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, path)
		}
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// AsKind extracts the Kind from err, defaulting to KindInternal.
func AsKind(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrTransport):
		return KindTransport
	case errors.Is(err, ErrTimeout):
		return KindTimeout
	case errors.Is(err, ErrFeasibilityUnknown):
		return KindFeasibilityUnknown
	default:
		return KindInternal
	}
}

// InvalidInput builds an *Error of kind InvalidInput carrying a field path
// for diagnostics.
func InvalidInput(path, message string) *Error {
	return NewError(KindInvalidInput, message, ErrInvalidInput).WithContext("path", path)
}

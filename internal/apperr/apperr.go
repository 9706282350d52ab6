// Package apperr defines the closed error-kind taxonomy shared by every core
// subsystem (validator, autofix, diff engine, HTTP client, lifecycle).
package apperr

import (
	"errors"
	"fmt"
)

// Kind is the closed set of error variants the UI layer renders and maps to
// an exit code. Never add a variant without updating ExitCode.
type Kind string

const (
	NotFound         Kind = "not-found"
	AuthFailed       Kind = "auth-failed"
	RateLimited      Kind = "rate-limited"
	ServerError      Kind = "server-error"
	TransportError   Kind = "transport-error"
	Timeout          Kind = "timeout"
	Cancelled        Kind = "cancelled"
	ValidationFailed Kind = "validation-failed"
	ParseFailed      Kind = "parse-failed"
	Conflict         Kind = "conflict"
	ConfigInvalid    Kind = "config-invalid"
	PermissionDenied Kind = "permission-denied"
	Internal         Kind = "internal"
)

// Error is the structured error value propagated across package boundaries.
// It is never panicked for user input; only Internal kinds indicate a bug.
type Error struct {
	Kind    Kind
	Message string
	Hint    string
	// RetryAfterSeconds is populated for RateLimited errors.
	RetryAfterSeconds int
	// Detail carries verbose-only structured context (diagnostics, location).
	Detail any
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an Error of the given kind wrapping an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// WithHint attaches a human hint and returns the receiver for chaining.
func (e *Error) WithHint(hint string) *Error {
	e.Hint = hint
	return e
}

// WithDetail attaches verbose-only structured context.
func (e *Error) WithDetail(detail any) *Error {
	e.Detail = detail
	return e
}

// KindOf extracts the Kind from err, defaulting to Internal when err is not
// (or does not wrap) an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// ExitCode maps a Kind to its POSIX sysexits-aligned process exit code
// (spec §6 "Exit codes").
func ExitCode(k Kind) int {
	switch k {
	case "":
		return 0
	case ValidationFailed, ParseFailed:
		return 65
	case NotFound:
		return 66
	case ServerError, TransportError:
		return 69
	case Internal:
		return 70
	case AuthFailed, PermissionDenied:
		return 73
	case Timeout:
		return 74
	case RateLimited:
		return 75
	case Conflict:
		return 76
	case ConfigInvalid:
		return 78
	case Cancelled:
		return 130
	default:
		return 1
	}
}

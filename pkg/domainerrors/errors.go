// Package domainerrors carries typed errors from services to the transport
// layer. Handlers map codes to HTTP statuses without inspecting message text,
// and stores never import this package; they return sentinel errors that
// services translate.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain failure. The set is deliberately small: every
// failure a caller can act on fits one of these buckets.
type Code string

const (
	// CodeValidation covers missing or malformed input.
	CodeValidation Code = "validation_error"
	// CodeConflict covers uniqueness violations (duplicate email or phone).
	CodeConflict Code = "conflict"
	// CodeUnauthorized covers missing, invalid, or expired credentials.
	CodeUnauthorized Code = "unauthorized"
	// CodeForbidden covers valid credentials with insufficient privilege,
	// including account-status gates (pending / rejected accounts).
	CodeForbidden Code = "forbidden"
	// CodeNotFound covers absent referenced entities.
	CodeNotFound Code = "not_found"
	// CodeInternal covers unexpected faults. The message sent to the client
	// stays generic; the wrapped cause reaches server-side logs only.
	CodeInternal Code = "internal_error"
)

// Error is the concrete error type services return.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New constructs a domain error with a caller-facing message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf constructs a domain error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause that stays server-side. The message is what the
// client sees.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// Internal wraps an unexpected fault with a generic message so internal
// diagnostics never leak to clients.
func Internal(err error) *Error {
	return Wrap(err, CodeInternal, "Internal server error")
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for
// unclassified errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf extracts the caller-facing message, hiding the cause of
// unclassified errors behind a generic message.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "Internal server error"
}

// ToHTTPStatus maps a code to its HTTP status. Conflicts return 400, matching
// the API contract for duplicate registrations.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeValidation, CodeConflict:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

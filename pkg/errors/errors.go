package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed client error. Status carries the HTTP status of a
// server response when one was received, and is zero otherwise.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Body    string `json:"-"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for the failure modes the client distinguishes.
var (
	ErrConfiguration    = New("CONFIGURATION_ERROR", 0, "invalid configuration")
	ErrNetwork          = New("NETWORK_ERROR", 0, "no response from server")
	ErrTimeout          = New("TIMEOUT_ERROR", 0, "request timed out")
	ErrUnauthorized     = New("UNAUTHORIZED", http.StatusUnauthorized, "authentication rejected")
	ErrPermissionDenied = New("PERMISSION_DENIED", 0, "camera access is required to capture attendance images")
	ErrContextMissing   = New("CONTEXT_MISSING", 0, "course and session info are required")
	ErrUpload           = New("UPLOAD_FAILED", 0, "could not upload the snapshot")
	ErrValidation       = New("VALIDATION_ERROR", 0, "validation failed")
	ErrInternal         = New("INTERNAL_ERROR", 0, "internal client error")
)

// HTTP builds an error for a response received with a non-2xx status.
func HTTP(status int, body string) *Error {
	if status == http.StatusUnauthorized {
		e := Clone(ErrUnauthorized, "")
		e.Body = body
		return e
	}
	return &Error{
		Code:    "HTTP_ERROR",
		Status:  status,
		Message: fmt.Sprintf("server responded with status %d", status),
		Body:    body,
	}
}

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// Is reports whether err carries the given code.
func Is(err error, code string) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == code
}

// IsTimeout reports whether err is a request timeout.
func IsTimeout(err error) bool { return Is(err, ErrTimeout.Code) }

// IsUnauthorized reports whether err is an authentication rejection.
func IsUnauthorized(err error) bool { return Is(err, ErrUnauthorized.Code) }

// StatusOf returns the HTTP status embedded in err, or zero.
func StatusOf(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return 0
	}
	return e.Status
}

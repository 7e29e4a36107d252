package status

import (
	"errors"
	"fmt"
)

// Error pairs a Code with a message and an optional wrapped cause. It is
// the error type returned across package boundaries whenever the failure
// needs to carry retry/logging classification.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Retryable implements the interface httpclient-style retry loops probe for.
func (e *Error) Retryable() bool { return e.Code.Retryable() }

// New creates an Error with no wrapped cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches code and message to an existing error, preserving it as
// the unwrap chain's cause. Wrap(nil, ...) returns nil so call sites can
// write `return status.Wrap(err, ...)` unconditionally after an `if err
// != nil` has already been checked, or safely no-op otherwise.
func Wrap(cause error, code Code, message string) *Error {
	if cause == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Cause: cause}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(cause error, code Code, format string, args ...any) *Error {
	if cause == nil {
		return nil
	}
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// CodeOf extracts the Code from err by walking its Unwrap chain. Returns
// Success if err is nil, and Unknown if err does not carry a *Error
// anywhere in the chain.
func CodeOf(err error) Code {
	if err == nil {
		return Success
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return Unknown
}

// IsRetryable reports whether err (or any error in its chain) carries a
// retryable status code.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Retryable()
	}
	return false
}

// Package errors provides structured error types for netview.
//
// The view engine never fails an interaction: a missing node, an empty path
// or an unknown host command degrades to a visual no-op. These codes exist so
// the no-op can still be reported (logged, returned in a dispatch result,
// sent back over the host protocol) in a machine-readable way.
//
// # Error Codes
//
// Error codes follow the taxonomy of the view engine:
//   - UNKNOWN_COMMAND: a host command name outside the command table
//   - MISSING_NODE / MISSING_EDGE: a lookup returned nothing
//   - EMPTY_PATH: pathfinding found no route
//   - INVALID_*: malformed arguments, input files or configuration
//
// # Usage
//
//	err := errors.New(errors.ErrCodeMissingNode, "node %q not found", id)
//	if errors.Is(err, errors.ErrCodeMissingNode) {
//	    // no-op
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidConfig, origErr, "parse %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// View engine no-ops
	ErrCodeUnknownCommand Code = "UNKNOWN_COMMAND"
	ErrCodeMissingNode    Code = "MISSING_NODE"
	ErrCodeMissingEdge    Code = "MISSING_EDGE"
	ErrCodeEmptyPath      Code = "EMPTY_PATH"

	// Input validation errors
	ErrCodeInvalidArgument Code = "INVALID_ARGUMENT"
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"
	ErrCodeInvalidNetwork  Code = "INVALID_NETWORK"

	// Resource errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeSessionNotFound Code = "SESSION_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsNoop reports whether err is one of the view-engine outcomes that leave
// the view unchanged (unknown command, missing node/edge, empty path).
// Hosts use it to decide between a warning and a hard failure.
func IsNoop(err error) bool {
	switch GetCode(err) {
	case ErrCodeUnknownCommand, ErrCodeMissingNode, ErrCodeMissingEdge, ErrCodeEmptyPath:
		return true
	}
	return false
}

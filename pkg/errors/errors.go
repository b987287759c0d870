// Package errors provides structured error types for masktower.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the engine, pipeline and CLI
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The layout engine distinguishes five failure classes:
//   - CONFIGURATION / MISSING_BOUNDS: invalid rule or option combinations
//   - NAMING: a cell name failed validation
//   - DUPLICATE_NAME: two different cells share a name in one library
//   - GEOMETRY_DEGENERATE: a shape vanished during an offset
//   - UNSUPPORTED: a combination that is deliberately not implemented
//
// Configuration and naming errors are fatal. Duplicate names and degenerate
// geometry are normally logged and skipped; the codes exist so that strict
// callers can surface them as errors instead.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeNaming, "illegal characters in %q", name)
//	if errors.Is(err, errors.ErrCodeNaming) {
//	    // Handle naming error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidFormat, origErr, "parse %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Layout engine errors
	ErrCodeConfiguration Code = "CONFIGURATION"
	ErrCodeMissingBounds Code = "MISSING_BOUNDS"
	ErrCodeNaming        Code = "NAMING"
	ErrCodeDuplicateName Code = "DUPLICATE_NAME"
	ErrCodeUnsupported   Code = "UNSUPPORTED"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"
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

// IsConfiguration reports whether err is a configuration error. A missing
// bounding shape for an inverted layer counts as one.
func IsConfiguration(err error) bool {
	return Is(err, ErrCodeConfiguration) || Is(err, ErrCodeMissingBounds)
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

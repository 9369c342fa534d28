// Package errors provides structured error types for depcheck.
//
// Every failure the audit engine can produce carries a machine-readable
// [Code]. The codes also encode the propagation policy of the engine:
//
//   - MANIFEST_NOT_FOUND / INVALID_MANIFEST: fatal, the run stops
//   - REGISTRY_ERROR: per package, reported as an "error" status
//   - SCAN_READ_ERROR: per file, the file is skipped
//   - UPDATE_COMMAND_ERROR: per package, logged and the next update runs
//
// Input and configuration errors (the INVALID_* codes other than
// INVALID_MANIFEST) reject a run before it starts. The CLI exits with a
// different status for them than for [IsFatal] errors.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidPackage, "invalid package name: %s", name)
//	if errors.Is(err, errors.ErrCodeInvalidPackage) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeRegistry, origErr, "fetch %s", name)
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
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidPackage  Code = "INVALID_PACKAGE"
	ErrCodeInvalidManifest Code = "INVALID_MANIFEST"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"
	ErrCodeInvalidPath     Code = "INVALID_PATH"

	// Manifest errors
	ErrCodeManifestNotFound Code = "MANIFEST_NOT_FOUND"

	// Per-item errors absorbed into the audit report
	ErrCodeRegistry      Code = "REGISTRY_ERROR"
	ErrCodeScanRead      Code = "SCAN_READ_ERROR"
	ErrCodeUpdateCommand Code = "UPDATE_COMMAND_ERROR"
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
// For *Error types, returns the message chain without code prefixes.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %s", e.Message, UserMessage(e.Cause))
		}
		return e.Message
	}
	return err.Error()
}

// IsFatal reports whether err belongs to the class that ends an audit run.
// Only a missing or unreadable manifest qualifies: without declared
// dependencies there is nothing to audit.
func IsFatal(err error) bool {
	switch GetCode(err) {
	case ErrCodeManifestNotFound, ErrCodeInvalidManifest:
		return true
	}
	return false
}

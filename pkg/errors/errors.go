// Package errors provides structured error types for pngexport.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the HTTP host and the library
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The export pipeline surfaces one code per failure stage:
//
//   - SOURCE_NOT_FOUND: the selector matched no element
//   - INVALID_DIMENSIONS: intrinsic or requested sizes are unusable
//   - DECODE_FAILURE: the sanitized markup could not be decoded
//   - ENCODE_FAILURE: the raster surface could not be encoded to PNG
//   - DELIVERY_FAILURE: the payload could not be handed to the user
//
// The remaining INVALID_* codes cover request validation, and INTERNAL_ERROR
// covers everything unexpected.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeSourceNotFound, "no element matches %q", sel)
//	if errors.Is(err, errors.ErrCodeSourceNotFound) {
//	    // Handle missing graphic
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeDecodeFailure, origErr, "decode %s", id)
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Export pipeline failures
	ErrCodeSourceNotFound    Code = "SOURCE_NOT_FOUND"
	ErrCodeInvalidDimensions Code = "INVALID_DIMENSIONS"
	ErrCodeDecodeFailure     Code = "DECODE_FAILURE"
	ErrCodeEncodeFailure     Code = "ENCODE_FAILURE"
	ErrCodeDeliveryFailure   Code = "DELIVERY_FAILURE"

	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidSelector Code = "INVALID_SELECTOR"
	ErrCodeInvalidSource   Code = "INVALID_SOURCE"
	ErrCodeInvalidFilename Code = "INVALID_FILENAME"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

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

// HTTPStatus maps the code carried by err to an HTTP status.
// Errors without a code map to 500.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeSourceNotFound, ErrCodeNotFound, ErrCodeFileNotFound:
		return http.StatusNotFound
	case ErrCodeInvalidDimensions, ErrCodeInvalidInput, ErrCodeInvalidSelector,
		ErrCodeInvalidSource, ErrCodeInvalidFilename:
		return http.StatusBadRequest
	case ErrCodeDecodeFailure, ErrCodeEncodeFailure:
		return http.StatusUnprocessableEntity
	case ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// Package errors provides structured errors with stable codes for cutler.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Configuration errors
	ErrConfigLoad   ErrorCode = "CONFIG_LOAD"
	ErrConfigParse  ErrorCode = "CONFIG_PARSE"
	ErrConfigLocked ErrorCode = "CONFIG_LOCKED"

	// Domain and preference errors
	ErrDomainUnknown ErrorCode = "DOMAIN_UNKNOWN"
	ErrValueShape    ErrorCode = "VALUE_SHAPE"
	ErrPrefIO        ErrorCode = "PREF_IO"

	// Snapshot errors
	ErrSnapshotNotFound ErrorCode = "SNAPSHOT_NOT_FOUND"
	ErrSnapshotCorrupt  ErrorCode = "SNAPSHOT_CORRUPT"
	ErrSnapshotIO       ErrorCode = "SNAPSHOT_IO"

	// External collaborator errors
	ErrExecFailed  ErrorCode = "EXEC_FAILED"
	ErrFetchFailed ErrorCode = "FETCH_FAILED"
	ErrBrewFailed  ErrorCode = "BREW_FAILED"
)

// CutlerError represents a structured error with code and details
type CutlerError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *CutlerError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *CutlerError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *CutlerError) Is(target error) bool {
	var targetErr *CutlerError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// WithDetail adds a detail field to the error and returns it for chaining
func (e *CutlerError) WithDetail(key string, value interface{}) *CutlerError {
	e.Details[key] = value
	return e
}

// New creates a new CutlerError with the given code and message
func New(code ErrorCode, message string) *CutlerError {
	return &CutlerError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new CutlerError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *CutlerError {
	return &CutlerError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a CutlerError
func Wrap(err error, code ErrorCode, message string) *CutlerError {
	if err == nil {
		return nil
	}
	return &CutlerError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *CutlerError {
	if err == nil {
		return nil
	}
	return &CutlerError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// IsCode reports whether err carries the given code anywhere in its chain
func IsCode(err error, code ErrorCode) bool {
	var ce *CutlerError
	for errors.As(err, &ce) {
		if ce.Code == code {
			return true
		}
		err = ce.Wrapped
		if err == nil {
			return false
		}
	}
	return false
}

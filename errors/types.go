package errors

import (
	"fmt"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	// Theme source errors
	ErrCodeSourceUnavailable ErrorCode = "SOURCE_UNAVAILABLE"
	ErrCodeSourceMalformed   ErrorCode = "SOURCE_MALFORMED"

	// Persistence errors
	ErrCodeStateCorrupt       ErrorCode = "STATE_CORRUPT"
	ErrCodePersistenceFailure ErrorCode = "PERSISTENCE_FAILURE"

	// Watch errors
	ErrCodeWatchFailure ErrorCode = "WATCH_FAILURE"

	// General errors
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// CoreError represents a structured error with context
type CoreError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *CoreError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *CoreError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *CoreError) WithDetail(key string, value interface{}) *CoreError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new CoreError
func New(code ErrorCode, message string) *CoreError {
	return &CoreError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a CoreError
func Wrap(err error, code ErrorCode, message string) *CoreError {
	return &CoreError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Is checks if an error is a specific CoreError code
func Is(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}

	coreErr, ok := err.(*CoreError)
	if !ok {
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return Is(unwrapper.Unwrap(), code)
		}
		return false
	}

	return coreErr.Code == code
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if err == nil {
		return ""
	}

	coreErr, ok := err.(*CoreError)
	if !ok {
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return GetCode(unwrapper.Unwrap())
		}
		return ""
	}

	return coreErr.Code
}

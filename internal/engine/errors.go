// internal/engine/errors.go
package engine

import (
	"errors"
	"fmt"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	ErrCodeFetch        ErrorCode = "FETCH_ERROR"
	ErrCodeParse        ErrorCode = "PARSE_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Sentinels for errors.Is. Any EngineError with the same Code matches.
var (
	ErrFetch        = &EngineError{Code: ErrCodeFetch, Message: "fetch failed"}
	ErrParse        = &EngineError{Code: ErrCodeParse, Message: "failed to parse response"}
	ErrInvalidInput = &EngineError{Code: ErrCodeInvalidInput, Message: "invalid URL"}
)

// EngineError wraps errors with additional context
type EngineError struct {
	Code       ErrorCode
	Message    string
	URL        string
	StatusCode int
	Underlying error
	Retry      bool
}

// Error implements the error interface
func (e *EngineError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.URL != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.URL)
	}
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %v", msg, e.Underlying)
	}
	return msg
}

// Unwrap returns the underlying error
func (e *EngineError) Unwrap() error {
	return e.Underlying
}

// Is checks if the error matches the target
func (e *EngineError) Is(target error) bool {
	if t, ok := target.(*EngineError); ok {
		return e.Code == t.Code
	}
	return errors.Is(e.Underlying, target)
}

// GetStatusCode returns the HTTP status that caused the error, or 0
func (e *EngineError) GetStatusCode() int {
	return e.StatusCode
}

// NewEngineError creates a new EngineError
func NewEngineError(code ErrorCode, message string, err error) *EngineError {
	return &EngineError{
		Code:       code,
		Message:    message,
		Underlying: err,
	}
}

// WithRetry marks the error as retryable
func (e *EngineError) WithRetry() *EngineError {
	e.Retry = true
	return e
}

// WithURL records the URL the error refers to
func (e *EngineError) WithURL(url string) *EngineError {
	e.URL = url
	return e
}

// NewFetchError reports a transport failure or a non-success status for url
func NewFetchError(url string, status int, err error) *EngineError {
	msg := "failed to fetch URL"
	if status != 0 {
		msg = fmt.Sprintf("unexpected HTTP status %d", status)
	}
	e := NewEngineError(ErrCodeFetch, msg, err).WithURL(url).WithRetry()
	e.StatusCode = status
	return e
}

// NewParseError reports a body that could not be parsed as HTML
func NewParseError(url string, err error) *EngineError {
	return NewEngineError(ErrCodeParse, "failed to parse HTML", err).WithURL(url).WithRetry()
}

// NewInvalidInputError reports a malformed URL. It is never retried.
func NewInvalidInputError(url string, err error) *EngineError {
	return NewEngineError(ErrCodeInvalidInput, "invalid URL", err).WithURL(url)
}

// IsRetryable reports whether err is marked as worth another attempt.
// Errors that are not EngineErrors are treated as retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Retry
	}
	return true
}

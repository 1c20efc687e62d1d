// Package errors provides structured error handling with typed error codes.
//
// Error codes are organized into categories:
//   - General errors (1-99): Unknown and general errors
//   - Parse errors (100-199): Malformed expressions, unknown operators, bad parameters
//   - Indicator/data errors (200-299): Unavailable indicator values, short history
//   - Evaluation errors (300-399): Filter and allocation failures scoped to one date
//   - Market data errors (400-499): Provider downloads and local store access
//   - Configuration errors (500-599): Invalid client or CLI configuration
//
// Usage:
//
//	// Create a new error
//	err := errors.New(errors.ErrCodeUnknownOperator, "unknown operator")
//
//	// Create a formatted error
//	err := errors.Newf(errors.ErrCodeIndicatorUnavailable, "no rsi value for %s", ticker)
//
//	// Wrap an existing error
//	err := errors.Wrap(errors.ErrCodeMarketDataReadFailed, "failed to read series", originalErr)
//
//	// Check error code
//	if errors.HasCode(err, errors.ErrCodeIndicatorUnavailable) { ... }
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error represents a structured error with an error code and message.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   nil,
	}
}

// Wrap wraps an existing error with a new Error containing the given code and message.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an existing error with a new Error containing the given code and formatted message.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether any error in err's chain matches target.
// This is a convenience wrapper around the standard errors.Is function.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience wrapper around the standard errors.As function.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode extracts the ErrorCode from an error if it's an *Error type.
// Returns ErrCodeUnknown if the error is not an *Error type.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return ErrCodeUnknown
}

// HasCode checks if an error has a specific ErrorCode.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// ParseError represents a parse-time failure, carrying the path of the
// offending subtree within the expression so callers can point at the exact
// location in the source strategy.
type ParseError struct {
	Code    ErrorCode
	Path    []string // operator path from the root, e.g. ["defsymphony", "if", "filter"]
	Message string
}

// NewParseError creates a new ParseError at the given subtree path.
func NewParseError(code ErrorCode, path []string, message string) *ParseError {
	return &ParseError{
		Code:    code,
		Path:    path,
		Message: message,
	}
}

// NewParseErrorf creates a new ParseError with a formatted message.
func NewParseErrorf(code ErrorCode, path []string, format string, args ...any) *ParseError {
	return &ParseError{
		Code:    code,
		Path:    path,
		Message: fmt.Sprintf(format, args...),
	}
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if len(e.Path) == 0 {
		return fmt.Sprintf("[%d] %s", e.Code, e.Message)
	}

	return fmt.Sprintf("[%d] at %s: %s", e.Code, strings.Join(e.Path, "/"), e.Message)
}

// IsParseError checks if an error is a ParseError.
// It uses errors.As to check the error chain.
func IsParseError(err error) bool {
	var parseErr *ParseError

	return errors.As(err, &parseErr)
}

// InsufficientDataError represents an error when a price series is too short
// for an indicator calculation (e.g., fewer observations than the window).
type InsufficientDataError struct {
	Required int    // Minimum observations required
	Actual   int    // Actual observations available
	Ticker   string // Optional: ticker context
	Message  string // Human-readable message
}

// NewInsufficientDataError creates a new InsufficientDataError.
func NewInsufficientDataError(required, actual int, ticker, message string) *InsufficientDataError {
	return &InsufficientDataError{
		Required: required,
		Actual:   actual,
		Ticker:   ticker,
		Message:  message,
	}
}

// Error implements the error interface.
func (e *InsufficientDataError) Error() string {
	return e.Message
}

// IsInsufficientDataError checks if an error is an InsufficientDataError.
// It uses errors.As to check the error chain.
func IsInsufficientDataError(err error) bool {
	var insufficientErr *InsufficientDataError

	return errors.As(err, &insufficientErr)
}

// Package errors provides structured error handling with typed error codes.
//
// Error codes are organized into categories:
//   - General errors (1-99): Unknown errors
//   - Configuration errors (100-199): Missing sections, keys or credentials
//   - Portfolio errors (200-299): Valuation and allocation failures
//   - Indicator errors (300-399): Indicator pipeline failures
//   - Trading errors (500-599): Rejected buy/sell requests
//   - Environment errors (600-699): Environment construction failures
//   - Market data errors (700-799): Unknown symbols, missing bars, fetch failures
//   - Step fallbacks (800-899): Observation and reward failures
//   - Journal errors (900-999): Episode journal persistence failures
//
// Usage:
//
//	// Create a new error
//	err := errors.New(errors.ErrCodeTradingHalted, "trading is halted")
//
//	// Create a formatted error
//	err := errors.Newf(errors.ErrCodeUnsupportedSymbol, "symbol %s is not supported", symbol)
//
//	// Wrap an existing error
//	err := errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "failed to fetch klines", originalErr)
//
//	// Check error code
//	if errors.HasCode(err, errors.ErrCodeRiskExceeded) { ... }
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

	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return ErrCodeMissingConfiguration
	}

	return ErrCodeUnknown
}

// HasCode checks if an error has a specific ErrorCode.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// GetCategory returns the category of the error's code.
func GetCategory(err error) Category {
	return GetCode(err).Category()
}

// IsTradingError reports whether err is a rejected trade (balance, holdings, limits, halt).
func IsTradingError(err error) bool {
	return GetCategory(err) == CategoryTrading
}

// IsMarketDataError reports whether err is an unsupported symbol, missing bar or fetch failure.
func IsMarketDataError(err error) bool {
	return GetCategory(err) == CategoryMarketData
}

// ConfigError lists every missing or invalid configuration field at once.
// It is fatal: the process must not start when Load returns one.
type ConfigError struct {
	Source string   // Config file the fields were read from
	Fields []string // Dotted paths, e.g. "training.gamma" or "env.BINANCE_API_KEY"
}

// NewConfigError creates a new ConfigError.
func NewConfigError(source string, fields []string) *ConfigError {
	return &ConfigError{
		Source: source,
		Fields: fields,
	}
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("invalid configuration: %s", strings.Join(e.Fields, ", "))
	}

	return fmt.Sprintf("invalid configuration in %s: %s", e.Source, strings.Join(e.Fields, ", "))
}

// IsConfigError checks if an error is a ConfigError.
// It uses errors.As to check the error chain.
func IsConfigError(err error) bool {
	var cfgErr *ConfigError

	return errors.As(err, &cfgErr)
}

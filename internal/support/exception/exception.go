// Package exception provides the custom error type used throughout the
// riptide pipeline. It standardizes errors that occur during extraction,
// transformation, aggregation, and storage access, carrying the module where
// the error occurred and whether the condition is skippable (e.g. a missing
// source file) or fatal to the enclosing stage.
package exception

import (
	"fmt"
	"runtime"
)

// ETLError is the error type raised by pipeline components.
// It holds the module where the error occurred, a message, the wrapped
// original error, and a flag indicating whether the condition may be skipped
// rather than failing the stage.
type ETLError struct {
	// Module indicates the component where the error occurred
	// (e.g., "lineage", "zone", "extract", "aggregate").
	Module string
	// Message is a concise description of the error.
	Message string
	// OriginalErr is the wrapped original error.
	OriginalErr error
	// StackTrace is the stack trace at the time of the error (for debugging).
	StackTrace string

	skippable bool
}

// NewETLError creates a new ETLError instance.
// module: the component where the error occurred.
// message: the error message.
// originalErr: the original error to wrap (may be nil).
func NewETLError(module, message string, originalErr error) *ETLError {
	return newETLError(module, message, originalErr, false)
}

// NewSkippableETLError creates an ETLError marking a condition that the
// caller may tolerate without failing its stage, such as an absent source
// file.
func NewSkippableETLError(module, message string, originalErr error) *ETLError {
	return newETLError(module, message, originalErr, true)
}

// NewETLErrorf creates a non-skippable ETLError using a format string.
func NewETLErrorf(module, format string, a ...interface{}) *ETLError {
	return newETLError(module, fmt.Sprintf(format, a...), nil, false)
}

func newETLError(module, message string, originalErr error, skippable bool) *ETLError {
	buf := make([]byte, 2048)
	n := runtime.Stack(buf, false)

	return &ETLError{
		Module:      module,
		Message:     message,
		OriginalErr: originalErr,
		StackTrace:  string(buf[:n]),
		skippable:   skippable,
	}
}

// Error implements the error interface.
// It returns the error's module, message, and the string representation of
// the original error.
func (e *ETLError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Module, e.Message, e.OriginalErr)
	}
	return fmt.Sprintf("[%s] %s", e.Module, e.Message)
}

// Unwrap returns the original error for errors.Unwrap.
func (e *ETLError) Unwrap() error {
	return e.OriginalErr
}

// IsSkippable returns whether this error marks a tolerable condition.
func (e *ETLError) IsSkippable() bool {
	return e.skippable
}

// IsETLError determines if the given error is of type ETLError.
func IsETLError(err error) bool {
	if err == nil {
		return false
	}
	_, ok := err.(*ETLError)
	return ok
}

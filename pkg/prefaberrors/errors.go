// Package prefaberrors provides structured error handling for Prefab with
// rich context, stack traces, and error categorization.
//
// # Overview
//
// The prefaberrors package extends Go's standard error handling with:
//   - Error categorization through ErrorType
//   - Structured context with key-value details
//   - Automatic stack trace capture
//   - Error wrapping with cause preservation
//   - Recoverability detection for the registry boundary
//
// # Error Types
//
// Pool errors fall into three categories with distinct handling policies:
//
//   - Configuration errors (unknown or duplicate pool identifiers) are
//     caller/setup mistakes: surfaced immediately, never retried, and the
//     offending operation is a no-op.
//   - Integrity errors (double release, unmanaged instance) indicate a caller
//     bug that could corrupt pool invariants: recovered locally by rejecting
//     the offending call or destroying the orphan.
//   - Exhaustion errors are the only condition propagated as a hard failure:
//     the caller's intended action genuinely cannot be fulfilled and the
//     caller decides whether to retry, skip, or degrade.
//
// # Basic Usage
//
//	// Create a new error
//	err := prefaberrors.New(prefaberrors.ErrorTypeConfig, "unknown pool identifier")
//
//	// Add context
//	err = err.WithDetail("pool_id", "bullet")
//
//	// Wrap existing errors
//	if err := template(); err != nil {
//	    return prefaberrors.Wrap(err, prefaberrors.ErrorTypeExhaustion, "instance construction failed").
//	        WithDetail("pool_id", id)
//	}
package prefaberrors

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrorType represents the category of error, which determines how the pool
// registry handles it at its boundary.
type ErrorType string

const (
	// ErrorTypeConfig represents caller/setup mistakes such as acquiring from
	// an unregistered pool or registering a duplicate identifier.
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeIntegrity represents caller bugs that would corrupt pool
	// invariants, such as releasing an instance twice or releasing an
	// instance the registry never issued.
	ErrorTypeIntegrity ErrorType = "integrity"
	// ErrorTypeExhaustion represents resource exhaustion: a pool could not
	// grow because construction failed or an instance limit was reached.
	ErrorTypeExhaustion ErrorType = "exhaustion"
	// ErrorTypeInternal represents internal system errors
	ErrorTypeInternal ErrorType = "internal"
)

// Error represents a structured error with context.
//
// Fields:
//   - Type: Categorizes the error for handling strategies
//   - Message: Human-readable error description
//   - Cause: The underlying error that caused this error
//   - Details: Key-value pairs providing additional context
//   - Stack: Call stack at the point of error creation
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]interface{}
	Stack   []StackFrame
}

// StackFrame represents a single frame in the call stack, capturing
// the function name, file path, and line number for debugging.
type StackFrame struct {
	Function string // Fully qualified function name
	File     string // Source file path
	Line     int    // Line number in source file
}

// Error implements the error interface, returning a formatted error message
// that includes the error type, message, and cause (if present).
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error, enabling compatibility with errors.Is
// and errors.As for error chain inspection.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail adds a key-value detail to the error, providing additional
// context for debugging and monitoring. This method can be chained.
//
// Example:
//
//	err := prefaberrors.New(prefaberrors.ErrorTypeIntegrity, "double release").
//	    WithDetail("pool_id", "bullet").
//	    WithDetail("idle_count", 3)
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new error with the given type and message, automatically
// capturing the call stack at the point of creation.
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Stack:   captureStack(2),
	}
}

// Wrap wraps an existing error with additional context, preserving the
// original error as the cause. If the error is already a structured Error,
// its stack trace is preserved. Returns nil if the input error is nil.
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}

	// If already our error type, preserve the stack
	var existingErr *Error
	if errors.As(err, &existingErr) {
		return &Error{
			Type:    errType,
			Message: message,
			Cause:   err,
			Stack:   existingErr.Stack,
		}
	}

	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
		Stack:   captureStack(2),
	}
}

// IsRecoverable returns true if the error is contained at the registry
// boundary rather than propagated as a hard failure. Configuration and
// integrity errors are recoverable: the offending call becomes a no-op (or
// the orphan is destroyed) and gameplay continues. Exhaustion errors are not
// recoverable locally; the caller must decide what to do.
func IsRecoverable(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}

	switch e.Type {
	case ErrorTypeConfig, ErrorTypeIntegrity:
		return true
	case ErrorTypeExhaustion, ErrorTypeInternal:
		return false
	default:
		return false
	}
}

// IsType checks if the error is of the given type, useful for error handling
// strategies and conditional logic based on error categories.
//
// Example:
//
//	if prefaberrors.IsType(err, prefaberrors.ErrorTypeExhaustion) {
//	    // Skip the visual effect this frame
//	    return
//	}
func IsType(err error, errType ErrorType) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Type == errType
}

// captureStack captures the current call stack up to maxFrames deep,
// skipping the specified number of frames from the top.
func captureStack(skip int) []StackFrame {
	const maxFrames = 32
	frames := make([]StackFrame, 0, maxFrames)

	for i := skip; i < maxFrames+skip; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}

		frames = append(frames, StackFrame{
			Function: fn.Name(),
			File:     file,
			Line:     line,
		})
	}

	return frames
}

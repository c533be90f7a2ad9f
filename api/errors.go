// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for numaheap.

package api

import "fmt"

// Common errors used across the library.
var (
	ErrHeapClosed        = fmt.Errorf("heap is closed")
	ErrInvalidArgument   = fmt.Errorf("invalid argument")
	ErrResourceExhausted = fmt.Errorf("resource exhausted")
	ErrNotSupported      = fmt.Errorf("operation not supported")
	ErrNotFound          = fmt.Errorf("resource not found")
	ErrGrainImmutable    = fmt.Errorf("grain cannot change after startup")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeInvalidArgument
	ErrCodeResourceExhausted
	ErrCodeNotSupported
	ErrCodeNotFound
	ErrCodeInternal
	// ErrCodeContractViolation marks corrupted allocator bookkeeping.
	// Errors carrying it are raised with panic, never returned.
	ErrCodeContractViolation
	ErrCodePlatform
)

func (c ErrorCode) String() string {
	switch c {
	case ErrCodeOK:
		return "ok"
	case ErrCodeInvalidArgument:
		return "invalid-argument"
	case ErrCodeResourceExhausted:
		return "resource-exhausted"
	case ErrCodeNotSupported:
		return "not-supported"
	case ErrCodeNotFound:
		return "not-found"
	case ErrCodeContractViolation:
		return "contract-violation"
	case ErrCodePlatform:
		return "platform"
	default:
		return "internal"
	}
}

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Context) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (context: %+v)", e.Message, e.Context)
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// IsContractViolation reports whether v (typically a recovered panic value)
// is a contract violation raised by this library.
func IsContractViolation(v any) bool {
	e, ok := v.(*Error)
	return ok && e.Code == ErrCodeContractViolation
}

// Is matches e against the sentinel that shares its code, so callers can
// use errors.Is(err, ErrInvalidArgument) on structured errors.
func (e *Error) Is(target error) bool {
	switch e.Code {
	case ErrCodeInvalidArgument:
		return target == ErrInvalidArgument
	case ErrCodeResourceExhausted:
		return target == ErrResourceExhausted
	case ErrCodeNotSupported:
		return target == ErrNotSupported
	case ErrCodeNotFound:
		return target == ErrNotFound
	}
	return false
}

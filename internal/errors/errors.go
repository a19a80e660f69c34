// Package errors provides domain-specific error types for the slice console.
//
// This package defines structured errors with error codes, making it easier to handle
// and test different error conditions consistently across the application.
package errors

import "fmt"

// ErrorCode represents a category of error that can occur in the application.
type ErrorCode string

const (
	// ErrCodeUnknownIdentifier indicates a slice, profile, preset or use-case id
	// that is not present in the catalog. Operations reject these before any
	// device is touched.
	ErrCodeUnknownIdentifier ErrorCode = "UNKNOWN_IDENTIFIER"

	// ErrCodeEndpointUnreachable indicates a device did not respond within the
	// configured per-step timeout.
	ErrCodeEndpointUnreachable ErrorCode = "ENDPOINT_UNREACHABLE"

	// ErrCodeCommandRejected indicates a device refused a configuration step,
	// e.g. conflicting pre-existing state or a malformed rate expression.
	ErrCodeCommandRejected ErrorCode = "COMMAND_REJECTED"

	// ErrCodePartialApply indicates some but not all steps of an apply succeeded.
	ErrCodePartialApply ErrorCode = "PARTIAL_APPLY_FAILURE"

	// ErrCodeConfig indicates a configuration-related error.
	ErrCodeConfig ErrorCode = "CONFIG_ERROR"

	// ErrCodeValidation indicates a validation error.
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"

	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Error represents a domain-specific error with an error code and optional cause.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error for errors.Is and errors.As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target error code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a new domain error with the specified code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Wrap creates a new domain error wrapping an existing error.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewUnknownIdentifierError creates an error for a missing catalog/registry id.
func NewUnknownIdentifierError(kind, id string) *Error {
	return New(ErrCodeUnknownIdentifier, fmt.Sprintf("unknown %s: %s", kind, id))
}

// NewEndpointUnreachableError creates an error for a device step timeout.
func NewEndpointUnreachableError(message string, cause error) *Error {
	return Wrap(ErrCodeEndpointUnreachable, message, cause)
}

// NewCommandRejectedError creates an error for a refused configuration step.
func NewCommandRejectedError(message string, cause error) *Error {
	return Wrap(ErrCodeCommandRejected, message, cause)
}

// NewPartialApplyError creates an aggregate error for a partially failed apply.
func NewPartialApplyError(message string) *Error {
	return New(ErrCodePartialApply, message)
}

// NewConfigError creates a new configuration error.
func NewConfigError(message string, cause error) *Error {
	return Wrap(ErrCodeConfig, message, cause)
}

// NewValidationError creates a new validation error.
func NewValidationError(message string, cause error) *Error {
	return Wrap(ErrCodeValidation, message, cause)
}

// NewInternalError creates a new internal error.
func NewInternalError(message string, cause error) *Error {
	return Wrap(ErrCodeInternal, message, cause)
}

// IsCode reports whether err carries the given error code anywhere in its chain.
func IsCode(err error, code ErrorCode) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Code == code {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

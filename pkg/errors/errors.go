package errors

import (
	"errors"
	"fmt"
)

// ErrorType defines different categories of errors
type ErrorType string

const (
	ErrorTypeValidation          ErrorType = "VALIDATION"
	ErrorTypeUpstreamUnavailable ErrorType = "UPSTREAM_UNAVAILABLE"
	ErrorTypeUpstreamRejected    ErrorType = "UPSTREAM_REJECTED"
	ErrorTypeStoreRead           ErrorType = "STORE_READ"
	ErrorTypeStoreWrite          ErrorType = "STORE_WRITE"
	ErrorTypeBusy                ErrorType = "BUSY"
	ErrorTypeInternal            ErrorType = "INTERNAL"
)

// AppError is the custom error type for the application
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work
func (e *AppError) Unwrap() error {
	return e.Err
}

// Constructor functions for different error types

// NewValidation creates a validation error. Inbound requests that are missing
// required fields are reported with this type.
func NewValidation(message string) error {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

// NewUpstreamUnavailable reports a transport-level failure talking to a provider.
func NewUpstreamUnavailable(message string, err error) error {
	return &AppError{
		Type:    ErrorTypeUpstreamUnavailable,
		Message: message,
		Err:     err,
	}
}

// NewUpstreamRejected reports a non-2xx answer from a provider.
func NewUpstreamRejected(message string, err error) error {
	return &AppError{
		Type:    ErrorTypeUpstreamRejected,
		Message: message,
		Err:     err,
	}
}

// NewStoreRead creates a store read error
func NewStoreRead(message string, err error) error {
	return &AppError{
		Type:    ErrorTypeStoreRead,
		Message: message,
		Err:     err,
	}
}

// NewStoreWrite creates a store write error
func NewStoreWrite(message string, err error) error {
	return &AppError{
		Type:    ErrorTypeStoreWrite,
		Message: message,
		Err:     err,
	}
}

// NewBusy reports a submission made while a previous one is still in flight.
func NewBusy(message string) error {
	return &AppError{
		Type:    ErrorTypeBusy,
		Message: message,
	}
}

// NewInternal creates an internal error
func NewInternal(message string, err error) error {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	// If it's already an AppError, preserve the type
	var appErr *AppError
	if errors.As(err, &appErr) {
		return &AppError{
			Type:    appErr.Type,
			Message: fmt.Sprintf("%s: %s", message, appErr.Message),
			Err:     appErr.Err,
		}
	}

	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// Type checking functions

// TypeOf returns the type of the first AppError in err's chain, or ErrorTypeInternal.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeInternal
}

func isType(err error, t ErrorType) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == t
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool { return isType(err, ErrorTypeValidation) }

// IsUpstreamUnavailable checks if an error is a provider transport failure
func IsUpstreamUnavailable(err error) bool { return isType(err, ErrorTypeUpstreamUnavailable) }

// IsUpstreamRejected checks if an error is a non-2xx provider answer
func IsUpstreamRejected(err error) bool { return isType(err, ErrorTypeUpstreamRejected) }

// IsStoreRead checks if an error is a store read failure
func IsStoreRead(err error) bool { return isType(err, ErrorTypeStoreRead) }

// IsStoreWrite checks if an error is a store write failure
func IsStoreWrite(err error) bool { return isType(err, ErrorTypeStoreWrite) }

// IsBusy checks if an error is an in-flight rejection
func IsBusy(err error) bool { return isType(err, ErrorTypeBusy) }

// IsInternal checks if an error is an internal error
func IsInternal(err error) bool { return isType(err, ErrorTypeInternal) }

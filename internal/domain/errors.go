// Package domain contains business logic types and errors.
// Domain errors represent business-level failures, NOT HTTP errors.
// They are infrastructure-agnostic and can be mapped to HTTP/gRPC/etc by adapters.
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates business rule validation failed.
	ErrValidation = errors.New("validation failed")

	// ErrUnavailable indicates a required dependency is unavailable.
	ErrUnavailable = errors.New("unavailable")

	// ErrInvalidResponse indicates a dependency answered with a payload that
	// could not be translated into a domain entity.
	ErrInvalidResponse = errors.New("invalid response")

	// ErrClosed indicates the operation targeted a widget that was unmounted.
	ErrClosed = errors.New("closed")
)

// FailureKind classifies where in a fetch a failure happened.
type FailureKind string

const (
	// FailureDispatch means the request never produced a response.
	FailureDispatch FailureKind = "dispatch"

	// FailureStatus means the response carried a non-2xx status.
	FailureStatus FailureKind = "status"

	// FailurePayload means the response body could not be used.
	FailurePayload FailureKind = "payload"

	// FailureUnknown covers errors returned by sources that do not use domain errors.
	FailureUnknown FailureKind = "unknown"
)

// NotFoundError provides context for not found errors.
type NotFoundError struct {
	Entity string
	ID     string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s with id %q not found", e.Entity, e.ID)
	}

	return e.Entity + " not found"
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NewNotFoundError creates a not found error with context.
func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ValidationError provides context for validation errors.
type ValidationError struct {
	Field   string
	Message string
	Value   any
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}

	return "validation failed: " + e.Message
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a validation error with context.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// UnavailableError provides context for unavailable errors.
// StatusCode is zero when no response was received.
type UnavailableError struct {
	Service    string
	Reason     string
	StatusCode int
}

// Error implements the error interface.
func (e *UnavailableError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("service %q unavailable: %s", e.Service, e.Reason)
	}

	return fmt.Sprintf("service %q unavailable", e.Service)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *UnavailableError) Unwrap() error {
	return ErrUnavailable
}

// NewUnavailableError creates an unavailable error for a request that got no response.
func NewUnavailableError(service, reason string) error {
	return &UnavailableError{Service: service, Reason: reason}
}

// NewStatusError creates an unavailable error for a non-2xx response.
func NewStatusError(service string, statusCode int) error {
	return &UnavailableError{
		Service:    service,
		Reason:     fmt.Sprintf("unexpected HTTP %d", statusCode),
		StatusCode: statusCode,
	}
}

// InvalidResponseError provides context for payloads that could not be translated.
type InvalidResponseError struct {
	Service string
	Reason  string
	Err     error
}

// Error implements the error interface.
func (e *InvalidResponseError) Error() string {
	msg := fmt.Sprintf("invalid response from %q: %s", e.Service, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

// Unwrap returns the sentinel together with the underlying cause.
func (e *InvalidResponseError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidResponse}
	}

	return []error{ErrInvalidResponse, e.Err}
}

// NewInvalidResponseError creates an invalid response error with context.
func NewInvalidResponseError(service, reason string, cause error) error {
	return &InvalidResponseError{Service: service, Reason: reason, Err: cause}
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsUnavailable checks if an error is an unavailable error.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// IsInvalidResponse checks if an error is an invalid response error.
func IsInvalidResponse(err error) bool {
	return errors.Is(err, ErrInvalidResponse)
}

// IsClosed checks if an error reports an unmounted widget.
func IsClosed(err error) bool {
	return errors.Is(err, ErrClosed)
}

// ClassifyFailure reports which phase of a fetch produced err.
func ClassifyFailure(err error) FailureKind {
	var unavailable *UnavailableError

	switch {
	case errors.As(err, &unavailable):
		if unavailable.StatusCode != 0 {
			return FailureStatus
		}

		return FailureDispatch
	case IsInvalidResponse(err):
		return FailurePayload
	default:
		return FailureUnknown
	}
}

package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeInvalidArgument represents malformed or missing input
	ErrorTypeInvalidArgument ErrorType = "invalid_argument"
	// ErrorTypeUnauthenticated represents a missing viewer identity
	ErrorTypeUnauthenticated ErrorType = "unauthenticated"
	// ErrorTypeForbidden represents an ownership mismatch
	ErrorTypeForbidden ErrorType = "forbidden"
	// ErrorTypeNotFound represents a referenced entity that does not exist
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeConflict represents a duplicate or missing playlist membership
	ErrorTypeConflict ErrorType = "conflict"
	// ErrorTypeInvalidOperation represents a relationship that may never exist (self-subscription)
	ErrorTypeInvalidOperation ErrorType = "invalid_operation"
	// ErrorTypeStoreFailure represents an unexpected entity or edge store failure
	ErrorTypeStoreFailure ErrorType = "store_failure"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeContext represents context cancellation/timeout errors
	ErrorTypeContext ErrorType = "context"
)

// BaseError is the base error type with common fields.
// Message is safe to show to clients; Err carries the internal cause.
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Input Errors

// ErrInvalidArgument is returned when a request carries a malformed identifier or empty text
type ErrInvalidArgument struct {
	*BaseError
	Field string
}

func NewInvalidArgument(field, reason string) *ErrInvalidArgument {
	return &ErrInvalidArgument{
		BaseError: NewBaseError(ErrorTypeInvalidArgument, fmt.Sprintf("invalid %s: %s", field, reason), nil),
		Field:     field,
	}
}

// NewUnauthenticated is returned when an operation requires a viewer and none was supplied
func NewUnauthenticated() *BaseError {
	return NewBaseError(ErrorTypeUnauthenticated, "unauthorized request", nil)
}

// Authorization Errors

// ErrForbidden is returned when the requester does not own the entity
type ErrForbidden struct {
	*BaseError
	Entity    string
	EntityID  string
	Requester string
}

func NewForbidden(entity, entityID, requester string) *ErrForbidden {
	return &ErrForbidden{
		BaseError: NewBaseError(ErrorTypeForbidden, fmt.Sprintf("you are not the owner of this %s", entity), nil),
		Entity:    entity,
		EntityID:  entityID,
		Requester: requester,
	}
}

// Entity Errors

// ErrNotFound is returned when a referenced entity does not exist
type ErrNotFound struct {
	*BaseError
	Entity   string
	EntityID string
}

func NewNotFound(entity, entityID string) *ErrNotFound {
	return &ErrNotFound{
		BaseError: NewBaseError(ErrorTypeNotFound, fmt.Sprintf("%s not found", entity), nil),
		Entity:    entity,
		EntityID:  entityID,
	}
}

// ErrConflict is returned when a membership change contradicts the current state
type ErrConflict struct {
	*BaseError
	Reason string
}

func NewConflict(reason string) *ErrConflict {
	return &ErrConflict{
		BaseError: NewBaseError(ErrorTypeConflict, reason, nil),
		Reason:    reason,
	}
}

// NewSelfSubscription is returned when a user tries to subscribe to their own channel
func NewSelfSubscription() *BaseError {
	return NewBaseError(ErrorTypeInvalidOperation, "cannot subscribe to self", nil)
}

// Store Errors

// ErrStoreFailure is returned when the entity or edge store fails unexpectedly
type ErrStoreFailure struct {
	*BaseError
	Operation string
}

func NewStoreFailure(operation string, err error) *ErrStoreFailure {
	return &ErrStoreFailure{
		BaseError: NewBaseError(ErrorTypeStoreFailure, fmt.Sprintf("something went wrong while %s", operation), err),
		Operation: operation,
	}
}

// Context Errors

// ErrContextCancelled is returned when context is cancelled
type ErrContextCancelled struct {
	*BaseError
	Operation string
}

func NewContextCancelled(operation string, err error) *ErrContextCancelled {
	return &ErrContextCancelled{
		BaseError: NewBaseError(ErrorTypeContext, fmt.Sprintf("request cancelled while %s", operation), err),
		Operation: operation,
	}
}

// ErrContextTimeout is returned when context times out
type ErrContextTimeout struct {
	*BaseError
	Operation string
}

func NewContextTimeout(operation string, err error) *ErrContextTimeout {
	return &ErrContextTimeout{
		BaseError: NewBaseError(ErrorTypeContext, fmt.Sprintf("request timed out while %s", operation), err),
		Operation: operation,
	}
}

// Config Errors

// ErrConfigValidationFailed is returned when configuration validation fails
type ErrConfigValidationFailed struct {
	*BaseError
	Field  string
	Reason string
}

func NewConfigValidationFailed(field, reason string) *ErrConfigValidationFailed {
	return &ErrConfigValidationFailed{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("config validation failed: %s - %s", field, reason), nil),
		Field:     field,
		Reason:    reason,
	}
}

// ErrConfigMissingRequired is returned when a required config value is missing
type ErrConfigMissingRequired struct {
	*BaseError
	Field string
}

func NewConfigMissingRequired(field string) *ErrConfigMissingRequired {
	return &ErrConfigMissingRequired{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", field), nil),
		Field:     field,
	}
}

// Helper functions

// AsBase finds the first BaseError in the chain of err.
// Typed errors embed *BaseError, so they are matched through their Base method.
func AsBase(err error) (*BaseError, bool) {
	for err != nil {
		switch e := err.(type) {
		case *BaseError:
			return e, true
		case interface{ Base() *BaseError }:
			return e.Base(), true
		}
		err = stderrors.Unwrap(err)
	}
	return nil, false
}

// Base exposes the embedded BaseError of typed errors.
func (e *BaseError) Base() *BaseError {
	return e
}

// TypeOf returns the category of err, or ErrorTypeStoreFailure for untyped errors
func TypeOf(err error) ErrorType {
	if base, ok := AsBase(err); ok {
		return base.Type
	}
	return ErrorTypeStoreFailure
}

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	base, ok := AsBase(err)
	return ok && base.Type == errType
}

// HTTPStatus maps an error to the status code of the response envelope
func HTTPStatus(err error) int {
	switch TypeOf(err) {
	case ErrorTypeInvalidArgument:
		return http.StatusBadRequest
	case ErrorTypeUnauthenticated:
		return http.StatusUnauthorized
	case ErrorTypeForbidden:
		return http.StatusForbidden
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeConflict, ErrorTypeInvalidOperation:
		return http.StatusConflict
	case ErrorTypeContext:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the client-facing message of err without internal causes
func PublicMessage(err error) string {
	if base, ok := AsBase(err); ok {
		return base.Message
	}
	return "something went wrong"
}

package shared

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a domain error so callers can decide how to surface it
type ErrorKind string

const (
	// KindValidation: missing or invalid input, detected before any write
	KindValidation ErrorKind = "VALIDATION"
	// KindNotFound: a referenced order, item, client, product or warehouse does not exist
	KindNotFound ErrorKind = "NOT_FOUND"
	// KindAlreadyProcessed: production requested for an item or order already completed
	KindAlreadyProcessed ErrorKind = "ALREADY_PROCESSED"
	// KindInsufficientStock: decrement or transfer beyond the available quantity
	KindInsufficientStock ErrorKind = "INSUFFICIENT_STOCK"
	// KindPersistence: the underlying store failed; the transaction was rolled back
	KindPersistence ErrorKind = "PERSISTENCE"
)

// DomainError represents a domain-level error
type DomainError struct {
	Kind    ErrorKind `json:"kind"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches another DomainError by kind and code, so sentinel errors work with errors.Is
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a validation error with the generic VALIDATION_FAILED code
func NewValidationError(format string, args ...any) *DomainError {
	return NewDomainError(KindValidation, "VALIDATION_FAILED", fmt.Sprintf(format, args...))
}

// NewNotFoundError creates a not-found error for the named resource
func NewNotFoundError(resource string) *DomainError {
	return NewDomainError(KindNotFound, "NOT_FOUND", resource+" not found")
}

// NewAlreadyProcessedError creates an already-processed error
func NewAlreadyProcessedError(format string, args ...any) *DomainError {
	return NewDomainError(KindAlreadyProcessed, "ALREADY_PROCESSED", fmt.Sprintf(format, args...))
}

// NewInsufficientStockError creates an insufficient-stock error
func NewInsufficientStockError(format string, args ...any) *DomainError {
	return NewDomainError(KindInsufficientStock, "INSUFFICIENT_STOCK", fmt.Sprintf(format, args...))
}

// NewPersistenceError wraps a store failure
func NewPersistenceError(op string, cause error) *DomainError {
	return &DomainError{
		Kind:    KindPersistence,
		Code:    "PERSISTENCE_ERROR",
		Message: op + " failed",
		Cause:   cause,
	}
}

// KindOf returns the kind of err, or KindPersistence for errors that are not domain errors
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindPersistence
}

// IsKind reports whether err is a domain error of the given kind
func IsKind(err error, kind ErrorKind) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Kind == kind
}

// Common domain errors
var (
	ErrNotFound          = NewDomainError(KindNotFound, "NOT_FOUND", "Resource not found")
	ErrInvalidInput      = NewDomainError(KindValidation, "INVALID_INPUT", "Invalid input provided")
	ErrInvalidState      = NewDomainError(KindValidation, "INVALID_STATE", "Operation not allowed in current state")
	ErrAlreadyProcessed  = NewDomainError(KindAlreadyProcessed, "ALREADY_PROCESSED", "Already processed")
	ErrInsufficientStock = NewDomainError(KindInsufficientStock, "INSUFFICIENT_STOCK", "Insufficient stock available")
)

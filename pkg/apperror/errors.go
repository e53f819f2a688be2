package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error so callers can branch without string matching.
type Kind string

const (
	// KindValidation marks input rejected before any store access
	KindValidation Kind = "validation"
	// KindNotFound marks a missing book, sale or other referenced entity
	KindNotFound Kind = "not_found"
	// KindBusinessRule marks a domain invariant refusal (insufficient stock,
	// over-return); the transaction was rolled back
	KindBusinessRule Kind = "business_rule"
	// KindConflict marks a store constraint violation (duplicate key,
	// referential constraint) translated from the driver
	KindConflict Kind = "conflict"
	// KindTransient marks lock contention or a deadlock abort; retrying the
	// whole operation may succeed
	KindTransient Kind = "transient"
	// KindInternal marks everything else
	KindInternal Kind = "internal"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int          `json:"code"`
	Kind    Kind         `json:"kind"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Common errors
var (
	ErrNotFound           = &AppError{Code: http.StatusNotFound, Kind: KindNotFound, Message: "Resource not found"}
	ErrUnauthorized       = &AppError{Code: http.StatusUnauthorized, Kind: KindValidation, Message: "Unauthorized"}
	ErrForbidden          = &AppError{Code: http.StatusForbidden, Kind: KindValidation, Message: "Forbidden"}
	ErrInvalidCredentials = &AppError{Code: http.StatusUnauthorized, Kind: KindValidation, Message: "Invalid email or password"}
)

// NewValidationError creates a validation error with a custom message
func NewValidationError(message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Kind: KindValidation, Message: message}
}

// NewFieldValidationError creates a validation error for specific fields
func NewFieldValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Kind:    KindValidation,
		Message: "Validation failed",
		Errors:  fieldErrors,
	}
}

// NewNotFoundError creates a not found error for a resource
func NewNotFoundError(resource string) *AppError {
	return &AppError{Code: http.StatusNotFound, Kind: KindNotFound, Message: resource + " not found"}
}

// NewBusinessRuleError creates a business rule violation error
func NewBusinessRuleError(message string) *AppError {
	return &AppError{Code: http.StatusConflict, Kind: KindBusinessRule, Message: message}
}

// NewInsufficientStockError reports an oversell refusal with enough detail
// for the caller to adjust the cart.
func NewInsufficientStockError(title string, available, requested int) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Kind:    KindBusinessRule,
		Message: fmt.Sprintf("Insufficient stock for %q. Available: %d, Requested: %d", title, available, requested),
	}
}

// NewOverReturnError reports a refusal to return more than was sold.
func NewOverReturnError(title string, sold, alreadyReturned, requested int) *AppError {
	return &AppError{
		Code: http.StatusConflict,
		Kind: KindBusinessRule,
		Message: fmt.Sprintf("Cannot return more of %q than sold. Sold: %d, Already returned: %d, Requested: %d",
			title, sold, alreadyReturned, requested),
	}
}

// NewConflictError creates a constraint conflict error
func NewConflictError(message string) *AppError {
	return &AppError{Code: http.StatusConflict, Kind: KindConflict, Message: message}
}

// NewTransientError creates a transient contention error. The operation was
// rolled back; the caller may retry it as a whole.
func NewTransientError(message string) *AppError {
	return &AppError{Code: http.StatusServiceUnavailable, Kind: KindTransient, Message: message}
}

// NewInternalError wraps an unexpected failure
func NewInternalError(message string) *AppError {
	return &AppError{Code: http.StatusInternalServerError, Kind: KindInternal, Message: message}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// KindOf returns the kind of an error, or KindInternal for foreign errors
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsTransient reports whether retrying the failed operation may succeed
func IsTransient(err error) bool {
	return KindOf(err) == KindTransient
}

// IsBusinessRule reports whether the error is a domain invariant refusal
func IsBusinessRule(err error) bool {
	return KindOf(err) == KindBusinessRule
}

// IsNotFound reports whether the error is a missing-entity error
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// GetAppError converts an error to AppError if possible
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{
		Code:    http.StatusInternalServerError,
		Kind:    KindInternal,
		Message: err.Error(),
	}
}

// Package errors provides the application error taxonomy for the Pitaka API.
// Service-layer failures are returned as *AppError so handlers can render a
// consistent response without leaking internal details to clients.
package errors

import (
	"maps"
	"net/http"
)

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, optional details describing the
// offending field or computed bound, and an optional internal error.
type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	StatusCode int            `json:"-"`
	Internal   error          `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is reports whether target is an AppError with the same code, so callers can
// match a derived error against its sentinel with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		Details:    sentinel.Details,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		Details:    sentinel.Details,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// WithDetails returns a copy of err with the given key/value pairs merged
// into its details. Values are rendered as-is in the JSON response.
func WithDetails(err *AppError, details map[string]any) *AppError {
	merged := make(map[string]any, len(err.Details)+len(details))
	maps.Copy(merged, err.Details)
	maps.Copy(merged, details)
	return &AppError{
		Code:       err.Code,
		Message:    err.Message,
		Details:    merged,
		StatusCode: err.StatusCode,
		Internal:   err.Internal,
	}
}

// Authentication errors.
var (
	ErrUnauthorized = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
)

// General errors.
var (
	ErrInvalidInput       = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrInternalServer     = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
	ErrStorageUnavailable = &AppError{Code: "STORAGE_UNAVAILABLE", Message: "The ledger is temporarily unavailable", StatusCode: http.StatusServiceUnavailable}
)

// Validation errors raised by the recorder and the goal coordinator.
var (
	ErrInvalidAmount    = &AppError{Code: "INVALID_AMOUNT", Message: "Amount must be a positive value with at most two decimal places", StatusCode: http.StatusBadRequest}
	ErrInvalidLimit     = &AppError{Code: "INVALID_LIMIT", Message: "Spending limit must be between zero and the total amount", StatusCode: http.StatusBadRequest}
	ErrInvalidDateRange = &AppError{Code: "INVALID_DATE_RANGE", Message: "End date cannot be before start date", StatusCode: http.StatusBadRequest}
)

// Allowance errors.
var (
	ErrAllowanceNotFound = &AppError{Code: "ALLOWANCE_NOT_FOUND", Message: "Allowance not found", StatusCode: http.StatusNotFound}
	ErrNoActiveAllowance = &AppError{Code: "ALLOWANCE_NOT_FOUND", Message: "No active allowance", StatusCode: http.StatusNotFound}
)

// Goal errors.
var (
	ErrGoalNotFound      = &AppError{Code: "GOAL_NOT_FOUND", Message: "Goal not found", StatusCode: http.StatusNotFound}
	ErrInsufficientFunds = &AppError{Code: "INSUFFICIENT_FUNDS", Message: "Amount exceeds the available balance of the selected pool", StatusCode: http.StatusUnprocessableEntity}
)

package errors

import (
	"net/http"

	"cleanops/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.details != "" {
		return e.message + ": " + e.details
	}

	return e.message
}

// Is matches any BaseError carrying the same error code, so errors built with
// WithDetails still match the predefined value.
func (e *BaseError) Is(target error) bool {
	other, ok := target.(*BaseError)

	return ok && other.errorCode == e.errorCode
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error types
var (
	// Location errors
	ErrLocationNotFound = NewBaseError(
		http.StatusNotFound,
		"LOCATION_NOT_FOUND",
		"Service location not found",
		"",
	)

	ErrLocationNotScheduled = NewBaseError(
		http.StatusUnprocessableEntity,
		"LOCATION_NOT_SCHEDULED",
		"Service location has no next service date",
		"",
	)

	// Pay period errors
	ErrInvalidPayPeriod = NewBaseError(
		http.StatusBadRequest,
		"INVALID_PAY_PERIOD",
		"Invalid pay period",
		"",
	)

	ErrInvalidDate = NewBaseError(
		http.StatusBadRequest,
		"INVALID_DATE",
		"Date must be formatted as YYYY-MM-DD",
		"",
	)

	// Payroll errors
	ErrInvalidAdjustment = NewBaseError(
		http.StatusBadRequest,
		"INVALID_ADJUSTMENT",
		"Invalid payroll adjustment",
		"",
	)

	ErrPayrollNotFound = NewBaseError(
		http.StatusNotFound,
		"PAYROLL_NOT_FOUND",
		"Payroll record not found",
		"",
	)

	// Scheduled task errors
	ErrUnknownTask = NewBaseError(
		http.StatusNotFound,
		"UNKNOWN_TASK",
		"Unknown scheduled task",
		"",
	)

	ErrTaskFailed = NewBaseError(
		http.StatusServiceUnavailable,
		"TASK_FAILED",
		"Scheduled task failed and may be retried",
		"",
	)

	// Validation-related errors
	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"Request validation failed",
		"",
	)

	// General errors
	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"Internal server error",
		"",
	)
)

// StoreExecuteError represents a document store failure, implementing the AppError interface
type StoreExecuteError struct {
	err     error
	details string
}

// NewStoreExecuteError creates a store-related error
func NewStoreExecuteError(err error, details string) AppError {
	return &StoreExecuteError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *StoreExecuteError) Error() string {
	return errors.Wrap(e.err, "document store operation failed").Error()
}

// Unwrap returns the underlying store error
func (e *StoreExecuteError) Unwrap() error {
	return e.err
}

// HTTPCode returns the HTTP status code
func (e *StoreExecuteError) HTTPCode() int {
	return http.StatusServiceUnavailable
}

// ErrorCode returns the business error code
func (e *StoreExecuteError) ErrorCode() string {
	return "STORE_EXECUTE_FAILED"
}

// Message returns the user-friendly error message
func (e *StoreExecuteError) Message() string {
	return "Document store operation failed"
}

// Details returns detailed error information
func (e *StoreExecuteError) Details() string {
	return e.details
}

package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError application error carrying an error code, the HTTP status it maps
// to and the message shown to the client.
type AppError struct {
	Code    int    // error code
	Status  int    // HTTP status
	Message string // client-visible message
	Err     error  // underlying cause, optional
}

// Error implements error
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap supports errors.Unwrap
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewError creates an error of the given code
func NewError(code, status int, message string) *AppError {
	return &AppError{
		Code:    code,
		Status:  status,
		Message: message,
	}
}

// Wrap attaches a cause, keeping code, status and message
func (e *AppError) Wrap(err error) *AppError {
	return &AppError{
		Code:    e.Code,
		Status:  e.Status,
		Message: e.Message,
		Err:     err,
	}
}

// WithMessage returns a copy carrying a more specific client message
func (e *AppError) WithMessage(message string) *AppError {
	return &AppError{
		Code:    e.Code,
		Status:  e.Status,
		Message: message,
		Err:     e.Err,
	}
}

// Is reports whether err is an AppError with the target's code
func Is(err error, target *AppError) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == target.Code
	}
	return false
}

// GetCode returns the error code, CodeServerError for non-AppErrors
func GetCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeServerError
}

// GetStatus returns the HTTP status, 500 for non-AppErrors
func GetStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Status != 0 {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

// GetMessage returns the client-visible message
func GetMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return ErrServerError.Message
}

// ============== error codes ==============

const (
	CodeSuccess = 0

	// request 10000-10999
	CodeValidation      = 10001
	CodeUnauthorized    = 10002
	CodeTokenInvalid    = 10003
	CodeTokenExpired    = 10004
	CodeForbidden       = 10005
	CodeTooManyRequests = 10006

	// lookup 11000-11999
	CodeNotFound         = 11001
	CodeReceiverNotFound = 11002
	CodeMessageNotFound  = 11003
	CodeRouteNotFound    = 11004

	// system 50000-50999
	CodeServerError = 50001
	CodeRetrieval   = 50002
	CodePersistence = 50003
)

// ============== predefined errors ==============

// request
var (
	ErrValidation      = NewError(CodeValidation, http.StatusBadRequest, "Validation error")
	ErrUnauthorized    = NewError(CodeUnauthorized, http.StatusUnauthorized, "Access denied. No token provided.")
	ErrTokenInvalid    = NewError(CodeTokenInvalid, http.StatusUnauthorized, "Invalid token")
	ErrTokenExpired    = NewError(CodeTokenExpired, http.StatusUnauthorized, "Token expired")
	ErrForbidden       = NewError(CodeForbidden, http.StatusForbidden, "Access forbidden")
	ErrTooManyRequests = NewError(CodeTooManyRequests, http.StatusTooManyRequests, "Too many requests from this IP, please try again later.")
)

// lookup
var (
	ErrNotFound         = NewError(CodeNotFound, http.StatusNotFound, "Not found")
	ErrReceiverNotFound = NewError(CodeReceiverNotFound, http.StatusNotFound, "Receiver not found")
	ErrMessageNotFound  = NewError(CodeMessageNotFound, http.StatusNotFound, "Message not found or you are not authorized to delete it")
	ErrRouteNotFound    = NewError(CodeRouteNotFound, http.StatusNotFound, "API endpoint not found")
)

// system
var (
	ErrServerError = NewError(CodeServerError, http.StatusInternalServerError, "Internal server error")
	ErrRetrieval   = NewError(CodeRetrieval, http.StatusInternalServerError, "Failed to retrieve data")
	ErrPersistence = NewError(CodePersistence, http.StatusInternalServerError, "Failed to save data")
)

// Validation builds a validation error with a specific message
func Validation(message string) *AppError {
	return ErrValidation.WithMessage(message)
}

// IsNotFound reports whether err maps to 404
func IsNotFound(err error) bool {
	return GetStatus(err) == http.StatusNotFound
}

// IsValidation reports whether err is a validation error
func IsValidation(err error) bool {
	return Is(err, ErrValidation)
}

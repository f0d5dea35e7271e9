package httpx

import (
	"fmt"
	"net/http"
)

// Business error codes
const (
	// Success
	CodeSuccess = 0

	// Parameter errors (2000-2099)
	CodeParamMissing = 2001 // Parameter missing
	CodeParamInvalid = 2002 // Parameter format error
	CodeParamIllegal = 2003 // Parameter value illegal

	// Resource/Business errors (3000-3999)
	CodeNotFound      = 3001 // Resource not found
	CodeStateConflict = 3003 // Current state does not allow operation

	// System errors (5000-5999)
	CodeDatabaseError = 5002 // Database error
	CodeStorageError  = 5004 // Cache storage failure
)

// AppError is an admin API error with HTTP status and business code.
type AppError struct {
	HTTPStatus int         // HTTP status code
	Code       int         // Business error code
	Message    string      // User-facing error message
	Err        error       // Internal error, logged only
	Data       interface{} // Additional detail returned to the client
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("code=%d, message=%s, err=%v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("code=%d, message=%s", e.Code, e.Message)
}

// Unwrap returns the internal error.
func (e *AppError) Unwrap() error {
	return e.Err
}


// NewAppError creates a new AppError
func NewAppError(httpStatus, code int, message string, err error) *AppError {
	return &AppError{
		HTTPStatus: httpStatus,
		Code:       code,
		Message:    message,
		Err:        err,
	}
}

func orDefault(message, def string) string {
	if message == "" {
		return def
	}
	return message
}

// ErrParamMissing creates a 400 parameter missing error
func ErrParamMissing(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeParamMissing, orDefault(message, "parameter missing"), nil)
}

// ErrParamInvalid creates a 400 parameter invalid error
func ErrParamInvalid(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeParamInvalid, orDefault(message, "parameter format error"), nil)
}

// ErrParamIllegal creates a 400 parameter illegal error
func ErrParamIllegal(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeParamIllegal, orDefault(message, "parameter value illegal"), nil)
}

// ErrNotFound creates a 404 not found error
func ErrNotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, orDefault(message, "resource not found"), nil)
}


// ErrStateConflict creates a 409 state conflict error
func ErrStateConflict(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeStateConflict, orDefault(message, "current state does not allow operation"), nil)
}


// ErrDatabaseError creates a 500 database error
func ErrDatabaseError(message string, err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeDatabaseError, orDefault(message, "database error"), err)
}

// ErrStorageError creates a 500 cache storage error
func ErrStorageError(message string, err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeStorageError, orDefault(message, "storage error"), err)
}

package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCode represents an application error code.
type ErrorCode string

const (
	ErrInvalidRequest       ErrorCode = "INVALID_REQUEST"       // 400
	ErrUnauthorized         ErrorCode = "UNAUTHORIZED"          // 401
	ErrNotFound             ErrorCode = "NOT_FOUND"             // 404
	ErrIncompleteInput      ErrorCode = "INCOMPLETE_INPUT"      // 422
	ErrClipboardUnavailable ErrorCode = "CLIPBOARD_UNAVAILABLE" // 500
	ErrInternal             ErrorCode = "INTERNAL"              // 500
	ErrStorageUnavailable   ErrorCode = "STORAGE_UNAVAILABLE"   // 503
)

// AppError represents a structured error with code, status, and details.
type AppError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *AppError {
	return &AppError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewUnauthorized creates a 401 error for a failed or missing login.
func NewUnauthorized(msg string) *AppError {
	return &AppError{
		Code:    ErrUnauthorized,
		Status:  401,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for an unknown snapshot or catalog entry.
func NewNotFound(kind, identifier string) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %s", kind, identifier),
		Details: map[string]any{"kind": kind, "identifier": identifier},
	}
}

// NewIncompleteInput creates a 422 error listing the form fields that must be
// filled before a prompt can be generated. The message names the first one.
func NewIncompleteInput(missing []string) *AppError {
	msg := "input is incomplete"
	if len(missing) > 0 {
		msg = fmt.Sprintf("missing required field: %s", missing[0])
	}
	return &AppError{
		Code:    ErrIncompleteInput,
		Status:  422,
		Message: msg,
		Details: map[string]any{"missing_fields": missing},
	}
}

// NewClipboardUnavailable wraps a failed copy to the system clipboard.
func NewClipboardUnavailable(err error) *AppError {
	msg := "clipboard unavailable"
	if err != nil {
		msg = fmt.Sprintf("clipboard unavailable: %v", err)
	}
	return &AppError{
		Code:    ErrClipboardUnavailable,
		Status:  500,
		Message: msg,
	}
}

// NewStorageUnavailable creates a 503 error when durable storage cannot be reached.
func NewStorageUnavailable(err error) *AppError {
	msg := "storage unavailable"
	if err != nil {
		msg = fmt.Sprintf("storage unavailable: %v", err)
	}
	return &AppError{
		Code:    ErrStorageUnavailable,
		Status:  503,
		Message: msg,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *AppError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &AppError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if err (or anything it wraps) is an AppError with the given code.
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// As returns the AppError carried by err, wrapping anything else as INTERNAL.
func As(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return NewInternal(err)
}

// MissingFields returns the missing field list of an INCOMPLETE_INPUT error.
func MissingFields(err error) []string {
	var appErr *AppError
	if !stderrors.As(err, &appErr) || appErr.Code != ErrIncompleteInput {
		return nil
	}
	fields, _ := appErr.Details["missing_fields"].([]string)
	return fields
}

// Summary renders an error as a single user-facing line, e.g. for a toast.
func Summary(err error) string {
	if err == nil {
		return ""
	}
	appErr := As(err)
	return strings.TrimSpace(appErr.Message)
}

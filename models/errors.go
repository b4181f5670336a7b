package models

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds shared by every layer. Wrap them (or use AppError) and match
// with errors.Is.
var (
	ErrValidation       = errors.New("validation failed")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNotAuthorized    = errors.New("not authorized")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrUpstream         = errors.New("upstream failure")
)

// ErrAmbiguousDispatchLog is returned when more than one dispatch log row
// exists for a company and day.
var ErrAmbiguousDispatchLog = fmt.Errorf("%w: more than one dispatch log entry for the day", ErrUpstream)

// AppError carries a kind from the taxonomy plus caller-facing detail.
type AppError struct {
	Kind    error
	Field   string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Is(target error) bool {
	return target == e.Kind
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewValidationError(field, message string) *AppError {
	return &AppError{Kind: ErrValidation, Field: field, Message: message}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{Kind: ErrNotFound, Message: message}
}

func NewAuthError(kind error, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

func NewConflictError(message string) *AppError {
	return &AppError{Kind: ErrConflict, Message: message}
}

func NewUpstreamError(message string, err error) *AppError {
	return &AppError{Kind: ErrUpstream, Message: message, Err: err}
}

// HTTPStatusFor maps an error to its response status.
func HTTPStatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ErrorType names the taxonomy entry of err for APIError.Type.
func ErrorType(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "ValidationError"
	case errors.Is(err, ErrNotAuthenticated), errors.Is(err, ErrNotAuthorized):
		return "AuthError"
	case errors.Is(err, ErrNotFound):
		return "NotFoundError"
	case errors.Is(err, ErrConflict):
		return "ConflictError"
	default:
		return "UpstreamError"
	}
}

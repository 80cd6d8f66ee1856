// Package apperrors defines the closed set of failure kinds the application
// reports and the error value that carries them to the HTTP boundary.
package apperrors

import (
	"context"
	"errors"
)

// Kind is the closed error taxonomy. Translation to a transport status happens
// once, in middleware.HandleAPIError.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindAuth
	KindForbidden
	KindNotFound
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindAuth:
		return "auth"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindUpstream:
		return "upstream"
	default:
		return "internal"
	}
}

// Kind sentinels. Every CustomError wraps exactly one of these.
var (
	ErrValidationFailed = errors.New("validation failed")
	ErrConflict         = errors.New("conflict")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrPermissionDenied = errors.New("permission denied")
	ErrResourceNotFound = errors.New("resource not found")
	ErrUpstream         = errors.New("upstream unavailable")
)

// Domain errors
var (
	ErrUserNotFound    = NewResourceNotFoundError("User not found")
	ErrBlogNotFound    = NewResourceNotFoundError("Blog not found")
	ErrCommentNotFound = NewResourceNotFoundError("Comment not found")
)

// KindOf classifies err. Deadline and cancellation errors from a store call
// count as upstream failures.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, ErrValidationFailed):
		return KindValidation
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrUnauthorized):
		return KindAuth
	case errors.Is(err, ErrPermissionDenied):
		return KindForbidden
	case errors.Is(err, ErrResourceNotFound):
		return KindNotFound
	case errors.Is(err, ErrUpstream),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return KindUpstream
	default:
		return KindInternal
	}
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
	Field   string
	Details interface{}
	cause   error
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap exposes both the kind sentinel and, when set, the underlying cause.
func (e *CustomError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	if e.cause != nil {
		errs = append(errs, e.cause)
	}
	return errs
}

// Cause returns the wrapped low level error, if any.
func (e *CustomError) Cause() error {
	return e.cause
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{Err: err, Message: message}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}

// WithField names the input field the error is about.
func (e *CustomError) WithField(field string) *CustomError {
	e.Field = field
	return e
}

// WithCause attaches the low level error that triggered this one.
func (e *CustomError) WithCause(cause error) *CustomError {
	e.cause = cause
	return e
}

// NewValidationError reports input that failed one or more rules.
func NewValidationError(violations []string) *CustomError {
	return &CustomError{Err: ErrValidationFailed, Message: "Validation failed", Details: violations}
}

// NewBadRequestError is a validation failure with a single message.
func NewBadRequestError(message string) *CustomError {
	return &CustomError{Err: ErrValidationFailed, Message: message}
}

// NewConflictError reports a uniqueness violation on field.
func NewConflictError(field, message string) *CustomError {
	return &CustomError{Err: ErrConflict, Message: message, Field: field}
}

// NewUnauthorizedError reports a missing or unusable credential.
func NewUnauthorizedError(message string) *CustomError {
	return &CustomError{Err: ErrUnauthorized, Message: message}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) *CustomError {
	return &CustomError{Err: ErrPermissionDenied, Message: message}
}

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) *CustomError {
	return &CustomError{Err: ErrResourceNotFound, Message: message}
}

// NewUpstreamError wraps a store or dependency failure.
func NewUpstreamError(message string, cause error) *CustomError {
	return &CustomError{Err: ErrUpstream, Message: message, cause: cause}
}

// As extracts the CustomError from err's chain.
func As(err error) (*CustomError, bool) {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

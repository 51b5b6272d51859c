package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors by code so sentinel comparisons survive Clone and Wrap.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e != nil && t != nil && e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound         = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden        = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized     = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict         = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation       = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal         = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss        = New("CACHE_MISS", http.StatusNotFound, "cache miss")
	ErrTemplateLocked   = New("TEMPLATE_LOCKED", http.StatusConflict, "template is not editable in its current status")
	ErrSubmissionClosed = New("SUBMISSION_CLOSED", http.StatusConflict, "form is not accepting submissions")
)

// Structural schema errors raised by ingestion and the form builder. They
// reject the offending operation and leave prior state untouched; callers
// surface them to an operator for correction and retry.
var (
	ErrMalformedRow           = New("MALFORMED_ROW", http.StatusBadRequest, "tabular row is malformed")
	ErrDuplicateFieldID       = New("DUPLICATE_FIELD_ID", http.StatusConflict, "field id already exists")
	ErrDuplicateName          = New("DUPLICATE_NAME", http.StatusConflict, "field name already exists in template")
	ErrDuplicateOption        = New("DUPLICATE_OPTION", http.StatusConflict, "option value already exists on field")
	ErrCyclicConditional      = New("CYCLIC_CONDITIONAL", http.StatusBadRequest, "conditional rules form a cycle")
	ErrUnsupportedOptionField = New("UNSUPPORTED_OPTION_FIELD", http.StatusBadRequest, "field type does not carry options")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

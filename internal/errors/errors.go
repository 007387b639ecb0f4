package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a Tome error code.
type ErrorCode string

const (
	ErrInvalidRequest    ErrorCode = "INVALID_REQUEST"     // 400
	ErrUnknownType       ErrorCode = "UNKNOWN_TYPE"        // 400
	ErrUnauthorized      ErrorCode = "UNAUTHORIZED"        // 401
	ErrNotFound          ErrorCode = "NOT_FOUND"           // 404
	ErrCodeAlreadyExists ErrorCode = "CODE_ALREADY_EXISTS" // 409
	ErrTypeImmutable     ErrorCode = "TYPE_IMMUTABLE"      // 422
	ErrInternal          ErrorCode = "INTERNAL"            // 500
	ErrStoreUnavailable  ErrorCode = "STORE_UNAVAILABLE"   // 503
)

// TomeError represents a structured error with code, status, and details.
type TomeError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *TomeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *TomeError {
	return &TomeError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewUnknownType creates a 400 error for a type outside the configured set.
func NewUnknownType(typ string) *TomeError {
	return &TomeError{
		Code:    ErrUnknownType,
		Status:  400,
		Message: fmt.Sprintf("unknown entry type: %q", typ),
		Details: map[string]any{"type": typ},
	}
}

// NewUnauthorized creates a 401 error for operations that need admin mode.
func NewUnauthorized() *TomeError {
	return &TomeError{
		Code:    ErrUnauthorized,
		Status:  401,
		Message: "admin mode required",
	}
}

// NewNotFound creates a 404 error. kind is "entry" or "tag definition".
func NewNotFound(kind, identifier string) *TomeError {
	return &TomeError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %s", kind, identifier),
		Details: map[string]any{"kind": kind, "identifier": identifier},
	}
}

// NewCodeAlreadyExists creates a 409 error for tag code collisions.
func NewCodeAlreadyExists(code string) *TomeError {
	return &TomeError{
		Code:    ErrCodeAlreadyExists,
		Status:  409,
		Message: fmt.Sprintf("tag definition with code %q already exists", code),
		Details: map[string]any{"code": code},
	}
}

// NewTypeImmutable creates a 422 error when an update tries to change an entry's type.
func NewTypeImmutable(from, to string) *TomeError {
	return &TomeError{
		Code:    ErrTypeImmutable,
		Status:  422,
		Message: fmt.Sprintf("entry type cannot change from %q to %q", from, to),
		Details: map[string]any{"from": from, "to": to},
	}
}

// NewStoreUnavailable creates a 503 error when the backing store fails or times out.
func NewStoreUnavailable(op string, err error) *TomeError {
	msg := "store unavailable"
	if err != nil {
		msg = fmt.Sprintf("%s: %v", op, err)
	}
	return &TomeError{
		Code:    ErrStoreUnavailable,
		Status:  503,
		Message: msg,
		Details: map[string]any{"operation": op},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *TomeError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &TomeError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is (or wraps) a TomeError with the given code.
func Is(err error, code ErrorCode) bool {
	var tErr *TomeError
	if stderrors.As(err, &tErr) {
		return tErr.Code == code
	}
	return false
}

// As returns the TomeError in err's chain, if any.
func As(err error) (*TomeError, bool) {
	var tErr *TomeError
	if stderrors.As(err, &tErr) {
		return tErr, true
	}
	return nil, false
}

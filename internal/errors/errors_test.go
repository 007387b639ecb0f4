package errors

import (
	"fmt"
	"testing"
)

func TestTomeError_Error(t *testing.T) {
	err := &TomeError{
		Code:    ErrNotFound,
		Status:  404,
		Message: "entry not found",
	}

	expected := "NOT_FOUND: entry not found"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewInvalidRequest(t *testing.T) {
	err := NewInvalidRequest("name is required")

	if err.Code != ErrInvalidRequest {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidRequest)
	}
	if err.Status != 400 {
		t.Errorf("Status = %d, want 400", err.Status)
	}
	if err.Message != "name is required" {
		t.Errorf("Message = %q, want %q", err.Message, "name is required")
	}
}

func TestNewNotFound(t *testing.T) {
	err := NewNotFound("entry", "01ABC")

	if err.Code != ErrNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotFound)
	}
	if err.Status != 404 {
		t.Errorf("Status = %d, want 404", err.Status)
	}
	if err.Details["identifier"] != "01ABC" {
		t.Errorf("Details[identifier] = %v, want %q", err.Details["identifier"], "01ABC")
	}
	if err.Message != "entry not found: 01ABC" {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestNewCodeAlreadyExists(t *testing.T) {
	err := NewCodeAlreadyExists("fire")

	if err.Status != 409 {
		t.Errorf("Status = %d, want 409", err.Status)
	}
	if err.Details["code"] != "fire" {
		t.Errorf("Details[code] = %v, want fire", err.Details["code"])
	}
}

func TestNewTypeImmutable(t *testing.T) {
	err := NewTypeImmutable("spell", "trait")

	if err.Code != ErrTypeImmutable {
		t.Errorf("Code = %q, want %q", err.Code, ErrTypeImmutable)
	}
	if err.Status != 422 {
		t.Errorf("Status = %d, want 422", err.Status)
	}
}

func TestNewStoreUnavailable(t *testing.T) {
	err := NewStoreUnavailable("list entries", fmt.Errorf("connection refused"))

	if err.Status != 503 {
		t.Errorf("Status = %d, want 503", err.Status)
	}
	if err.Message != "list entries: connection refused" {
		t.Errorf("Message = %q", err.Message)
	}

	bare := NewStoreUnavailable("list entries", nil)
	if bare.Message != "store unavailable" {
		t.Errorf("Message = %q, want %q", bare.Message, "store unavailable")
	}
}

func TestNewInternal(t *testing.T) {
	err := NewInternal(fmt.Errorf("disk full"))
	if err.Message != "disk full" {
		t.Errorf("Message = %q, want %q", err.Message, "disk full")
	}

	nilErr := NewInternal(nil)
	if nilErr.Message != "internal error" {
		t.Errorf("Message = %q, want %q", nilErr.Message, "internal error")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code ErrorCode
		want bool
	}{
		{"matching code", NewNotFound("entry", "x"), ErrNotFound, true},
		{"different code", NewNotFound("entry", "x"), ErrInternal, false},
		{"wrapped", fmt.Errorf("outer: %w", NewUnauthorized()), ErrUnauthorized, true},
		{"plain error", fmt.Errorf("boom"), ErrInternal, false},
		{"nil", nil, ErrInternal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAs(t *testing.T) {
	wrapped := fmt.Errorf("ctx: %w", NewUnknownType("vehicle"))
	tErr, ok := As(wrapped)
	if !ok {
		t.Fatal("As() = false, want true")
	}
	if tErr.Code != ErrUnknownType {
		t.Errorf("Code = %q, want %q", tErr.Code, ErrUnknownType)
	}

	if _, ok := As(fmt.Errorf("plain")); ok {
		t.Error("As() on plain error = true, want false")
	}
}

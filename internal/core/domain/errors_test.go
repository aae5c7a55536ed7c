package domain

import (
	"fmt"
	"net/http"
	"testing"
)

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *APIError
		expected string
	}{
		{
			name:     "error with type and message",
			err:      &APIError{Type: ErrorTypeInvalidRequest, Message: "bad request"},
			expected: "invalid_request: bad request",
		},
		{
			name:     "error with type, code, and message",
			err:      &APIError{Type: ErrorTypeForbidden, Code: ErrorCodeProofRevoked, Message: "revoked"},
			expected: "forbidden (proof_revoked): revoked",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAPIError_HTTPStatusCode(t *testing.T) {
	tests := []struct {
		name     string
		err      *APIError
		expected int
	}{
		{"invalid request", &APIError{Type: ErrorTypeInvalidRequest}, http.StatusBadRequest},
		{"forbidden", &APIError{Type: ErrorTypeForbidden}, http.StatusForbidden},
		{"not found", &APIError{Type: ErrorTypeNotFound}, http.StatusNotFound},
		{"method not allowed", &APIError{Type: ErrorTypeMethodNotAllowed}, http.StatusMethodNotAllowed},
		{"conflict", &APIError{Type: ErrorTypeConflict}, http.StatusConflict},
		{"server", &APIError{Type: ErrorTypeServer}, http.StatusInternalServerError},
		{"unknown type", &APIError{Type: "mystery"}, http.StatusInternalServerError},
		{"explicit status wins", &APIError{Type: ErrorTypeConflict, StatusCode: http.StatusTeapot}, http.StatusTeapot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.HTTPStatusCode(); got != tt.expected {
				t.Errorf("HTTPStatusCode() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestErrProofRevoked(t *testing.T) {
	err := ErrProofRevoked("p-1", "issuer recalled batch")

	if err.Type != ErrorTypeForbidden {
		t.Errorf("Type = %q, want %q", err.Type, ErrorTypeForbidden)
	}
	if err.Message != "vaccine proof p-1 has been revoked: issuer recalled batch" {
		t.Errorf("unexpected message: %q", err.Message)
	}

	wrapped := fmt.Errorf("hook failed: %w", err)
	if !IsRevoked(wrapped) {
		t.Error("IsRevoked() = false for wrapped revocation error")
	}
	if IsRevoked(ErrForbidden("nope")) {
		t.Error("IsRevoked() = true for plain forbidden error")
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(fmt.Errorf("get: %w", ErrNotFound("missing"))) {
		t.Error("IsNotFound() = false for wrapped not found error")
	}
	if IsNotFound(fmt.Errorf("plain")) {
		t.Error("IsNotFound() = true for plain error")
	}
}

func TestParseMethod(t *testing.T) {
	for _, m := range Methods {
		got, err := ParseMethod(string(m))
		if err != nil {
			t.Fatalf("ParseMethod(%q) error = %v", m, err)
		}
		if got != m {
			t.Errorf("ParseMethod(%q) = %q", m, got)
		}
	}

	if _, err := ParseMethod("all"); err == nil {
		t.Error("ParseMethod(all) should fail")
	}
	if _, err := ParseMethod("upsert"); err == nil {
		t.Error("ParseMethod(upsert) should fail")
	}
}

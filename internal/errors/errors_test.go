package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestConstructorsSetStatusAndType(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantType   ErrorType
		wantStatus int
	}{
		{"validation", NewValidationError(CodeFileTooLarge, "too big", nil), ErrorTypeValidation, http.StatusBadRequest},
		{"bad request", NewBadRequestError(CodeAIBadRequest, "rejected", nil), ErrorTypeBadRequest, http.StatusBadRequest},
		{"unauthorized", NewUnauthorizedError(CodeAIAuthFailed, "denied", nil), ErrorTypeUnauthorized, http.StatusUnauthorized},
		{"configuration", NewConfigurationError(CodeAINotConfigured, "no key", nil), ErrorTypeConfiguration, http.StatusInternalServerError},
		{"unavailable", NewServiceUnavailableError(CodeAIServiceUnavailable, "down", nil), ErrorTypeServiceUnavailable, http.StatusServiceUnavailable},
		{"network", NewNetworkError(CodeImageFetchFailed, "fetch", nil), ErrorTypeNetwork, http.StatusBadGateway},
		{"timeout", NewTimeoutError("slow", nil), ErrorTypeTimeout, http.StatusGatewayTimeout},
		{"rate limit", NewRateLimitError("slow down"), ErrorTypeRateLimit, http.StatusTooManyRequests},
		{"not found", NewNotFoundError("missing", nil), ErrorTypeNotFound, http.StatusNotFound},
		{"internal", NewInternalError(CodeAnalysisError, "boom", nil), ErrorTypeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Type != tt.wantType {
				t.Errorf("Expected type %s, got %s", tt.wantType, tt.err.Type)
			}
			if tt.err.StatusCode != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, tt.err.StatusCode)
			}
			if tt.err.Code == "" {
				t.Error("Expected a wire code")
			}
		})
	}
}

func TestHelpersUnwrapChains(t *testing.T) {
	cause := errors.New("connection reset")
	appErr := NewServiceUnavailableError(CodeAIServiceUnavailable, "AI service unavailable", cause)
	wrapped := fmt.Errorf("analyze: %w", appErr)

	if got := GetStatusCode(wrapped); got != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", got)
	}
	if got := GetCode(wrapped); got != CodeAIServiceUnavailable {
		t.Errorf("Expected %s, got %s", CodeAIServiceUnavailable, got)
	}
	if !IsType(wrapped, ErrorTypeServiceUnavailable) {
		t.Error("Expected IsType to see through wrapping")
	}
	if !errors.Is(wrapped, cause) {
		t.Error("Expected cause to be reachable through Unwrap")
	}
}

func TestHelpersOnPlainErrors(t *testing.T) {
	err := errors.New("plain")
	if got := GetStatusCode(err); got != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", got)
	}
	if got := GetCode(err); got != CodeAnalysisError {
		t.Errorf("Expected %s, got %s", CodeAnalysisError, got)
	}
	if IsType(err, ErrorTypeValidation) {
		t.Error("Plain error must not match any type")
	}
}

func TestWithDetails(t *testing.T) {
	err := NewValidationError(CodeInvalidFormat, "a. b", nil).WithDetails("a", "b")
	if len(err.Details) != 2 {
		t.Fatalf("Expected 2 details, got %d", len(err.Details))
	}
}

package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation         ErrorType = "validation"
	ErrorTypeBadRequest         ErrorType = "bad_request"
	ErrorTypeNetwork            ErrorType = "network"
	ErrorTypeTimeout            ErrorType = "timeout"
	ErrorTypeUnauthorized       ErrorType = "unauthorized"
	ErrorTypeConfiguration      ErrorType = "configuration"
	ErrorTypeServiceUnavailable ErrorType = "service_unavailable"
	ErrorTypeRateLimit          ErrorType = "rate_limit"
	ErrorTypeNotFound           ErrorType = "not_found"
	ErrorTypeInternal           ErrorType = "internal"
)

// Wire codes returned to clients in the failure payload
const (
	CodeMissingImage         = "MISSING_IMAGE"
	CodeFileTooLarge         = "FILE_TOO_LARGE"
	CodeInvalidFormat        = "INVALID_FORMAT"
	CodeNotAnImage           = "NOT_AN_IMAGE"
	CodeInvalidImageData     = "INVALID_IMAGE_DATA"
	CodeEncodingError        = "ENCODING_ERROR"
	CodeMissingImageData     = "MISSING_IMAGE_DATA"
	CodeInvalidURL           = "INVALID_URL"
	CodeAIAuthFailed         = "AI_AUTH_FAILED"
	CodeAIBadRequest         = "AI_BAD_REQUEST"
	CodeAIServiceUnavailable = "AI_SERVICE_UNAVAILABLE"
	CodeAINotConfigured      = "AI_NOT_CONFIGURED"
	CodeInvalidAnalysis      = "INVALID_ANALYSIS"
	CodeRateLimitExceeded    = "RATE_LIMIT_EXCEEDED"
	CodeAnalysisError        = "ANALYSIS_ERROR"
	CodeRequestTimeout       = "REQUEST_TIMEOUT"
	CodeImageFetchFailed     = "IMAGE_FETCH_FAILED"
	CodeNotFound             = "NOT_FOUND"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Code       string    `json:"code"`
	Message    string    `json:"message"`
	Details    []string  `json:"details,omitempty"`
	StatusCode int       `json:"status_code"`
	Cause      error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails attaches per-violation messages to the error
func (e *AppError) WithDetails(details ...string) *AppError {
	e.Details = append(e.Details, details...)
	return e
}

func newAppError(t ErrorType, status int, code, message string, cause error) *AppError {
	return &AppError{
		Type:       t,
		Code:       code,
		Message:    message,
		StatusCode: status,
		Cause:      cause,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeValidation, http.StatusBadRequest, code, message, cause)
}

// NewBadRequestError is used when an upstream provider rejects the request we sent
func NewBadRequestError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeBadRequest, http.StatusBadRequest, code, message, cause)
}

// NewUnauthorizedError creates a new unauthorized error
func NewUnauthorizedError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeUnauthorized, http.StatusUnauthorized, code, message, cause)
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeConfiguration, http.StatusInternalServerError, code, message, cause)
}

// NewServiceUnavailableError creates a new service unavailable error
func NewServiceUnavailableError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeServiceUnavailable, http.StatusServiceUnavailable, code, message, cause)
}

// NewNetworkError creates a new network error
func NewNetworkError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeNetwork, http.StatusBadGateway, code, message, cause)
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(message string, cause error) *AppError {
	return newAppError(ErrorTypeTimeout, http.StatusGatewayTimeout, CodeRequestTimeout, message, cause)
}

// NewRateLimitError creates a new rate limit error
func NewRateLimitError(message string) *AppError {
	return newAppError(ErrorTypeRateLimit, http.StatusTooManyRequests, CodeRateLimitExceeded, message, nil)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string, cause error) *AppError {
	return newAppError(ErrorTypeNotFound, http.StatusNotFound, CodeNotFound, message, cause)
}

// NewInternalError creates a new internal error
func NewInternalError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeInternal, http.StatusInternalServerError, code, message, cause)
}

// As returns the first AppError in err's chain
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType checks if the error is of a specific type
func IsType(err error, errorType ErrorType) bool {
	if appErr, ok := As(err); ok {
		return appErr.Type == errorType
	}
	return false
}

// GetStatusCode extracts the HTTP status code from an error
func GetStatusCode(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

// GetCode extracts the wire code from an error
func GetCode(err error) string {
	if appErr, ok := As(err); ok && appErr.Code != "" {
		return appErr.Code
	}
	return CodeAnalysisError
}

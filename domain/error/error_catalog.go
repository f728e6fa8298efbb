package error

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code
type ErrorCode string

// Error codes for different categories
const (
	// Dispatch errors (1xxx)
	ErrCodeUnknownTransaction ErrorCode = "TX_1001"
	ErrCodeInvalidTransaction ErrorCode = "TX_1002"

	// Authorization errors (2xxx)
	ErrCodeForbidden        ErrorCode = "AUTHZ_2001"
	ErrCodeRegistryNotReady ErrorCode = "AUTHZ_2002"

	// Store errors (3xxx)
	ErrCodeStoreUnavailable ErrorCode = "STORE_3001"
	ErrCodeGrantWriteFailed ErrorCode = "STORE_3002"

	// Audit errors (4xxx)
	ErrCodeAuditFailure ErrorCode = "AUDIT_4001"

	// Server errors (5xxx)
	ErrCodeInternalServerError ErrorCode = "SERVER_5001"
	ErrCodeConfigurationError  ErrorCode = "SERVER_5002"
)

// AppError represents a structured application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the cause error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message string, details string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}

// Common error constructors

func ErrUnknownTransaction(tx int64) *AppError {
	return NewAppError(ErrCodeUnknownTransaction, "Unknown transaction", fmt.Sprintf("TX: %d", tx), nil)
}

func ErrForbidden(profileID int64, object, method string) *AppError {
	return NewAppError(ErrCodeForbidden, "Transaction not permitted", fmt.Sprintf("Profile: %d, Target: %s.%s", profileID, object, method), nil)
}

func ErrRegistryNotReady() *AppError {
	return NewAppError(ErrCodeRegistryNotReady, "Transaction registry not ready", "", nil)
}

func ErrStoreUnavailable(operation string, cause error) *AppError {
	return NewAppError(ErrCodeStoreUnavailable, "Permission store unavailable", fmt.Sprintf("Operation: %s", operation), cause)
}

func ErrAuditFailure(cause error) *AppError {
	return NewAppError(ErrCodeAuditFailure, "Audit record could not be written", "", cause)
}

func ErrInternalServerError(details string, cause error) *AppError {
	return NewAppError(ErrCodeInternalServerError, "Internal server error", details, cause)
}

func ErrConfigurationError(config string) *AppError {
	return NewAppError(ErrCodeConfigurationError, "Configuration error", fmt.Sprintf("Config: %s", config), nil)
}

// Error mapping for HTTP status codes
func GetHTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case ErrCodeUnknownTransaction, ErrCodeInvalidTransaction:
			return 404 // Not Found
		case ErrCodeForbidden:
			return 403 // Forbidden
		case ErrCodeRegistryNotReady, ErrCodeStoreUnavailable:
			return 503 // Service Unavailable
		case ErrCodeGrantWriteFailed:
			return 502 // Bad Gateway
		}
	}
	return 500 // Default to Internal Server Error
}

// Error response structure for API responses
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   *AppError `json:"error"`
	TraceID string    `json:"trace_id,omitempty"`
}

// NewErrorResponse creates a new error response
func NewErrorResponse(err *AppError, traceID string) *ErrorResponse {
	return &ErrorResponse{
		Success: false,
		Error:   err,
		TraceID: traceID,
	}
}

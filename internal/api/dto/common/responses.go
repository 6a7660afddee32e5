package common

// APIResponse is the flat envelope every endpoint answers with. Success and
// Message are always present so the form UI can render any outcome.
type APIResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Code    string            `json:"code,omitempty"`
	Error   string            `json:"error,omitempty"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a validation error detail
type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HealthResponse is the liveness payload
type HealthResponse struct {
	Status string `json:"status"`
}

// Define type for error codes to enforce consistency
type ErrorCode string

// Standard error codes
const (
	ErrCodeValidation           ErrorCode = "VALIDATION_ERROR"
	ErrCodeInvalidBody          ErrorCode = "INVALID_BODY"
	ErrCodeNotFound             ErrorCode = "NOT_FOUND"
	ErrCodeMethodNotAllowed     ErrorCode = "METHOD_NOT_ALLOWED"
	ErrCodeRateLimited          ErrorCode = "RATE_LIMITED"
	ErrCodeTooManyRequests      ErrorCode = "TOO_MANY_REQUESTS"
	ErrCodeTransportUnavailable ErrorCode = "TRANSPORT_UNAVAILABLE"
	ErrCodeDispatchFailed       ErrorCode = "DISPATCH_FAILED"
	ErrCodeInternalServer       ErrorCode = "INTERNAL_SERVER_ERROR"
)

// NewErrorResponse creates a new error API response. detail is the raw cause
// and is only set by callers running in development mode.
func NewErrorResponse(code ErrorCode, message, detail string) APIResponse {
	return APIResponse{
		Success: false,
		Message: message,
		Code:    string(code),
		Error:   detail,
	}
}

// NewValidationResponse creates a response listing every offending field
func NewValidationResponse(message string, errs []ValidationError) APIResponse {
	return APIResponse{
		Success: false,
		Message: message,
		Code:    string(ErrCodeValidation),
		Errors:  errs,
	}
}

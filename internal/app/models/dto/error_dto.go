package dto

// ErrorCode represents standardized error codes
type ErrorCode string

// Standard error codes for the application
const (
	// Authentication errors
	ErrorCodeInvalidCredentials ErrorCode = "AUTH_001"
	ErrorCodeInvalidToken       ErrorCode = "AUTH_005"
	ErrorCodeExpiredToken       ErrorCode = "AUTH_006"
	ErrorCodeTokenNotFound      ErrorCode = "AUTH_007"
	ErrorCodeUnauthorized       ErrorCode = "AUTH_008"
	ErrorCodeForbidden          ErrorCode = "AUTH_009"

	// Resource errors
	ErrorCodeResourceNotFound      ErrorCode = "RES_001"
	ErrorCodeResourceAlreadyExists ErrorCode = "RES_002"

	// Validation errors
	ErrorCodeValidationFailed ErrorCode = "VAL_001"

	// Throttling
	ErrorCodeRateLimited ErrorCode = "RATE_001"

	// Server errors
	ErrorCodeInternalServer       ErrorCode = "SRV_001"
	ErrorCodeExternalServiceError ErrorCode = "SRV_003"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    ErrorCode   `json:"code"`
	Field   string      `json:"field,omitempty"`
	Details interface{} `json:"details,omitempty"`
	Debug   string      `json:"debug,omitempty"`
}

// NewErrorResponse creates an error body with a message and code.
func NewErrorResponse(code ErrorCode, message string) *ErrorResponse {
	return &ErrorResponse{Error: message, Code: code}
}

// WithField names the input field the error is about.
func (e *ErrorResponse) WithField(field string) *ErrorResponse {
	e.Field = field
	return e
}

// WithDetails adds additional details to the error
func (e *ErrorResponse) WithDetails(details interface{}) *ErrorResponse {
	e.Details = details
	return e
}

// WithDebug attaches diagnostic text (development mode only)
func (e *ErrorResponse) WithDebug(debug string) *ErrorResponse {
	e.Debug = debug
	return e
}

package dto

// SuccessResponse represents a standard success response for API endpoints
type SuccessResponse struct {
	Message string `json:"message"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// StatusResponse wraps a payload in the {status, data} envelope used by comment routes.
type StatusResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data"`
}

// NewStatusResponse creates a success envelope.
func NewStatusResponse(data interface{}) StatusResponse {
	return StatusResponse{Status: "success", Data: data}
}

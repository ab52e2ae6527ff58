package models

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Code    int    `json:"code"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// NewErrorResponse creates a new error response
func NewErrorResponse(code int, err string, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Error:   err,
		Message: message,
	}
}


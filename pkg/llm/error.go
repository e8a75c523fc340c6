// Package llm provides internal representations of LLM inference API requests
// and responses which are then further mutated and handled.
package llm

// ErrorResponse represents an error payload from the LLM API.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// APIError is the error object OpenAI-compatible servers return alongside
// non-2xx statuses.
type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
	Code    any    `json:"code,omitempty"` // String or number depending on the server
}

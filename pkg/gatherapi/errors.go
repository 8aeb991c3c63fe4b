package gatherapi

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// APIError represents an error response from the platform API.
// The backend is not perfectly consistent about its error envelope, so the
// gateway normalizes every non-2xx response into this one type; callers never
// branch on transport-specific wrapping.
type APIError struct {
	// StatusCode is the HTTP status of the failed response.
	StatusCode int `json:"-"`

	// Code is the machine-readable error code when the server provides one.
	Code string `json:"error,omitempty"`

	// Message is the human-readable description.
	Message string `json:"message"`

	// Fields carries field-level validation errors when present.
	Fields map[string]string `json:"fields,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsUnauthorized reports whether the error is a 401 response.
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// parseErrorResponse normalizes a non-2xx response body into an *APIError.
// Returns nil for 2xx responses.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	// Envelope with error code and message.
	var envelope struct {
		Error   string            `json:"error"`
		Message string            `json:"message"`
		Detail  string            `json:"detail"`
		Fields  map[string]string `json:"fields"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		msg := envelope.Message
		if msg == "" {
			msg = envelope.Detail
		}
		if msg != "" || envelope.Error != "" {
			if msg == "" {
				msg = http.StatusText(resp.StatusCode)
			}
			return &APIError{
				StatusCode: resp.StatusCode,
				Code:       envelope.Error,
				Message:    msg,
				Fields:     envelope.Fields,
			}
		}
	}

	// Fallback: generic error from status code.
	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    http.StatusText(resp.StatusCode),
	}
}

package utils

import "net/http"

// APIError is returned by handlers for failures that map onto a specific
// HTTP status. Anything else is rendered as a 500.
type APIError struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Errors     []string `json:"errors"`
}

func NewAPIError(statusCode int, message string, errs ...string) *APIError {
	if message == "" {
		message = http.StatusText(statusCode)
	}
	if errs == nil {
		errs = []string{}
	}
	return &APIError{
		StatusCode: statusCode,
		Message:    message,
		Errors:     errs,
	}
}

func (e *APIError) Error() string {
	return e.Message
}

package utils

import (
	"encoding/json"
	"net/http"
)

// APIResponse is the success envelope shared by every endpoint
type APIResponse struct {
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data"`
	Message    string      `json:"message"`
	Success    bool        `json:"success"`
}

// errorBody is what clients see for an APIError
type errorBody struct {
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data"`
	Message    string      `json:"message"`
	Success    bool        `json:"success"`
	Errors     []string    `json:"errors"`
}

func NewAPIResponse(statusCode int, data interface{}, message string) APIResponse {
	if message == "" {
		message = "Success"
	}
	return APIResponse{
		StatusCode: statusCode,
		Data:       data,
		Message:    message,
		Success:    statusCode < 400,
	}
}

// WriteJSON writes v with the given status code
func WriteJSON(w http.ResponseWriter, status int, v interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// WriteSuccess wraps data in an APIResponse and writes it
func WriteSuccess(w http.ResponseWriter, status int, data interface{}, message string) error {
	return WriteJSON(w, status, NewAPIResponse(status, data, message))
}

// WriteError renders an APIError using its own status code
func WriteError(w http.ResponseWriter, apiErr *APIError) {
	errs := apiErr.Errors
	if errs == nil {
		errs = []string{}
	}
	_ = WriteJSON(w, apiErr.StatusCode, errorBody{
		StatusCode: apiErr.StatusCode,
		Data:       nil,
		Message:    apiErr.Message,
		Success:    false,
		Errors:     errs,
	})
}

package service

import (
	"encoding/json"
	"net/http"
)

// APIError is the JSON error body returned by the API routes.
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// WriteJSON writes the error with its status code.
func (e *APIError) WriteJSON(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Status)
	json.NewEncoder(w).Encode(e)
}

var (
	ErrInvalidJSON = &APIError{
		Status:  http.StatusBadRequest,
		Message: "Invalid JSON",
	}

	ErrBodyTooLarge = &APIError{
		Status:  http.StatusRequestEntityTooLarge,
		Message: "Request body too large",
	}
)

func invalidRequest(details string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Message: "Invalid request body",
		Details: details,
	}
}

package utils

import (
	"encoding/json"
	"net/http"
)

// APIResponse is the envelope every taskmarket endpoint answers with: a
// success flag, a human-readable message and an optional payload.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// WriteJSON writes resp to w with the given HTTP status.
func WriteJSON(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// GetStringValue unwraps a nullable string column, empty when nil.
func GetStringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

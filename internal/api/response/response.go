// Package response provides helpers for sending consistent JSON responses
// and the structured error body used by every handler.
package response

import (
	"encoding/json"
	"log"
	"net/http"
)

// ErrorResponse is the error body returned by the API. Details is optional
// context, typically the underlying error message.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// RespondJSON writes data as JSON with the given status code. A nil data
// sends the status code alone, which is how 204 responses are produced.
// Encoding failures are logged; the status line has already been sent.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("response: failed to encode body: %v", err)
		}
	}
}

// RespondError writes a structured error response. An empty string for
// details is dropped from the body rather than serialized as "".
func RespondError(w http.ResponseWriter, status int, message string, details any) {
	if s, ok := details.(string); ok && s == "" {
		details = nil
	}
	RespondJSON(w, status, ErrorResponse{
		Error:   message,
		Details: details,
	})
}

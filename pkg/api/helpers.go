// Package api holds the HTTP payload types and the writers that put them on
// the wire. Successful calls answer with a typed payload (chat replies use
// {"message": ...}); failures always answer {"error": ...}.
package api

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Success writes payload as JSON with the given status. A nil payload
// writes the status with an empty body.
func Success(w http.ResponseWriter, status int, payload any) {
	writeJSON(w, status, payload)
}

// Message answers a single-provider chat with {"message": text}.
func Message(w http.ResponseWriter, text string) {
	writeJSON(w, http.StatusOK, ChatResponse{Message: text})
}

// Error writes {"error": message} with the given status.
func Error(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	// The status line is already out; a failed encode means the client left.
	_ = json.NewEncoder(w).Encode(payload)
}

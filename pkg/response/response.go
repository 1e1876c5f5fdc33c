// Package response writes the JSON envelopes shared by every endpoint:
// {"success": true, "data": ...} and {"success": false, "message": ...}.
package response

import (
	"encoding/json"
	"net/http"
)

type dataEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type messageEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// OK wraps data in a success envelope.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, dataEnvelope{Success: true, Data: data})
}

// Error writes a failure envelope with a user-facing message.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, messageEnvelope{Success: false, Message: msg})
}

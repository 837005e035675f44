package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"
)

// envelope is the uniform response wrapper for every endpoint.
type envelope struct {
	Success   bool           `json:"success"`
	Message   string         `json:"message"`
	Data      any            `json:"data,omitempty"`
	ErrorCode string         `json:"error_code,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}

func writeSuccessMeta(w http.ResponseWriter, status int, message string, data any, metadata map[string]any) {
	writeJSON(w, status, envelope{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC(),
		Metadata:  metadata,
	})
}

func writeError(w http.ResponseWriter, status int, message, errorCode string) {
	writeJSON(w, status, envelope{
		Success:   false,
		Message:   message,
		ErrorCode: errorCode,
		Timestamp: time.Now().UTC(),
	})
}

func badRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, message, "VALIDATION_ERROR")
}

func internalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, message, "INTERNAL_SERVER_ERROR")
}

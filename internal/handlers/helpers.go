package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

// writeEnvelope emits the standard response envelope all endpoints share.
func writeEnvelope(w http.ResponseWriter, status int, envelope map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	envelope["timestamp"] = time.Now().UTC().Format(time.RFC3339)
	if err := json.NewEncoder(w).Encode(envelope); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// respondJSON sends a success envelope wrapping data.
func respondJSON(w http.ResponseWriter, status int, data any) {
	writeEnvelope(w, status, map[string]any{
		"success": true,
		"data":    data,
	})
}

// respondJSONError sends an error envelope. The message is truncated so
// wrapped driver errors never leak full detail to clients.
func respondJSONError(w http.ResponseWriter, status int, errorType, message string) {
	writeEnvelope(w, status, map[string]any{
		"success": false,
		"error":   errorType,
		"message": sanitizeErrorMessage(message),
	})
}

func sanitizeErrorMessage(message string) string {
	if len(message) > 200 {
		return message[:200] + "..."
	}
	return message
}

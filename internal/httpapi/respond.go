package httpapi

import (
	"encoding/json"
	"net/http"
)

// Responses follow the {success, data|message} envelope the storefront
// frontend expects.

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, map[string]any{
		"success": true,
		"data":    data,
	})
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"success": true,
		"message": msg,
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"message": msg,
	})
}

func writeServerError(w http.ResponseWriter) {
	writeError(w, http.StatusInternalServerError, "Server error")
}

// File: internal/handlers/helpers.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/solent-ai/genchat/internal/services"
)

// writeJSON is a helper for sending JSON responses.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError is a helper for sending JSON error responses.
func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps service sentinels onto status codes. This is
// the single place errors become HTTP; anything unrecognized is a 500
// carrying the error's string description.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrEmptyMessage):
		writeError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, services.ErrConversationNotFound),
		errors.Is(err, services.ErrUserNotFound):
		writeError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrAccountDisabled):
		writeError(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrUsernameTaken):
		writeError(w, err.Error(), http.StatusConflict)
	default:
		writeError(w, err.Error(), http.StatusInternalServerError)
	}
}

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/askarov/gamerater/internal/apperrors"
	log "github.com/sirupsen/logrus"
)

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondMessage(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusOK, map[string]string{"message": message})
}

// respondError maps a service error onto the wire. Domain errors carry their
// own status and message; anything else becomes a bare 500 with the detail
// kept in the server log.
func respondError(w http.ResponseWriter, err error) {
	status := apperrors.StatusOf(err)
	if status >= http.StatusInternalServerError {
		log.WithError(err).Error("Request failed")
	}
	respondJSON(w, status, map[string]string{"error": apperrors.MessageOf(err)})
}

package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

type errorResponse struct {
	Message string `json:"message"`
}

// respondJSON writes payload as JSON. A nil payload writes only the status.
func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Message: msg})
}

func normalizeID(id string) string {
	return strings.TrimSpace(id)
}

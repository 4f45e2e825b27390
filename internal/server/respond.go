package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Default().Error("failed to encode response body", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeServerError logs the original error server-side and surfaces a generic
// message, so storage and upstream details never leak to the browser.
func writeServerError(w http.ResponseWriter, route string, err error) {
	slog.Default().Error("request failed", "route", route, "error", err)
	writeError(w, http.StatusInternalServerError, "Internal Error")
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func logStreamFailure(route string, err error) {
	slog.Default().Error("stream interrupted", "route", route, "error", err)
}

// writeSyncFailed is the single failure shape for recall-card generation.
func writeSyncFailed(w http.ResponseWriter, err error) {
	slog.Default().Error("recall sync failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error":   "AI_SYNC_FAILED",
		"message": "Neural engine failed to generate cards. Try syncing again.",
	})
}

func contextWithTimeout(r *http.Request, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), d)
}

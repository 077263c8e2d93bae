package server

import (
	"encoding/json"
	"net/http"

	"github.com/baraliresort/reserve/internal/logger"
)

// RespondJSON writes data as JSON with status.
func RespondJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.FromContext(r.Context()).Warnw("encode response", "err", err)
	}
}

// RespondError writes {"error": msg}.
func RespondError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	RespondJSON(w, r, status, map[string]string{"error": msg})
}

package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Health reports archive connectivity and index size.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	archive := "ok"
	if err := h.archive.Ping(ctx); err != nil {
		slog.Warn("Archive ping failed", "error", err)
		archive = "unavailable"
		status = http.StatusServiceUnavailable
	}

	body := map[string]interface{}{
		"status":  "ok",
		"archive": archive,
	}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	if h.manual != nil {
		body["manual_chunks"] = h.manual.Len()
	}
	if h.sessions != nil {
		body["active_sessions"] = h.sessions.Len()
	}
	JSON(w, status, body)
}

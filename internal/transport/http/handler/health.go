package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

const serviceName = "certportal"

// Pinger probes a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports whether the service can reach its datastore.
type HealthHandler struct {
	store Pinger
}

func NewHealthHandler(store Pinger) *HealthHandler { return &HealthHandler{store: store} }

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		slog.Warn("health probe failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, HealthEnvelope{Status: "unhealthy", Service: serviceName})
		return
	}
	writeJSON(w, http.StatusOK, HealthEnvelope{Status: "healthy", Service: serviceName})
}

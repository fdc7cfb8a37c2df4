package handler

import (
	"net/http"

	"github.com/certportal/internal/application/event"
	"github.com/certportal/internal/domain"
	"github.com/certportal/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
)

// EventHandler exposes the event catalogue to operators.
type EventHandler struct {
	svc event.Service
}

func NewEventHandler(svc event.Service) *EventHandler { return &EventHandler{svc: svc} }

// List returns only the events assigned to the caller's role.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	events, err := h.svc.List(r.Context(), claims.Role)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DataEnvelope{Data: events})
}

func (h *EventHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var in domain.EventInput
	if err := decodeJSON(r, &in); err != nil {
		writeDomainError(w, r, err)
		return
	}
	ev, err := h.svc.Upsert(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DataEnvelope{Data: ev})
}

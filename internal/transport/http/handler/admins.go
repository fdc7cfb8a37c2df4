package handler

import (
	"net/http"

	"github.com/certportal/internal/application/admin"
	"github.com/certportal/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
)

// AdminHandler manages operator accounts.
type AdminHandler struct {
	svc admin.Service
}

func NewAdminHandler(svc admin.Service) *AdminHandler { return &AdminHandler{svc: svc} }

func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	admins, err := h.svc.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DataEnvelope{Data: admins})
}

// Me returns the account behind the caller's bearer.
func (h *AdminHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	a, err := h.svc.Get(r.Context(), claims.Email)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DataEnvelope{Data: a})
}

func (h *AdminHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	var req admin.RoleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}
	a, err := h.svc.SetRole(r.Context(), claims.Email, chi.URLParam(r, "email"), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DataEnvelope{Data: a})
}

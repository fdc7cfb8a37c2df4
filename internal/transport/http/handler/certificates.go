package handler

import (
	"net/http"

	"github.com/certportal/internal/application/certificate"
	"github.com/certportal/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
)

// CertificateHandler lists and revokes issued certificates.
type CertificateHandler struct {
	svc certificate.Service
}

func NewCertificateHandler(svc certificate.Service) *CertificateHandler {
	return &CertificateHandler{svc: svc}
}

func (h *CertificateHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	certs, err := h.svc.List(r.Context(), claims.Role, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DataEnvelope{Data: certs})
}

func (h *CertificateHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Revoke(r.Context(), chi.URLParam(r, "email"), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Certificate revoked"})
}

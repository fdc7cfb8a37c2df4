package handler

import (
	"net/http"

	"github.com/certportal/internal/application/verification"
	"github.com/certportal/internal/domain"
)

// VerifyHandler serves the public certificate lookup.
type VerifyHandler struct {
	svc verification.Service
}

func NewVerifyHandler(svc verification.Service) *VerifyHandler { return &VerifyHandler{svc: svc} }

// Verify answers 200 {data: result} for found and pending certificates and
// 404 {message} when nothing was issued.
func (h *VerifyHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var q domain.VerificationQuery
	if err := decodeJSON(r, &q); err != nil {
		writeDomainError(w, r, err)
		return
	}
	res, err := h.svc.Verify(r.Context(), q)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DataEnvelope{Data: res})
}

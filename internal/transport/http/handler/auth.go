package handler

import (
	"net/http"

	"github.com/certportal/internal/application/auth"
	"github.com/certportal/internal/domain"
)

// AuthHandler handles operator sign-in.
type AuthHandler struct {
	svc auth.Service
}

func NewAuthHandler(svc auth.Service) *AuthHandler { return &AuthHandler{svc: svc} }

func (h *AuthHandler) FirebaseLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDToken string `json:"idToken"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeLoginError(w, r, err)
		return
	}
	res, err := h.svc.FirebaseLogin(r.Context(), req.IDToken)
	if err != nil {
		writeLoginError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LoginEnvelope{Status: "success", Redirect: res.Redirect, Bearer: res.Bearer})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.CredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeLoginError(w, r, err)
		return
	}
	res, err := h.svc.Login(r.Context(), req)
	if err != nil {
		writeLoginError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LoginEnvelope{Status: "success", Redirect: res.Redirect, Bearer: res.Bearer, Admin: res.Admin})
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req domain.CredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeLoginError(w, r, err)
		return
	}
	res, err := h.svc.Signup(r.Context(), req)
	if err != nil {
		writeLoginError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, LoginEnvelope{Status: "success", Redirect: res.Redirect, Bearer: res.Bearer, Admin: res.Admin})
}

// writeLoginError keeps the {status, message} shape the sign-in page expects.
func writeLoginError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, status, LoginEnvelope{Status: "error", Message: msg})
}

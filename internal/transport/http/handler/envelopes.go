package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/certportal/internal/domain"
)

// MessageEnvelope is the generic response wrapper. Every error body uses it.
type MessageEnvelope struct {
	Message string `json:"message"`
}

// DataEnvelope wraps a successful payload under "data".
type DataEnvelope struct {
	Data interface{} `json:"data"`
}

// LoginEnvelope is returned by every sign-in endpoint.
type LoginEnvelope struct {
	Status   string        `json:"status"`
	Message  string        `json:"message,omitempty"`
	Redirect string        `json:"redirect,omitempty"`
	Bearer   string        `json:"bearer,omitempty"`
	Admin    *domain.Admin `json:"admin,omitempty"`
}

// HealthEnvelope is the body of GET /health.
type HealthEnvelope struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Message: msg})
}

// statusFor maps a domain sentinel to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrBadRequest), errors.Is(err, domain.ErrRejected):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeDomainError writes err with the status of its sentinel. Unmapped
// errors are logged and answered with a generic message.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, status, "Internal server error")
		return
	}
	writeError(w, status, err.Error())
}

func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.Errorf(domain.ErrBadRequest, "Invalid request body")
	}
	return nil
}

package verification

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/certportal/internal/domain"
	"github.com/certportal/internal/pkg/validate"
)

type certificateStore interface {
	Get(ctx context.Context, email, event string) (*domain.Certificate, error)
}

type eventResolver interface {
	Resolve(ctx context.Context, idOrName string) (*domain.EventDescriptor, error)
}

type urlSigner interface {
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type ServiceDeps struct {
	Certificates certificateStore
	Events       eventResolver
	Storage      urlSigner
	URLTTL       time.Duration
}

type Service interface {
	// Verify looks up the certificate issued to q.Email for q.Event.
	// A missing certificate is reported as a domain.ErrNotFound error.
	Verify(ctx context.Context, q domain.VerificationQuery) (*domain.VerificationResult, error)
}

type service struct {
	certs  certificateStore
	events eventResolver
	store  urlSigner
	ttl    time.Duration
}

func NewService(d ServiceDeps) Service {
	ttl := d.URLTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &service{certs: d.Certificates, events: d.Events, store: d.Storage, ttl: ttl}
}

func (s *service) Verify(ctx context.Context, q domain.VerificationQuery) (*domain.VerificationResult, error) {
	email := strings.ToLower(strings.TrimSpace(q.Email))
	event := strings.TrimSpace(q.Event)
	if email == "" || event == "" {
		return nil, domain.Errorf(domain.ErrBadRequest, "Please fill in all required fields")
	}
	if !validate.Email(email) {
		return nil, domain.Errorf(domain.ErrBadRequest, "Please enter a valid email address")
	}
	ev, err := s.events.Resolve(ctx, event)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Errorf(domain.ErrBadRequest, "Invalid event selected")
		}
		return nil, err
	}

	c, err := s.certs.Get(ctx, email, ev.EventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			slog.Info("no certificate found", "email", email, "event", ev.EventID)
			return nil, domain.Errorf(domain.ErrNotFound,
				"No certificate found for this email and event combination. Please check your email address and event selection.")
		}
		return nil, err
	}

	res := &domain.VerificationResult{
		Status:        domain.VerificationPending,
		RecipientName: c.Name,
		EventName:     ev.Name,
	}
	if c.Status != domain.CertificateIssued || c.ObjectKey == "" {
		return res, nil
	}
	url, err := s.store.PresignedURL(ctx, c.ObjectKey, s.ttl)
	if err != nil {
		return nil, err
	}
	res.Status = domain.VerificationFound
	res.DownloadURL = url
	if c.IssuedAt != nil {
		res.IssuedAt = c.IssuedAt.UTC().Format(time.RFC3339)
	}
	slog.Info("certificate found", "email", email, "event", ev.EventID)
	return res, nil
}

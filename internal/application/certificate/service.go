package certificate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/certportal/internal/domain"
)

type certificateStore interface {
	Get(ctx context.Context, email, event string) (*domain.Certificate, error)
	ListByEvent(ctx context.Context, event string) ([]domain.Certificate, error)
	Delete(ctx context.Context, email, event string) error
}

type objectDeleter interface {
	Delete(ctx context.Context, key string) error
}

type eventResolver interface {
	Resolve(ctx context.Context, idOrName string) (*domain.EventDescriptor, error)
}

type Service interface {
	// List returns the certificates of an event the caller's role can see.
	List(ctx context.Context, role, event string) ([]domain.Certificate, error)
	// Revoke removes the rendered image and the record. Verification of the
	// pair reports not found afterwards.
	Revoke(ctx context.Context, email, event string) error
}

type service struct {
	certs   certificateStore
	objects objectDeleter
	events  eventResolver
}

func NewService(certs certificateStore, objects objectDeleter, events eventResolver) Service {
	return &service{certs: certs, objects: objects, events: events}
}

func (s *service) List(ctx context.Context, role, event string) ([]domain.Certificate, error) {
	ev, err := s.resolve(ctx, event)
	if err != nil {
		return nil, err
	}
	if !ev.VisibleTo(role) {
		return nil, domain.Errorf(domain.ErrForbidden, "You are not assigned to event %s", ev.Name)
	}
	certs, err := s.certs.ListByEvent(ctx, ev.EventID)
	if err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	if certs == nil {
		certs = []domain.Certificate{}
	}
	return certs, nil
}

func (s *service) Revoke(ctx context.Context, email, event string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	ev, err := s.resolve(ctx, event)
	if err != nil {
		return err
	}
	c, err := s.certs.Get(ctx, email, ev.EventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Errorf(domain.ErrNotFound, "No certificate for %s in %s", email, ev.Name)
		}
		return err
	}
	if c.ObjectKey != "" {
		if err := s.objects.Delete(ctx, c.ObjectKey); err != nil {
			return fmt.Errorf("delete certificate object: %w", err)
		}
	}
	if err := s.certs.Delete(ctx, email, ev.EventID); err != nil {
		return fmt.Errorf("delete certificate: %w", err)
	}
	slog.Info("certificate revoked", "email", email, "event", ev.EventID)
	return nil
}

func (s *service) resolve(ctx context.Context, event string) (*domain.EventDescriptor, error) {
	ev, err := s.events.Resolve(ctx, event)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Errorf(domain.ErrBadRequest, "Invalid event selected")
		}
		return nil, err
	}
	return ev, nil
}

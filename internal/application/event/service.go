package event

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"github.com/certportal/internal/domain"
	"github.com/certportal/internal/pkg/validate"
)

type eventStore interface {
	Put(ctx context.Context, e *domain.EventDescriptor) error
	PutIfAbsent(ctx context.Context, e *domain.EventDescriptor) (bool, error)
	Get(ctx context.Context, eventID string) (*domain.EventDescriptor, error)
	Scan(ctx context.Context) ([]domain.EventDescriptor, error)
}

type Service interface {
	// List returns the events visible to role, ordered by name.
	List(ctx context.Context, role string) ([]domain.EventDescriptor, error)
	// Resolve finds an event by ID, falling back to a case-insensitive name match.
	Resolve(ctx context.Context, idOrName string) (*domain.EventDescriptor, error)
	Upsert(ctx context.Context, eventID string, input domain.EventInput) (*domain.EventDescriptor, error)
	// Bootstrap seeds each name as an active event open to every role.
	// Existing events are left untouched.
	Bootstrap(ctx context.Context, names []string) error
	// ActiveNames lists the names of all active events.
	ActiveNames(ctx context.Context) ([]string, error)
}

type service struct {
	repo eventStore
}

func NewService(repo eventStore) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context, role string) ([]domain.EventDescriptor, error) {
	all, err := s.repo.Scan(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.EventDescriptor, 0, len(all))
	for i := range all {
		if all[i].VisibleTo(role) {
			out = append(out, all[i])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *service) Resolve(ctx context.Context, idOrName string) (*domain.EventDescriptor, error) {
	idOrName = strings.TrimSpace(idOrName)
	if idOrName == "" {
		return nil, domain.Errorf(domain.ErrNotFound, "event not found")
	}
	e, err := s.repo.Get(ctx, idOrName)
	if err == nil {
		return e, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	all, err := s.repo.Scan(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if strings.EqualFold(all[i].Name, idOrName) {
			return &all[i], nil
		}
	}
	return nil, domain.Errorf(domain.ErrNotFound, "event %q not found", idOrName)
}

func (s *service) Upsert(ctx context.Context, eventID string, input domain.EventInput) (*domain.EventDescriptor, error) {
	if strings.TrimSpace(eventID) == "" {
		return nil, domain.Errorf(domain.ErrBadRequest, "event id is required")
	}
	if err := validate.Struct(input); err != nil {
		return nil, domain.Errorf(domain.ErrBadRequest, "%s", err.Error())
	}
	e := &domain.EventDescriptor{
		EventID:       eventID,
		Name:          strings.TrimSpace(input.Name),
		Status:        input.Status,
		AssignedRoles: dedupe(input.AssignedRoles),
	}
	if err := s.repo.Put(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *service) Bootstrap(ctx context.Context, names []string) error {
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		created, err := s.repo.PutIfAbsent(ctx, &domain.EventDescriptor{
			EventID:       name,
			Name:          name,
			Status:        domain.EventActive,
			AssignedRoles: []string{domain.RoleAdmin, domain.RoleOrganizer, domain.RoleViewer},
		})
		if err != nil {
			return err
		}
		if created {
			slog.Info("seeded event", "event", name)
		}
	}
	return nil
}

func (s *service) ActiveNames(ctx context.Context) ([]string, error) {
	all, err := s.repo.Scan(ctx)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range all {
		if e.Status == domain.EventActive {
			names = append(names, e.Name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

package admin

import (
	"context"
	"sort"
	"strings"

	"github.com/certportal/internal/domain"
	"github.com/certportal/internal/pkg/validate"
)

const fieldRole = "role"

// RoleRequest changes an operator's role.
type RoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin organizer viewer"`
}

type Service interface {
	List(ctx context.Context) ([]domain.Admin, error)
	Get(ctx context.Context, email string) (*domain.Admin, error)
	// SetRole changes email's role. An admin cannot demote themselves.
	SetRole(ctx context.Context, actorEmail, email string, req RoleRequest) (*domain.Admin, error)
}

type adminStore interface {
	Get(ctx context.Context, email string) (*domain.Admin, error)
	Scan(ctx context.Context) ([]domain.Admin, error)
	Update(ctx context.Context, email string, updates map[string]interface{}) error
}

type service struct {
	repo adminStore
}

func NewService(repo adminStore) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context) ([]domain.Admin, error) {
	admins, err := s.repo.Scan(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(admins, func(i, j int) bool { return admins[i].Email < admins[j].Email })
	return admins, nil
}

func (s *service) Get(ctx context.Context, email string) (*domain.Admin, error) {
	return s.repo.Get(ctx, strings.ToLower(strings.TrimSpace(email)))
}

func (s *service) SetRole(ctx context.Context, actorEmail, email string, req RoleRequest) (*domain.Admin, error) {
	if err := validate.Struct(req); err != nil {
		return nil, domain.Errorf(domain.ErrBadRequest, "%s", err.Error())
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == strings.ToLower(actorEmail) && req.Role != domain.RoleAdmin {
		return nil, domain.Errorf(domain.ErrForbidden, "You cannot change your own role")
	}
	if err := s.repo.Update(ctx, email, map[string]interface{}{fieldRole: req.Role}); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, email)
}

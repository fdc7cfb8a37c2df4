package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/certportal/internal/domain"
	"github.com/certportal/internal/pkg/validate"
	"golang.org/x/crypto/bcrypt"
)

// DashboardPath is where a freshly signed-in operator is sent.
const DashboardPath = "/admin/dashboard"

type adminStore interface {
	Get(ctx context.Context, email string) (*domain.Admin, error)
	Create(ctx context.Context, a *domain.Admin) error
}

type identityVerifier interface {
	Verify(ctx context.Context, idToken string) (*domain.Identity, error)
}

type jwtSigner interface {
	Sign(email, role string) (string, error)
}

// ServiceDeps groups the auth service's collaborators.
type ServiceDeps struct {
	AdminRepo   adminStore
	Verifier    identityVerifier
	JWTProvider jwtSigner
	AdminEmails []string
}

// LoginResult is returned by every successful sign-in path.
type LoginResult struct {
	Bearer   string
	Redirect string
	Admin    *domain.Admin
}

type Service interface {
	// FirebaseLogin exchanges an identity-provider ID token for a portal bearer.
	// Unknown operators are provisioned on first sign-in.
	FirebaseLogin(ctx context.Context, idToken string) (*LoginResult, error)
	Signup(ctx context.Context, req domain.CredentialsRequest) (*LoginResult, error)
	Login(ctx context.Context, req domain.CredentialsRequest) (*LoginResult, error)
}

type service struct {
	admins          adminStore
	verifier        identityVerifier
	jwt             jwtSigner
	bootstrapAdmins map[string]bool
}

func NewService(d ServiceDeps) Service {
	boot := make(map[string]bool, len(d.AdminEmails))
	for _, e := range d.AdminEmails {
		boot[strings.ToLower(strings.TrimSpace(e))] = true
	}
	return &service{
		admins:          d.AdminRepo,
		verifier:        d.Verifier,
		jwt:             d.JWTProvider,
		bootstrapAdmins: boot,
	}
}

func (s *service) FirebaseLogin(ctx context.Context, idToken string) (*LoginResult, error) {
	if strings.TrimSpace(idToken) == "" {
		return nil, domain.Errorf(domain.ErrUnauthorized, "ID token is required")
	}
	ident, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return nil, domain.Errorf(domain.ErrUnauthorized, "Invalid or expired ID token")
		}
		return nil, err
	}
	email := normalizeEmail(ident.Email)
	if email == "" {
		return nil, domain.Errorf(domain.ErrUnauthorized, "ID token carries no email address")
	}
	// The email keys the operator record, so the provider must vouch for it.
	if !ident.EmailVerified {
		return nil, domain.Errorf(domain.ErrUnauthorized, "Please verify your email address before signing in")
	}

	a, err := s.admins.Get(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		a, err = s.provision(ctx, email, "", ident)
	}
	if err != nil {
		return nil, err
	}
	return s.issue(a)
}

func (s *service) Signup(ctx context.Context, req domain.CredentialsRequest) (*LoginResult, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validate.Struct(req); err != nil {
		return nil, domain.Errorf(domain.ErrBadRequest, "%s", err.Error())
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	a, err := s.provision(ctx, req.Email, string(hash), &domain.Identity{
		Email:    req.Email,
		Provider: domain.ProviderLocal,
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.Errorf(domain.ErrConflict, "Email already registered")
		}
		return nil, err
	}
	return s.issue(a)
}

func (s *service) Login(ctx context.Context, req domain.CredentialsRequest) (*LoginResult, error) {
	email := normalizeEmail(req.Email)
	a, err := s.admins.Get(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Errorf(domain.ErrUnauthorized, "Invalid credentials")
		}
		return nil, err
	}
	if a.PasswordHash == "" {
		return nil, domain.Errorf(domain.ErrUnauthorized, "Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(req.Password)); err != nil {
		return nil, domain.Errorf(domain.ErrUnauthorized, "Invalid credentials")
	}
	return s.issue(a)
}

// provision creates an operator account. Only a provider-verified email
// listed in ADMIN_EMAILS starts as admin; local signups and everyone else
// start as viewers.
func (s *service) provision(ctx context.Context, email, passwordHash string, ident *domain.Identity) (*domain.Admin, error) {
	role := domain.RoleViewer
	if s.bootstrapAdmins[email] && ident.Provider != domain.ProviderLocal && ident.EmailVerified {
		role = domain.RoleAdmin
	}
	now := time.Now().UTC()
	a := &domain.Admin{
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		Provider:     ident.Provider,
		Subject:      ident.Subject,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.admins.Create(ctx, a); err != nil {
		// Lost a race with a concurrent first sign-in of the same operator.
		if errors.Is(err, domain.ErrConflict) && ident.Provider != domain.ProviderLocal {
			return s.admins.Get(ctx, email)
		}
		return nil, err
	}
	slog.Info("provisioned operator", "email", email, "role", role, "provider", ident.Provider)
	return a, nil
}

func (s *service) issue(a *domain.Admin) (*LoginResult, error) {
	bearer, err := s.jwt.Sign(a.Email, a.Role)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Bearer: bearer, Redirect: DashboardPath, Admin: a}, nil
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

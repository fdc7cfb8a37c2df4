package http

import (
	"context"
	"time"

	"github.com/certportal/internal/application/render"
	"github.com/certportal/internal/domain"
)

// CertificateRepository is the minimal interface the router requires from a certificate store.
type CertificateRepository interface {
	Put(ctx context.Context, c *domain.Certificate) error
	Get(ctx context.Context, email, event string) (*domain.Certificate, error)
	MarkIssued(ctx context.Context, email, event, objectKey string, issuedAt time.Time) error
	Delete(ctx context.Context, email, event string) error
	// ListByEvent queries the event GSI, newest first.
	ListByEvent(ctx context.Context, event string) ([]domain.Certificate, error)
	Stats(ctx context.Context, since time.Time) (*domain.CertificateStats, error)
}

// JobRepository is the minimal interface the router requires from a generation-job store.
type JobRepository interface {
	Put(ctx context.Context, j *domain.GenerationJob) error
	Get(ctx context.Context, jobID string) (*domain.GenerationJob, error)
	Update(ctx context.Context, jobID string, updates map[string]interface{}) error
}

// UploadRepository is the minimal interface the router requires from a recipient-upload store.
type UploadRepository interface {
	Put(ctx context.Context, u *domain.RecipientUpload) error
	Get(ctx context.Context, uploadID string) (*domain.RecipientUpload, error)
	Latest(ctx context.Context, adminEmail string) (*domain.RecipientUpload, error)
}

// EventRepository is the minimal interface the router requires from an event store.
type EventRepository interface {
	Put(ctx context.Context, e *domain.EventDescriptor) error
	PutIfAbsent(ctx context.Context, e *domain.EventDescriptor) (bool, error)
	Get(ctx context.Context, eventID string) (*domain.EventDescriptor, error)
	Scan(ctx context.Context) ([]domain.EventDescriptor, error)
}

// AdminRepository is the minimal interface the router requires from an operator store.
type AdminRepository interface {
	Get(ctx context.Context, email string) (*domain.Admin, error)
	Create(ctx context.Context, a *domain.Admin) error
	Scan(ctx context.Context) ([]domain.Admin, error)
	Update(ctx context.Context, email string, updates map[string]interface{}) error
}

// ObjectStore is the minimal interface the router requires from an object storage backend.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// IdentityVerifier checks ID tokens minted by the configured identity provider.
type IdentityVerifier interface {
	Verify(ctx context.Context, idToken string) (*domain.Identity, error)
}

// CertificateRenderer draws a recipient name onto a template.
type CertificateRenderer interface {
	Render(req render.Request) ([]byte, error)
}

// HealthProbe reports whether the datastore is reachable.
type HealthProbe interface {
	Ping(ctx context.Context) error
}

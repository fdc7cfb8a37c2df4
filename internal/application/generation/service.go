// Package generation stages recipient lists and runs bulk certificate jobs.
package generation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/certportal/internal/application/recipients"
	"github.com/certportal/internal/application/render"
	"github.com/certportal/internal/domain"
	"github.com/certportal/internal/infrastructure/mail"
	"github.com/certportal/internal/infrastructure/sns"
	"github.com/certportal/internal/pkg/id"
	"golang.org/x/sync/errgroup"
)

type uploadStore interface {
	Put(ctx context.Context, u *domain.RecipientUpload) error
	Get(ctx context.Context, uploadID string) (*domain.RecipientUpload, error)
	Latest(ctx context.Context, adminEmail string) (*domain.RecipientUpload, error)
}

type jobStore interface {
	Put(ctx context.Context, j *domain.GenerationJob) error
	Get(ctx context.Context, jobID string) (*domain.GenerationJob, error)
	Update(ctx context.Context, jobID string, updates map[string]interface{}) error
}

type certificateStore interface {
	Put(ctx context.Context, c *domain.Certificate) error
	MarkIssued(ctx context.Context, email, event, objectKey string, issuedAt time.Time) error
	Delete(ctx context.Context, email, event string) error
}

type objectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
}

type eventResolver interface {
	Resolve(ctx context.Context, idOrName string) (*domain.EventDescriptor, error)
}

type certificateRenderer interface {
	Render(req render.Request) ([]byte, error)
}

// ServiceDeps groups the generation service's collaborators and settings.
type ServiceDeps struct {
	Uploads      uploadStore
	Jobs         jobStore
	Certificates certificateStore
	Storage      objectStore
	Events       eventResolver
	Renderer     certificateRenderer
	Mailer       mail.Mailer
	Publisher    sns.JobPublisher

	Workers            int
	TemplateRequired   bool
	DefaultTemplateKey string
	PublicBaseURL      string
	MailSubject        string
	UploadTTL          time.Duration
}

type UploadInput struct {
	AdminEmail string
	EventName  string
	Filename   string
	Data       []byte
}

type UploadResult struct {
	Message  string `json:"message"`
	UploadID string `json:"upload_id"`
	Total    int    `json:"total"`
}

type GenerateInput struct {
	AdminEmail   string
	AdminRole    string
	EventName    string
	UploadID     string
	Style        domain.TextStyle
	Anchor       domain.Anchor
	Template     []byte
	TemplateName string
}

type GenerateResult struct {
	Message string `json:"message"`
	Total   int    `json:"total"`
	JobID   string `json:"job_id"`
}

type Service interface {
	// UploadRecipients parses and stages a recipient list for a later StartBulk.
	UploadRecipients(ctx context.Context, in UploadInput) (*UploadResult, error)
	// StartBulk accepts a generation job and runs it in the background.
	// The result confirms acceptance, not completion.
	StartBulk(ctx context.Context, in GenerateInput) (*GenerateResult, error)
	GetJob(ctx context.Context, jobID string) (*domain.GenerationJob, error)
	// Shutdown waits for running jobs to finish. When ctx expires first the
	// jobs are cancelled and marked failed.
	Shutdown(ctx context.Context) error
}

type service struct {
	ServiceDeps

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewService(d ServiceDeps) Service {
	if d.Workers <= 0 {
		d.Workers = 1
	}
	if d.UploadTTL <= 0 {
		d.UploadTTL = 24 * time.Hour
	}
	if d.MailSubject == "" {
		d.MailSubject = "Your Certificate"
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &service{ServiceDeps: d, baseCtx: ctx, cancel: cancel}
}

func (s *service) UploadRecipients(ctx context.Context, in UploadInput) (*UploadResult, error) {
	if in.Filename == "" || len(in.Data) == 0 {
		return nil, domain.Errorf(domain.ErrBadRequest, "No CSV file uploaded")
	}
	list, err := recipients.Parse(in.Filename, bytes.NewReader(in.Data))
	if err != nil {
		return nil, err
	}

	uploadID := id.New()
	key := recipientListKey(uploadID, in.Filename)
	if err := s.Storage.Put(ctx, key, in.Data, ""); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	u := &domain.RecipientUpload{
		UploadID:   uploadID,
		AdminEmail: in.AdminEmail,
		EventName:  in.EventName,
		Filename:   sanitizeFilename(in.Filename),
		ObjectKey:  key,
		Total:      len(list),
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.UploadTTL).Unix(),
	}
	if err := s.Uploads.Put(ctx, u); err != nil {
		return nil, err
	}
	slog.Info("recipient list staged", "upload_id", uploadID, "admin", in.AdminEmail, "total", len(list))
	return &UploadResult{
		Message:  fmt.Sprintf("Successfully parsed %d participants", len(list)),
		UploadID: uploadID,
		Total:    len(list),
	}, nil
}

func (s *service) StartBulk(ctx context.Context, in GenerateInput) (*GenerateResult, error) {
	upload, err := s.resolveUpload(ctx, in)
	if err != nil {
		return nil, err
	}
	eventName := in.EventName
	if eventName == "" {
		eventName = upload.EventName
	}
	ev, err := s.Events.Resolve(ctx, eventName)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Errorf(domain.ErrBadRequest, "Invalid event selected")
		}
		return nil, err
	}
	if !ev.VisibleTo(in.AdminRole) {
		return nil, domain.Errorf(domain.ErrForbidden, "You are not assigned to event %s", ev.Name)
	}

	raw, err := s.Storage.Get(ctx, upload.ObjectKey)
	if err != nil {
		return nil, err
	}
	list, err := recipients.Parse(upload.Filename, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	jobID := id.New()
	tpl, err := s.loadTemplate(ctx, jobID, in)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	msg := fmt.Sprintf("Certificate generation started for %d participants", len(list))
	job := &domain.GenerationJob{
		JobID:     jobID,
		EventName: ev.Name,
		UploadID:  upload.UploadID,
		CreatedBy: in.AdminEmail,
		Status:    domain.JobQueued,
		Total:     len(list),
		Message:   msg,
		Log:       []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	// Pending rows go first so a queued job always has its recipients on record.
	if err := s.markPending(ctx, jobID, ev.EventID, list, now); err != nil {
		return nil, err
	}
	if err := s.Jobs.Put(ctx, job); err != nil {
		s.clearPending(ctx, ev.EventID, recipientEmails(list))
		return nil, err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(s.baseCtx, job, ev, list, tpl, in)
	}()

	slog.Info("generation job accepted", "job_id", jobID, "event", ev.EventID, "total", len(list))
	return &GenerateResult{Message: msg, Total: len(list), JobID: jobID}, nil
}

func (s *service) GetJob(ctx context.Context, jobID string) (*domain.GenerationJob, error) {
	return s.Jobs.Get(ctx, jobID)
}

func (s *service) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	defer s.cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *service) resolveUpload(ctx context.Context, in GenerateInput) (*domain.RecipientUpload, error) {
	var (
		u   *domain.RecipientUpload
		err error
	)
	if in.UploadID != "" {
		u, err = s.Uploads.Get(ctx, in.UploadID)
	} else {
		u, err = s.Uploads.Latest(ctx, in.AdminEmail)
	}
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Errorf(domain.ErrBadRequest, "Please upload a CSV file first")
		}
		return nil, err
	}
	if u.AdminEmail != in.AdminEmail && in.AdminRole != domain.RoleAdmin {
		return nil, domain.Errorf(domain.ErrForbidden, "Recipient list belongs to another operator")
	}
	return u, nil
}

// loadTemplate decodes the uploaded template, keeping a copy next to the job,
// or falls back to the predefined template.
func (s *service) loadTemplate(ctx context.Context, jobID string, in GenerateInput) (image.Image, error) {
	if len(in.Template) > 0 {
		img, err := render.DecodeTemplate(in.Template)
		if err != nil {
			return nil, err
		}
		if err := s.Storage.Put(ctx, jobTemplateKey(jobID, in.TemplateName), in.Template, ""); err != nil {
			return nil, err
		}
		return img, nil
	}
	if s.TemplateRequired {
		return nil, domain.Errorf(domain.ErrBadRequest, "Please upload a certificate template")
	}
	data, err := s.Storage.Get(ctx, s.DefaultTemplateKey)
	if err != nil {
		return nil, fmt.Errorf("load default template %s: %w", s.DefaultTemplateKey, err)
	}
	return render.DecodeTemplate(data)
}

// markPending writes a pending certificate row per recipient so verification
// can report the job as in flight. On failure the rows it managed to write are
// removed again.
func (s *service) markPending(ctx context.Context, jobID, eventID string, list []domain.Recipient, now time.Time) error {
	var (
		mu      sync.Mutex
		written []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.Workers)
	for _, r := range list {
		r := r
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			err := s.Certificates.Put(gctx, &domain.Certificate{
				Email:     r.Email,
				Event:     eventID,
				Name:      r.Name,
				Status:    domain.CertificatePending,
				JobID:     jobID,
				CreatedAt: now,
			})
			if err != nil {
				return err
			}
			mu.Lock()
			written = append(written, r.Email)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.clearPending(ctx, eventID, written)
		return err
	}
	return nil
}

// clearPending removes the pending rows of a job that never got queued.
func (s *service) clearPending(ctx context.Context, eventID string, emails []string) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()
	for _, email := range emails {
		if err := s.Certificates.Delete(cctx, email, eventID); err != nil {
			slog.Warn("clear pending certificate", "email", email, "event", eventID, "err", err)
		}
	}
}

func recipientEmails(list []domain.Recipient) []string {
	out := make([]string, len(list))
	for i, r := range list {
		out[i] = r.Email
	}
	return out
}

package generation

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/certportal/internal/application/render"
	"github.com/certportal/internal/domain"
	"github.com/certportal/internal/infrastructure/mail"
	"github.com/certportal/internal/infrastructure/sns"
	"golang.org/x/sync/errgroup"
)

// persistTimeout bounds job writes made after the run context is gone.
const persistTimeout = 10 * time.Second

func (s *service) run(ctx context.Context, job *domain.GenerationJob, ev *domain.EventDescriptor,
	list []domain.Recipient, tpl image.Image, in GenerateInput) {
	log := slog.With("job_id", job.JobID, "event", ev.EventID)
	p := newProgress(len(list))
	s.persist(ctx, job.JobID, map[string]interface{}{"status": domain.JobRunning})

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.Workers)
	for _, r := range list {
		r := r
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			line, ok, emailed := s.issue(gctx, job.JobID, ev, r, tpl, in)
			snap, seq := p.record(line, ok, emailed)
			p.flush(snap, seq, func(u map[string]interface{}) { s.persist(ctx, job.JobID, u) })
			return nil
		})
	}
	runErr := g.Wait()

	processed, failed, emailed := p.counts()
	final := p.snapshot()
	status := domain.JobCompleted
	msg := fmt.Sprintf("Generated %d of %d certificates", processed, len(list))
	if failed > 0 {
		msg += fmt.Sprintf(" (%d failed)", failed)
	}
	if runErr != nil {
		status = domain.JobFailed
		msg = "Generation interrupted: " + runErr.Error()
	}
	final["status"] = status
	final["message"] = msg

	// The run context may already be cancelled; the final state still has to land.
	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()
	s.persist(fctx, job.JobID, final)
	if err := s.Publisher.PublishJobFinished(fctx, sns.JobEvent{
		JobID:     job.JobID,
		EventName: ev.Name,
		Status:    status,
		Total:     len(list),
		Processed: processed,
		Failed:    failed,
	}); err != nil {
		log.Warn("publish job event", "err", err)
	}
	log.Info("generation job finished", "status", status, "processed", processed, "failed", failed, "emailed", emailed)
}

// issue renders, stores and mails one certificate. It reports the log line,
// whether the certificate was issued, and whether the e-mail went out.
func (s *service) issue(ctx context.Context, jobID string, ev *domain.EventDescriptor, r domain.Recipient,
	tpl image.Image, in GenerateInput) (string, bool, bool) {
	link := verifyURL(s.PublicBaseURL, r.Email, ev.EventID)
	png, err := s.Renderer.Render(render.Request{
		Template:  tpl,
		Name:      r.Name,
		Style:     in.Style,
		Anchor:    in.Anchor,
		VerifyURL: link,
	})
	if err != nil {
		slog.Warn("render certificate", "job_id", jobID, "email", r.Email, "err", err)
		return fmt.Sprintf("✗ Failed to render certificate for %s", r.Name), false, false
	}

	key := certificateKey(ev.EventID, r.Email)
	if err := s.Storage.Put(ctx, key, png, "image/png"); err != nil {
		slog.Warn("store certificate", "job_id", jobID, "email", r.Email, "err", err)
		return fmt.Sprintf("✗ Failed to store certificate for %s", r.Name), false, false
	}
	if err := s.Certificates.MarkIssued(ctx, r.Email, ev.EventID, key, time.Now()); err != nil {
		slog.Warn("mark certificate issued", "job_id", jobID, "email", r.Email, "err", err)
		return fmt.Sprintf("✗ Failed to record certificate for %s", r.Name), false, false
	}

	err = s.Mailer.Send(ctx, mail.Message{
		To:      r.Email,
		ToName:  r.Name,
		Subject: s.MailSubject,
		Text:    emailBody(r.FirstName(), ev.Name, link),
		Attachments: []mail.Attachment{{
			Filename:    fmt.Sprintf("%s_%s.png", sanitizeFilename(ev.EventID), sanitizeFilename(r.Name)),
			ContentType: "image/png",
			Content:     png,
		}},
	})
	if err != nil {
		slog.Warn("send certificate email", "job_id", jobID, "email", r.Email, "err", err)
		return fmt.Sprintf("⚠ Generated certificate for %s, email not sent", r.Name), true, false
	}
	return fmt.Sprintf("✓ Generated certificate for %s", r.Name), true, true
}

func (s *service) persist(ctx context.Context, jobID string, updates map[string]interface{}) {
	if err := s.Jobs.Update(ctx, jobID, updates); err != nil {
		slog.Warn("persist job progress", "job_id", jobID, "err", err)
	}
}

func emailBody(firstName, eventName, link string) string {
	return fmt.Sprintf(`Hello %s,

Thank you for participating in %s.
Attached is your certificate.

To verify or download your certificate, visit: %s
`, firstName, eventName, link)
}

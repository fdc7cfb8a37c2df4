package mail

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/certportal/internal/config"
)

// Attachment is a file sent alongside a message.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Message is one outgoing email.
type Message struct {
	To          string
	ToName      string
	Subject     string
	Text        string
	HTML        string
	Attachments []Attachment
}

// Mailer sends emails.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New picks the backend named by MAIL_BACKEND. Unknown names fall back to
// the console backend so a misconfigured dev box never mails real people.
func New(cfg *config.Config) Mailer {
	switch cfg.MailBackend {
	case "smtp":
		return NewSMTP(cfg)
	case "sendgrid":
		return NewSendgrid(cfg.SendgridAPIKey, cfg.SMTPFrom)
	case "console", "":
		return NewConsole(nil)
	default:
		slog.Warn("unknown mail backend, using console", "backend", cfg.MailBackend)
		return NewConsole(nil)
	}
}

func validate(msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("mail: empty recipient")
	}
	if msg.Text == "" && msg.HTML == "" && len(msg.Attachments) == 0 {
		return fmt.Errorf("mail: message to %s has no content", msg.To)
	}
	return nil
}

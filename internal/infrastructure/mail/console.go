package mail

import (
	"context"
	"log/slog"
	"sync"
)

// Console logs messages instead of sending them and keeps a copy of each.
type Console struct {
	logger *slog.Logger

	mu   sync.Mutex
	sent []Message
}

func NewConsole(logger *slog.Logger) *Console {
	if logger == nil {
		logger = slog.Default()
	}
	return &Console{logger: logger}
}

func (c *Console) Send(_ context.Context, msg Message) error {
	if err := validate(msg); err != nil {
		return err
	}
	names := make([]string, 0, len(msg.Attachments))
	for _, a := range msg.Attachments {
		names = append(names, a.Filename)
	}
	c.logger.Info("email", "to", msg.To, "subject", msg.Subject, "attachments", names)

	c.mu.Lock()
	c.sent = append(c.sent, msg)
	c.mu.Unlock()
	return nil
}

// Sent returns a copy of every message accepted so far.
func (c *Console) Sent() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.sent))
	copy(out, c.sent)
	return out
}

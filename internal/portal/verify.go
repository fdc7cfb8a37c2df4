package portal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

type PanelKind int

const (
	PanelFound PanelKind = iota + 1
	PanelPending
	PanelNotFound
	PanelFailure
	PanelNetworkError
)

// Panel is the rendered outcome of one verification.
type Panel struct {
	Kind        PanelKind
	Name        string
	Event       string
	IssuedAt    string
	DownloadURL string
	Message     string
}

// Lines renders the panel as the recipient sees it.
func (p Panel) Lines() []string {
	switch p.Kind {
	case PanelFound:
		return []string{
			fmt.Sprintf("✅ Certificate found for %s", p.Name),
			fmt.Sprintf("Event: %s · Issued: %s", p.Event, p.IssuedAt),
			"📥 Download Certificate: " + p.DownloadURL,
		}
	case PanelPending:
		return []string{fmt.Sprintf("⏳ Certificate for %s is still being generated. Please check back shortly.", p.Name)}
	case PanelNotFound:
		return []string{"❌ Certificate not found"}
	case PanelNetworkError:
		return []string{"❌ Network error"}
	default:
		return []string{"❌ " + p.Message}
	}
}

func (p Panel) String() string { return strings.Join(p.Lines(), "\n") }

const verifyLabel = "🔍 Verify & Get Certificate"

// Verifier is the public lookup form. Its button is disabled while a query
// is outstanding and gets its original label back on every exit.
type Verifier struct {
	client *Client

	mu     sync.Mutex
	button Control
}

func NewVerifier(client *Client) *Verifier {
	return &Verifier{client: client, button: Control{Label: verifyLabel}}
}

// Button returns the current state of the submit control.
func (v *Verifier) Button() Control {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.button
}

// Verify runs one lookup. Backend and transport outcomes come back as a
// Panel; the error is reserved for requests that were never sent.
func (v *Verifier) Verify(ctx context.Context, email, eventID string) (Panel, error) {
	email, eventID = strings.TrimSpace(email), strings.TrimSpace(eventID)
	var missing []string
	if email == "" {
		missing = append(missing, "email")
	}
	if eventID == "" {
		missing = append(missing, "event")
	}
	if len(missing) > 0 {
		return Panel{}, &MissingFieldsError{Fields: missing}
	}

	v.mu.Lock()
	if v.button.Disabled {
		v.mu.Unlock()
		return Panel{}, ErrBusy
	}
	original := v.button.Label
	v.button = Control{Label: "🔄 Verifying...", Disabled: true}
	v.mu.Unlock()
	defer func() {
		v.mu.Lock()
		v.button = Control{Label: original}
		v.mu.Unlock()
	}()

	data, err := v.client.Verify(ctx, email, eventID)
	if err != nil {
		return errorPanel(err), nil
	}
	if data.Status == "pending" {
		return Panel{Kind: PanelPending, Name: data.Name, Event: data.Event}, nil
	}
	return Panel{
		Kind:        PanelFound,
		Name:        data.Name,
		Event:       data.Event,
		IssuedAt:    data.IssuedAt,
		DownloadURL: data.DownloadURL,
	}, nil
}

func errorPanel(err error) Panel {
	var apiErr *APIError
	var netErr *NetworkError
	switch {
	case errors.As(err, &netErr):
		return Panel{Kind: PanelNetworkError, Message: "Network error"}
	case errors.As(err, &apiErr) && apiErr.Status == 404:
		return Panel{Kind: PanelNotFound, Message: apiErr.Message}
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return Panel{Kind: PanelFailure, Message: apiErr.Message}
	default:
		return Panel{Kind: PanelFailure, Message: "Unexpected error"}
	}
}

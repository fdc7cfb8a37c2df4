package stats

import (
	"context"
	"time"

	"github.com/certportal/internal/domain"
)

// recentWindow is how far back Summary.Recent counts issued certificates.
const recentWindow = 7 * 24 * time.Hour

type certificateStats interface {
	Stats(ctx context.Context, since time.Time) (*domain.CertificateStats, error)
}

type eventLister interface {
	ActiveNames(ctx context.Context) ([]string, error)
}

// Summary is the payload of GET /stats.
type Summary struct {
	AvailableEvents []string            `json:"available_events"`
	Total           int                 `json:"total"`
	ByEvent         []domain.EventCount `json:"by_event"`
	Recent          int                 `json:"recent"`
	ServiceStatus   string              `json:"service_status"`
}

type Service interface {
	Summary(ctx context.Context) (*Summary, error)
}

type service struct {
	certs  certificateStats
	events eventLister
	now    func() time.Time
}

func NewService(certs certificateStats, events eventLister) Service {
	return &service{certs: certs, events: events, now: time.Now}
}

func (s *service) Summary(ctx context.Context) (*Summary, error) {
	names, err := s.events.ActiveNames(ctx)
	if err != nil {
		return nil, err
	}
	st, err := s.certs.Stats(ctx, s.now().Add(-recentWindow))
	if err != nil {
		return nil, err
	}
	if names == nil {
		names = []string{}
	}
	byEvent := st.ByEvent
	if byEvent == nil {
		byEvent = []domain.EventCount{}
	}
	return &Summary{
		AvailableEvents: names,
		Total:           st.Total,
		ByEvent:         byEvent,
		Recent:          st.Recent,
		ServiceStatus:   "running",
	}, nil
}

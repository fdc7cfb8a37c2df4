package domain

import "time"

// Certificate statuses. A row is written as pending when a job accepts the
// recipient and flipped to issued once the rendered image is stored.
const (
	CertificatePending = "pending"
	CertificateIssued  = "issued"
)

// Certificate is keyed by (email, event).
type Certificate struct {
	Email     string     `json:"email" dynamodbav:"email"`
	Event     string     `json:"event" dynamodbav:"event"`
	Name      string     `json:"name" dynamodbav:"name"`
	ObjectKey string     `json:"-" dynamodbav:"object_key"`
	Status    string     `json:"status" dynamodbav:"status"`
	JobID     string     `json:"job_id" dynamodbav:"job_id"`
	IssuedAt  *time.Time `json:"issued_at,omitempty" dynamodbav:"issued_at"`
	CreatedAt time.Time  `json:"created" dynamodbav:"created_at"`
}

// EventCount is one row of the per-event certificate breakdown.
type EventCount struct {
	Event string `json:"event"`
	Count int    `json:"count"`
}

// CertificateStats summarises issued certificates.
type CertificateStats struct {
	Total   int          `json:"total"`
	ByEvent []EventCount `json:"by_event"`
	Recent  int          `json:"recent"`
}

package domain

const (
	VerificationFound    = "found"
	VerificationPending  = "pending"
	VerificationNotFound = "not_found"
)

type VerificationQuery struct {
	Email string `json:"email"`
	Event string `json:"event"`
}

// VerificationResult is the answer to a VerificationQuery. Optional fields are
// only set when Status is found (or pending, for the name).
type VerificationResult struct {
	Status        string `json:"status"`
	RecipientName string `json:"name,omitempty"`
	EventName     string `json:"event,omitempty"`
	DownloadURL   string `json:"download_url,omitempty"`
	IssuedAt      string `json:"issued_at,omitempty"`
}

package domain

import "time"

// Recipient is one parsed row of a recipient list.
type Recipient struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Event     string `json:"event"`
	Date      string `json:"date,omitempty"`
	Venue     string `json:"venue,omitempty"`
	Organizer string `json:"organizer,omitempty"`
}

// FirstName returns the first whitespace-separated part of the name.
func (r Recipient) FirstName() string {
	for i, c := range r.Name {
		if c == ' ' || c == '\t' {
			return r.Name[:i]
		}
	}
	return r.Name
}

// RecipientUpload is a recipient list staged by upload-csv and consumed by
// generate-bulk.
type RecipientUpload struct {
	UploadID   string    `json:"upload_id" dynamodbav:"upload_id"`
	AdminEmail string    `json:"admin_email" dynamodbav:"admin_email"`
	EventName  string    `json:"event_name" dynamodbav:"event_name"`
	Filename   string    `json:"filename" dynamodbav:"filename"`
	ObjectKey  string    `json:"-" dynamodbav:"object_key"`
	Total      int       `json:"total" dynamodbav:"total"`
	CreatedAt  time.Time `json:"created" dynamodbav:"created_at"`
	ExpiresAt  int64     `json:"-" dynamodbav:"expires_at,omitempty"` // unix seconds, DynamoDB TTL
}

package domain

import "time"

const (
	RoleAdmin     = "admin"
	RoleOrganizer = "organizer"
	RoleViewer    = "viewer"
)

const (
	ProviderLocal    = "local"
	ProviderFirebase = "firebase"
	ProviderGoogle   = "google"
)

// Admin is an operator account of the portal, keyed by lower-cased email.
type Admin struct {
	Email        string    `json:"email" dynamodbav:"email"`
	PasswordHash string    `json:"-" dynamodbav:"password_hash"`
	Role         string    `json:"role" dynamodbav:"role"`
	Provider     string    `json:"provider" dynamodbav:"provider"`
	Subject      string    `json:"-" dynamodbav:"subject"`
	CreatedAt    time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CredentialsRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// Identity is what an external identity provider vouches for.
type Identity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Provider      string
}

package firebase

import (
	"context"
	"fmt"
	"log/slog"

	fb "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/certportal/internal/domain"
	"google.golang.org/api/option"
)

// Verifier checks Firebase ID tokens produced by the client-side sign-in popup.
type Verifier struct {
	client *auth.Client
}

// NewVerifier initialises the Firebase admin SDK. An empty credentialsFile
// falls back to application default credentials.
func NewVerifier(ctx context.Context, credentialsFile string) (*Verifier, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	} else {
		slog.Warn("FIREBASE_CREDENTIALS_FILE not set, using application default credentials")
	}
	app, err := fb.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase auth: %w", err)
	}
	return &Verifier{client: client}, nil
}

// Verify validates idToken and returns the identity it asserts.
// Returns a domain.ErrUnauthorized-wrapped error if the token is invalid.
func (v *Verifier) Verify(ctx context.Context, idToken string) (*domain.Identity, error) {
	tok, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("invalid firebase token: %w", domain.ErrUnauthorized)
	}
	email, _ := tok.Claims["email"].(string)
	verified, _ := tok.Claims["email_verified"].(bool)
	return &domain.Identity{
		Subject:       tok.UID,
		Email:         email,
		EmailVerified: verified,
		Provider:      domain.ProviderFirebase,
	}, nil
}

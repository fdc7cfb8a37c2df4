package portal

import (
	"context"
	"errors"
	"strings"
)

// AuthProvider signs the operator in with a third-party identity provider
// and returns the provider's ID token.
type AuthProvider interface {
	SignIn(ctx context.Context, provider string) (idToken string, err error)
}

// ProviderError is a failure reported by the identity provider.
type ProviderError struct {
	Code    string
	Message string
}

func (e *ProviderError) Error() string { return ProviderMessage(e) }

var providerMessages = map[string]string{
	"auth/popup-closed-by-user": "Sign-in cancelled. Please try again.",
	"auth/popup-blocked":        "Pop-up blocked! Please allow pop-ups for this site and try again.",
	"auth/unauthorized-domain":  "This domain is not authorized. Please contact administrator.",
	"auth/internal-error":       "Authentication error. Please ensure localhost is authorized in Firebase Console.",
	"auth/email-already-in-use": "This email is already registered. Please login instead.",
	"auth/weak-password":        "Password is too weak. Please use at least 6 characters.",
	"auth/invalid-email":        "Invalid email address.",
	"auth/user-not-found":       "No account found with this email. Please sign up first.",
	"auth/wrong-password":       "Incorrect password. Please try again.",
	"auth/too-many-requests":    "Too many failed attempts. Please try again later.",
}

// ProviderMessage maps a provider error code to the text shown to the
// operator, falling back to the raw provider message.
func ProviderMessage(e *ProviderError) string {
	if msg, ok := providerMessages[e.Code]; ok {
		return msg
	}
	raw := e.Message
	if raw == "" {
		raw = e.Code
	}
	return "Sign-in failed: " + raw
}

// StaticTokenProvider returns a token obtained out of band, for example from
// a flag or an environment variable.
type StaticTokenProvider struct {
	Token string
}

func (p StaticTokenProvider) SignIn(_ context.Context, _ string) (string, error) {
	if strings.TrimSpace(p.Token) == "" {
		return "", &ProviderError{Code: "auth/missing-token", Message: "no ID token supplied"}
	}
	return p.Token, nil
}

// Login signs in through auth and exchanges the ID token for a portal bearer,
// which the client keeps. It returns the landing route the backend names.
func Login(ctx context.Context, client *Client, auth AuthProvider, provider string) (string, error) {
	idToken, err := auth.SignIn(ctx, provider)
	if err != nil {
		var pe *ProviderError
		if errors.As(err, &pe) {
			return "", pe
		}
		return "", &ProviderError{Message: err.Error()}
	}
	return client.FirebaseLogin(ctx, idToken)
}

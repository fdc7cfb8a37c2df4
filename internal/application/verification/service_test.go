package verification

import (
	"context"
	"testing"
	"time"

	"github.com/certportal/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCertStore struct{ mock.Mock }

func (m *mockCertStore) Get(ctx context.Context, email, event string) (*domain.Certificate, error) {
	args := m.Called(ctx, email, event)
	if c, _ := args.Get(0).(*domain.Certificate); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockEvents struct{ mock.Mock }

func (m *mockEvents) Resolve(ctx context.Context, idOrName string) (*domain.EventDescriptor, error) {
	args := m.Called(ctx, idOrName)
	if e, _ := args.Get(0).(*domain.EventDescriptor); e != nil {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockSigner struct{ mock.Mock }

func (m *mockSigner) PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Error(1)
}

func newSvc(c *mockCertStore, e *mockEvents, s *mockSigner) Service {
	return NewService(ServiceDeps{Certificates: c, Events: e, Storage: s, URLTTL: 10 * time.Minute})
}

var pyEvent = &domain.EventDescriptor{EventID: "py", Name: "PythonWorkshop"}

func TestVerify_InputValidation(t *testing.T) {
	events := &mockEvents{}
	events.On("Resolve", mock.Anything, "Nope").Return(nil, domain.ErrNotFound)
	svc := newSvc(nil, events, nil)

	cases := []struct {
		q    domain.VerificationQuery
		want string
	}{
		{domain.VerificationQuery{Email: " ", Event: "py"}, "Please fill in all required fields"},
		{domain.VerificationQuery{Email: "a@b.com"}, "Please fill in all required fields"},
		{domain.VerificationQuery{Email: "a@b", Event: "py"}, "Please enter a valid email address"},
		{domain.VerificationQuery{Email: "a@b.com", Event: "Nope"}, "Invalid event selected"},
	}
	for _, tc := range cases {
		_, err := svc.Verify(context.Background(), tc.q)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrBadRequest)
		assert.Equal(t, tc.want, err.Error())
	}
}

func TestVerify_Found(t *testing.T) {
	issued := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	certs := &mockCertStore{}
	events := &mockEvents{}
	signer := &mockSigner{}
	events.On("Resolve", mock.Anything, "PythonWorkshop").Return(pyEvent, nil)
	certs.On("Get", mock.Anything, "ada@example.com", "py").Return(&domain.Certificate{
		Email: "ada@example.com", Event: "py", Name: "Ada", Status: domain.CertificateIssued,
		ObjectKey: "certificates/py/ada.png", IssuedAt: &issued,
	}, nil)
	signer.On("PresignedURL", mock.Anything, "certificates/py/ada.png", 10*time.Minute).Return("https://s3/ada.png?sig", nil)

	res, err := newSvc(certs, events, signer).Verify(context.Background(),
		domain.VerificationQuery{Email: " ADA@example.com ", Event: "PythonWorkshop"})
	require.NoError(t, err)
	assert.Equal(t, &domain.VerificationResult{
		Status:        domain.VerificationFound,
		RecipientName: "Ada",
		EventName:     "PythonWorkshop",
		DownloadURL:   "https://s3/ada.png?sig",
		IssuedAt:      "2025-01-01T09:00:00Z",
	}, res)
}

func TestVerify_Pending(t *testing.T) {
	certs := &mockCertStore{}
	events := &mockEvents{}
	events.On("Resolve", mock.Anything, "py").Return(pyEvent, nil)
	certs.On("Get", mock.Anything, "ada@example.com", "py").Return(&domain.Certificate{Name: "Ada", Status: domain.CertificatePending}, nil)

	res, err := newSvc(certs, events, &mockSigner{}).Verify(context.Background(),
		domain.VerificationQuery{Email: "ada@example.com", Event: "py"})
	require.NoError(t, err)
	assert.Equal(t, domain.VerificationPending, res.Status)
	assert.Empty(t, res.DownloadURL)
}

func TestVerify_NotFound(t *testing.T) {
	certs := &mockCertStore{}
	events := &mockEvents{}
	events.On("Resolve", mock.Anything, "py").Return(pyEvent, nil)
	certs.On("Get", mock.Anything, "ada@example.com", "py").Return(nil, domain.ErrNotFound)

	_, err := newSvc(certs, events, nil).Verify(context.Background(),
		domain.VerificationQuery{Email: "ada@example.com", Event: "py"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

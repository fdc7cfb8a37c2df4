package certificate

import (
	"context"
	"errors"
	"testing"

	"github.com/certportal/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCerts struct{ mock.Mock }

func (m *mockCerts) Get(ctx context.Context, email, event string) (*domain.Certificate, error) {
	args := m.Called(ctx, email, event)
	c, _ := args.Get(0).(*domain.Certificate)
	return c, args.Error(1)
}

func (m *mockCerts) ListByEvent(ctx context.Context, event string) ([]domain.Certificate, error) {
	args := m.Called(ctx, event)
	c, _ := args.Get(0).([]domain.Certificate)
	return c, args.Error(1)
}

func (m *mockCerts) Delete(ctx context.Context, email, event string) error {
	return m.Called(ctx, email, event).Error(0)
}

type mockObjects struct{ mock.Mock }

func (m *mockObjects) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type staticEvents map[string]*domain.EventDescriptor

func (s staticEvents) Resolve(_ context.Context, idOrName string) (*domain.EventDescriptor, error) {
	if ev, ok := s[idOrName]; ok {
		return ev, nil
	}
	return nil, domain.ErrNotFound
}

var events = staticEvents{
	"Hackathon": {EventID: "Hackathon", Name: "Hackathon", Status: domain.EventActive, AssignedRoles: []string{domain.RoleOrganizer}},
}

func TestList_VisibleEvent(t *testing.T) {
	certs := &mockCerts{}
	certs.On("ListByEvent", mock.Anything, "Hackathon").Return(nil, nil)
	svc := NewService(certs, &mockObjects{}, events)

	got, err := svc.List(context.Background(), domain.RoleOrganizer, "Hackathon")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestList_HiddenEvent(t *testing.T) {
	svc := NewService(&mockCerts{}, &mockObjects{}, events)
	_, err := svc.List(context.Background(), domain.RoleViewer, "Hackathon")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestList_UnknownEvent(t *testing.T) {
	svc := NewService(&mockCerts{}, &mockObjects{}, events)
	_, err := svc.List(context.Background(), domain.RoleAdmin, "Nope")
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	assert.Equal(t, "Invalid event selected", err.Error())
}

func TestRevoke_DeletesObjectThenRecord(t *testing.T) {
	certs := &mockCerts{}
	objects := &mockObjects{}
	certs.On("Get", mock.Anything, "ada@example.com", "Hackathon").
		Return(&domain.Certificate{Email: "ada@example.com", Event: "Hackathon", ObjectKey: "certificates/Hackathon/x.png"}, nil)
	objects.On("Delete", mock.Anything, "certificates/Hackathon/x.png").Return(nil)
	certs.On("Delete", mock.Anything, "ada@example.com", "Hackathon").Return(nil)

	svc := NewService(certs, objects, events)
	require.NoError(t, svc.Revoke(context.Background(), " Ada@Example.com ", "Hackathon"))
	certs.AssertExpectations(t)
	objects.AssertExpectations(t)
}

func TestRevoke_PendingHasNoObject(t *testing.T) {
	certs := &mockCerts{}
	objects := &mockObjects{}
	certs.On("Get", mock.Anything, "ada@example.com", "Hackathon").
		Return(&domain.Certificate{Email: "ada@example.com", Event: "Hackathon", Status: domain.CertificatePending}, nil)
	certs.On("Delete", mock.Anything, "ada@example.com", "Hackathon").Return(nil)

	svc := NewService(certs, objects, events)
	require.NoError(t, svc.Revoke(context.Background(), "ada@example.com", "Hackathon"))
	objects.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestRevoke_NotFound(t *testing.T) {
	certs := &mockCerts{}
	certs.On("Get", mock.Anything, "ada@example.com", "Hackathon").Return(nil, domain.ErrNotFound)
	svc := NewService(certs, &mockObjects{}, events)

	err := svc.Revoke(context.Background(), "ada@example.com", "Hackathon")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRevoke_ObjectDeleteFailureKeepsRecord(t *testing.T) {
	certs := &mockCerts{}
	objects := &mockObjects{}
	certs.On("Get", mock.Anything, "ada@example.com", "Hackathon").
		Return(&domain.Certificate{ObjectKey: "k"}, nil)
	objects.On("Delete", mock.Anything, "k").Return(errors.New("s3 down"))

	svc := NewService(certs, objects, events)
	err := svc.Revoke(context.Background(), "ada@example.com", "Hackathon")
	require.Error(t, err)
	certs.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

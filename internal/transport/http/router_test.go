package http

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/certportal/internal/config"
	"github.com/certportal/internal/domain"
	jwtinfra "github.com/certportal/internal/infrastructure/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memEvents struct{ items map[string]domain.EventDescriptor }

func (m *memEvents) Put(_ context.Context, e *domain.EventDescriptor) error {
	m.items[e.EventID] = *e
	return nil
}

func (m *memEvents) PutIfAbsent(_ context.Context, e *domain.EventDescriptor) (bool, error) {
	if _, ok := m.items[e.EventID]; ok {
		return false, nil
	}
	m.items[e.EventID] = *e
	return true, nil
}

func (m *memEvents) Get(_ context.Context, id string) (*domain.EventDescriptor, error) {
	e, ok := m.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &e, nil
}

func (m *memEvents) Scan(_ context.Context) ([]domain.EventDescriptor, error) {
	out := make([]domain.EventDescriptor, 0, len(m.items))
	for _, e := range m.items {
		out = append(out, e)
	}
	return out, nil
}

type okProbe struct{}

func (okProbe) Ping(context.Context) error { return nil }

func newTestRouter(t *testing.T) (*Router, *jwtinfra.Provider) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	p := jwtinfra.NewProviderFromKey(key, &key.PublicKey, time.Hour)

	events := &memEvents{items: map[string]domain.EventDescriptor{
		"Open":    {EventID: "Open", Name: "Open", Status: domain.EventActive, AssignedRoles: []string{domain.RoleViewer, domain.RoleOrganizer}},
		"Private": {EventID: "Private", Name: "Private", Status: domain.EventActive, AssignedRoles: []string{domain.RoleOrganizer}},
	}}
	cfg := &config.Config{VerifyRatePerMinute: 10, GenerationWorkers: 1}
	rt := NewRouter(cfg, &Deps{EventRepo: events, JWTProvider: p, Health: okProbe{}})
	t.Cleanup(func() { _ = rt.Shutdown(context.Background()) })
	return rt, p
}

func bearer(t *testing.T, p *jwtinfra.Provider, role string) string {
	t.Helper()
	tok, err := p.Sign("ops@example.com", role)
	require.NoError(t, err)
	return "Bearer " + tok
}

func TestRouter_HealthIsPublic(t *testing.T) {
	rt, _ := newTestRouter(t)
	rr := httptest.NewRecorder()
	rt.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRouter_OperatorRoutesRequireBearer(t *testing.T) {
	rt, _ := newTestRouter(t)
	for _, path := range []string{"/admin/upload-csv", "/admin/generate-bulk"} {
		rr := httptest.NewRecorder()
		rt.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, path, strings.NewReader("")))
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
	}
}

func TestRouter_ViewerCannotGenerate(t *testing.T) {
	rt, p := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/admin/generate-bulk", strings.NewReader(""))
	req.Header.Set("Authorization", bearer(t, p, domain.RoleViewer))
	rr := httptest.NewRecorder()
	rt.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestRouter_EventsFilteredByRole(t *testing.T) {
	rt, p := newTestRouter(t)

	list := func(role string) []string {
		req := httptest.NewRequest(http.MethodGet, "/admin/events", nil)
		req.Header.Set("Authorization", bearer(t, p, role))
		rr := httptest.NewRecorder()
		rt.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
		var body struct {
			Data []domain.EventDescriptor `json:"data"`
		}
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
		names := make([]string, len(body.Data))
		for i, e := range body.Data {
			names[i] = e.Name
		}
		return names
	}

	assert.Equal(t, []string{"Open"}, list(domain.RoleViewer))
	assert.Equal(t, []string{"Open", "Private"}, list(domain.RoleOrganizer))
}

func TestRouter_EventUpsertIsAdminOnly(t *testing.T) {
	rt, p := newTestRouter(t)
	body := `{"name":"New","status":"draft","assigned_roles":["organizer"]}`

	req := httptest.NewRequest(http.MethodPut, "/admin/events/New", strings.NewReader(body))
	req.Header.Set("Authorization", bearer(t, p, domain.RoleOrganizer))
	rr := httptest.NewRecorder()
	rt.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	req = httptest.NewRequest(http.MethodPut, "/admin/events/New", strings.NewReader(body))
	req.Header.Set("Authorization", bearer(t, p, domain.RoleAdmin))
	rr = httptest.NewRecorder()
	rt.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRouter_SeedEvents(t *testing.T) {
	rt, _ := newTestRouter(t)
	require.NoError(t, rt.SeedEvents(context.Background(), []string{"Seeded", "Open"}))

	ev, err := rt.events.Resolve(context.Background(), "seeded")
	require.NoError(t, err)
	assert.Equal(t, domain.EventActive, ev.Status)
}

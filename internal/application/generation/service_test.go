package generation

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/certportal/internal/application/render"
	"github.com/certportal/internal/domain"
	"github.com/certportal/internal/infrastructure/mail"
	"github.com/certportal/internal/infrastructure/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type memUploads struct {
	mu   sync.Mutex
	byID map[string]*domain.RecipientUpload
}

func (m *memUploads) Put(_ context.Context, u *domain.RecipientUpload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.byID == nil {
		m.byID = map[string]*domain.RecipientUpload{}
	}
	cp := *u
	m.byID[u.UploadID] = &cp
	return nil
}
func (m *memUploads) Get(_ context.Context, id string) (*domain.RecipientUpload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}
func (m *memUploads) Latest(_ context.Context, email string) (*domain.RecipientUpload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *domain.RecipientUpload
	for _, u := range m.byID {
		if u.AdminEmail == email && (latest == nil || !u.CreatedAt.Before(latest.CreatedAt)) {
			latest = u
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	return latest, nil
}

type memJobs struct {
	mu     sync.Mutex
	jobs   map[string]*domain.GenerationJob
	putErr error
}

func (m *memJobs) Put(_ context.Context, j *domain.GenerationJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	if m.jobs == nil {
		m.jobs = map[string]*domain.GenerationJob{}
	}
	cp := *j
	m.jobs[j.JobID] = &cp
	return nil
}
func (m *memJobs) Get(_ context.Context, id string) (*domain.GenerationJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if j, ok := m.jobs[id]; ok {
		cp := *j
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}
func (m *memJobs) Update(_ context.Context, id string, u map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return domain.ErrNotFound
	}
	for k, v := range u {
		switch k {
		case "status":
			j.Status = v.(string)
		case "message":
			j.Message = v.(string)
		case "processed":
			j.Processed = v.(int)
		case "failed":
			j.Failed = v.(int)
		case "emailed":
			j.Emailed = v.(int)
		case "percent":
			j.Percent = v.(int)
		case "log":
			j.Log = v.([]string)
		}
	}
	return nil
}

type memCerts struct {
	mu    sync.Mutex
	certs map[string]*domain.Certificate
	// failOnPut makes the n-th Put fail when set.
	failOnPut int
	puts      int
}

func (m *memCerts) Put(_ context.Context, c *domain.Certificate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	if m.failOnPut > 0 && m.puts == m.failOnPut {
		return errors.New("throughput exceeded")
	}
	if m.certs == nil {
		m.certs = map[string]*domain.Certificate{}
	}
	cp := *c
	m.certs[c.Email+"|"+c.Event] = &cp
	return nil
}
func (m *memCerts) MarkIssued(_ context.Context, email, event, key string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.certs[email+"|"+event]
	if !ok {
		return domain.ErrNotFound
	}
	c.Status = domain.CertificateIssued
	c.ObjectKey = key
	c.IssuedAt = &at
	return nil
}
func (m *memCerts) Delete(_ context.Context, email, event string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.certs, email+"|"+event)
	return nil
}
func (m *memCerts) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.certs)
}
func (m *memCerts) get(email, event string) *domain.Certificate {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.certs[email+"|"+event]
}

type memObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memObjects) Put(_ context.Context, key string, data []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.objects == nil {
		m.objects = map[string][]byte{}
	}
	m.objects[key] = data
	return nil
}
func (m *memObjects) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.objects[key]; ok {
		return b, nil
	}
	return nil, errors.New("no such key")
}

type staticEvents map[string]*domain.EventDescriptor

func (s staticEvents) Resolve(_ context.Context, idOrName string) (*domain.EventDescriptor, error) {
	if e, ok := s[idOrName]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

type fakeRenderer struct {
	failFor string
}

func (f fakeRenderer) Render(req render.Request) ([]byte, error) {
	if req.Name == f.failFor {
		return nil, errors.New("render failed")
	}
	return []byte("png:" + req.Name), nil
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) PublishJobFinished(ctx context.Context, ev sns.JobEvent) error {
	return m.Called(ctx, ev).Error(0)
}

// --- fixture ---

type fixture struct {
	uploads *memUploads
	jobs    *memJobs
	certs   *memCerts
	objects *memObjects
	mailer  *mail.Console
	pub     *mockPublisher
	svc     Service
}

func templatePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	img.Set(1, 1, color.Black)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newFixture(t *testing.T, renderer fakeRenderer, templateRequired bool) *fixture {
	t.Helper()
	f := &fixture{
		uploads: &memUploads{},
		jobs:    &memJobs{},
		certs:   &memCerts{},
		objects: &memObjects{},
		mailer:  mail.NewConsole(nil),
		pub:     &mockPublisher{},
	}
	require.NoError(t, f.objects.Put(context.Background(), "templates/Sample1.png", templatePNG(t), ""))
	f.pub.On("PublishJobFinished", mock.Anything, mock.Anything).Return(nil)
	f.svc = NewService(ServiceDeps{
		Uploads:      f.uploads,
		Jobs:         f.jobs,
		Certificates: f.certs,
		Storage:      f.objects,
		Events: staticEvents{
			"PythonWorkshop": {EventID: "py", Name: "PythonWorkshop", AssignedRoles: []string{domain.RoleOrganizer}},
		},
		Renderer:           renderer,
		Mailer:             f.mailer,
		Publisher:          f.pub,
		Workers:            2,
		TemplateRequired:   templateRequired,
		DefaultTemplateKey: "templates/Sample1.png",
		PublicBaseURL:      "http://portal.test",
	})
	return f
}

func (f *fixture) wait(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, f.svc.Shutdown(ctx))
}

const twoRows = "name,email\nAda Lovelace,ada@example.com\nGrace Hopper,grace@example.com\n"

// --- UploadRecipients ---

func TestUploadRecipients_StagesList(t *testing.T) {
	f := newFixture(t, fakeRenderer{}, false)
	res, err := f.svc.UploadRecipients(context.Background(), UploadInput{
		AdminEmail: "ops@example.com", Filename: "list.csv", Data: []byte(twoRows),
	})
	require.NoError(t, err)
	assert.Equal(t, "Successfully parsed 2 participants", res.Message)
	assert.Equal(t, 2, res.Total)

	u, err := f.uploads.Get(context.Background(), res.UploadID)
	require.NoError(t, err)
	assert.Equal(t, "recipients/"+res.UploadID+"/list.csv", u.ObjectKey)
	assert.NotZero(t, u.ExpiresAt)
	stored, err := f.objects.Get(context.Background(), u.ObjectKey)
	require.NoError(t, err)
	assert.Equal(t, twoRows, string(stored))
}

func TestUploadRecipients_ParseError(t *testing.T) {
	f := newFixture(t, fakeRenderer{}, false)
	_, err := f.svc.UploadRecipients(context.Background(), UploadInput{
		AdminEmail: "ops@example.com", Filename: "list.csv", Data: []byte("name,email\n,a@b.com\n"),
	})
	require.Error(t, err)
	assert.Equal(t, "Row 2: Name is required", err.Error())
	assert.Len(t, f.objects.objects, 1, "only the default template is stored")
}

func TestUploadRecipients_Empty(t *testing.T) {
	f := newFixture(t, fakeRenderer{}, false)
	_, err := f.svc.UploadRecipients(context.Background(), UploadInput{Filename: "list.csv"})
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

// --- StartBulk ---

func TestStartBulk_RequiresUpload(t *testing.T) {
	f := newFixture(t, fakeRenderer{}, false)
	_, err := f.svc.StartBulk(context.Background(), GenerateInput{
		AdminEmail: "ops@example.com", AdminRole: domain.RoleOrganizer, EventName: "PythonWorkshop",
	})
	require.Error(t, err)
	assert.Equal(t, "Please upload a CSV file first", err.Error())
}

func TestStartBulk_UnknownEvent(t *testing.T) {
	f := newFixture(t, fakeRenderer{}, false)
	up, err := f.svc.UploadRecipients(context.Background(), UploadInput{AdminEmail: "ops@example.com", Filename: "l.csv", Data: []byte(twoRows)})
	require.NoError(t, err)

	_, err = f.svc.StartBulk(context.Background(), GenerateInput{
		AdminEmail: "ops@example.com", AdminRole: domain.RoleOrganizer, EventName: "Nope", UploadID: up.UploadID,
	})
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestStartBulk_EventNotAssigned(t *testing.T) {
	f := newFixture(t, fakeRenderer{}, false)
	_, err := f.svc.UploadRecipients(context.Background(), UploadInput{AdminEmail: "v@example.com", Filename: "l.csv", Data: []byte(twoRows)})
	require.NoError(t, err)

	_, err = f.svc.StartBulk(context.Background(), GenerateInput{
		AdminEmail: "v@example.com", AdminRole: domain.RoleViewer, EventName: "PythonWorkshop",
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestStartBulk_TemplateRequired(t *testing.T) {
	f := newFixture(t, fakeRenderer{}, true)
	_, err := f.svc.UploadRecipients(context.Background(), UploadInput{AdminEmail: "ops@example.com", Filename: "l.csv", Data: []byte(twoRows)})
	require.NoError(t, err)

	_, err = f.svc.StartBulk(context.Background(), GenerateInput{
		AdminEmail: "ops@example.com", AdminRole: domain.RoleOrganizer, EventName: "PythonWorkshop",
	})
	require.Error(t, err)
	assert.Equal(t, "Please upload a certificate template", err.Error())
}

func TestStartBulk_RunsJobToCompletion(t *testing.T) {
	f := newFixture(t, fakeRenderer{}, false)
	_, err := f.svc.UploadRecipients(context.Background(), UploadInput{AdminEmail: "ops@example.com", Filename: "l.csv", Data: []byte(twoRows)})
	require.NoError(t, err)

	res, err := f.svc.StartBulk(context.Background(), GenerateInput{
		AdminEmail: "ops@example.com",
		AdminRole:  domain.RoleOrganizer,
		EventName:  "PythonWorkshop",
		Style:      domain.TextStyle{FontSizePt: 40},
		Anchor:     domain.Anchor{NormX: 0.5, NormY: 0.5, HasNorm: true},
	})
	require.NoError(t, err)
	assert.Equal(t, "Certificate generation started for 2 participants", res.Message)
	assert.Equal(t, 2, res.Total)
	f.wait(t)

	job, err := f.svc.GetJob(context.Background(), res.JobID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobCompleted, job.Status)
	assert.Equal(t, 2, job.Processed)
	assert.Equal(t, 2, job.Emailed)
	assert.Equal(t, 100, job.Percent)
	assert.Equal(t, "Generated 2 of 2 certificates", job.Message)
	assert.Len(t, job.Log, 2)

	c := f.certs.get("ada@example.com", "py")
	require.NotNil(t, c)
	assert.Equal(t, domain.CertificateIssued, c.Status)
	assert.Equal(t, "certificates/py/py_ada_example.com.png", c.ObjectKey)
	assert.Equal(t, "png:Ada Lovelace", string(f.objects.objects[c.ObjectKey]))

	sent := f.mailer.Sent()
	require.Len(t, sent, 2)
	for _, m := range sent {
		assert.Len(t, m.Attachments, 1)
		assert.Contains(t, m.Text, "http://portal.test/?email=")
	}
	f.pub.AssertCalled(t, "PublishJobFinished", mock.Anything, mock.MatchedBy(func(ev sns.JobEvent) bool {
		return ev.JobID == res.JobID && ev.Status == domain.JobCompleted && ev.Processed == 2
	}))
}

func TestStartBulk_CountsFailures(t *testing.T) {
	f := newFixture(t, fakeRenderer{failFor: "Grace Hopper"}, false)
	_, err := f.svc.UploadRecipients(context.Background(), UploadInput{AdminEmail: "ops@example.com", Filename: "l.csv", Data: []byte(twoRows)})
	require.NoError(t, err)

	res, err := f.svc.StartBulk(context.Background(), GenerateInput{
		AdminEmail: "ops@example.com", AdminRole: domain.RoleOrganizer, EventName: "PythonWorkshop",
	})
	require.NoError(t, err)
	f.wait(t)

	job, err := f.svc.GetJob(context.Background(), res.JobID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobCompleted, job.Status)
	assert.Equal(t, 1, job.Processed)
	assert.Equal(t, 1, job.Failed)
	assert.Equal(t, 100, job.Percent)
	assert.True(t, strings.HasSuffix(job.Message, "(1 failed)"))
	assert.Equal(t, domain.CertificatePending, f.certs.get("grace@example.com", "py").Status)
}

func TestStartBulk_UploadedTemplateIsKept(t *testing.T) {
	f := newFixture(t, fakeRenderer{}, true)
	_, err := f.svc.UploadRecipients(context.Background(), UploadInput{AdminEmail: "ops@example.com", Filename: "l.csv", Data: []byte(twoRows)})
	require.NoError(t, err)

	res, err := f.svc.StartBulk(context.Background(), GenerateInput{
		AdminEmail: "ops@example.com", AdminRole: domain.RoleOrganizer, EventName: "PythonWorkshop",
		Template: templatePNG(t), TemplateName: "../my template.png",
	})
	require.NoError(t, err)
	f.wait(t)

	_, err = f.objects.Get(context.Background(), "templates/jobs/"+res.JobID+"/my_template.png")
	assert.NoError(t, err)
}

func TestStartBulk_BadTemplate(t *testing.T) {
	f := newFixture(t, fakeRenderer{}, true)
	_, err := f.svc.UploadRecipients(context.Background(), UploadInput{AdminEmail: "ops@example.com", Filename: "l.csv", Data: []byte(twoRows)})
	require.NoError(t, err)

	_, err = f.svc.StartBulk(context.Background(), GenerateInput{
		AdminEmail: "ops@example.com", AdminRole: domain.RoleOrganizer, EventName: "PythonWorkshop",
		Template: []byte("GIF89a-not-really"), TemplateName: "t.gif",
	})
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestStartBulk_OtherOperatorsUpload(t *testing.T) {
	f := newFixture(t, fakeRenderer{}, false)
	up, err := f.svc.UploadRecipients(context.Background(), UploadInput{AdminEmail: "a@example.com", Filename: "l.csv", Data: []byte(twoRows)})
	require.NoError(t, err)

	_, err = f.svc.StartBulk(context.Background(), GenerateInput{
		AdminEmail: "b@example.com", AdminRole: domain.RoleOrganizer, EventName: "PythonWorkshop", UploadID: up.UploadID,
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestStartBulk_PendingWriteFailureLeavesNothingBehind(t *testing.T) {
	f := newFixture(t, fakeRenderer{}, false)
	f.certs.failOnPut = 2
	_, err := f.svc.UploadRecipients(context.Background(), UploadInput{AdminEmail: "ops@example.com", Filename: "l.csv", Data: []byte(twoRows)})
	require.NoError(t, err)

	_, err = f.svc.StartBulk(context.Background(), GenerateInput{
		AdminEmail: "ops@example.com", AdminRole: domain.RoleOrganizer, EventName: "PythonWorkshop",
	})
	require.Error(t, err)
	f.wait(t)

	assert.Empty(t, f.jobs.jobs, "no job may stay queued")
	assert.Zero(t, f.certs.count(), "pending rows must be cleared")
	assert.Empty(t, f.mailer.Sent())
}

func TestStartBulk_JobWriteFailureClearsPendingRows(t *testing.T) {
	f := newFixture(t, fakeRenderer{}, false)
	f.jobs.putErr = errors.New("table unavailable")
	_, err := f.svc.UploadRecipients(context.Background(), UploadInput{AdminEmail: "ops@example.com", Filename: "l.csv", Data: []byte(twoRows)})
	require.NoError(t, err)

	_, err = f.svc.StartBulk(context.Background(), GenerateInput{
		AdminEmail: "ops@example.com", AdminRole: domain.RoleOrganizer, EventName: "PythonWorkshop",
	})
	require.EqualError(t, err, "table unavailable")
	f.wait(t)

	assert.Zero(t, f.certs.count())
	assert.Nil(t, f.certs.get("ada@example.com", "py"))
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "recipients/u1/.._etc_passwd", recipientListKey("u1", "/x/../.._etc_passwd"))
	assert.Equal(t, "_", sanitizeFilename(".."))
	assert.Equal(t, "http://portal.test/?email=a%40b.com&event=py", verifyURL("http://portal.test/", "a@b.com", "py"))
}

package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Client talks to the portal HTTP API.
type Client struct {
	baseURL string
	http    *http.Client

	mu     sync.RWMutex
	bearer string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// SetBearer sets the operator token sent on admin calls. Empty clears it.
func (c *Client) SetBearer(token string) {
	c.mu.Lock()
	c.bearer = token
	c.mu.Unlock()
}

func (c *Client) Bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bearer
}

// UploadResult is the body of a successful POST /admin/upload-csv.
type UploadResult struct {
	Message  string `json:"message"`
	UploadID string `json:"upload_id"`
	Total    int    `json:"total"`
}

// GenerateRequest carries the generate-bulk form.
type GenerateRequest struct {
	EventName string
	UploadID  string
	Placement PlacementConfig
	Template  *UploadedAsset
}

// GenerateResult is the acceptance answer of POST /admin/generate-bulk.
type GenerateResult struct {
	Message string `json:"message"`
	Total   int    `json:"total"`
	JobID   string `json:"job_id"`
}

// JobStatus mirrors GET /admin/jobs/{id}.
type JobStatus struct {
	ID        string   `json:"id"`
	Status    string   `json:"status"`
	Total     int      `json:"total"`
	Processed int      `json:"processed"`
	Failed    int      `json:"failed"`
	Percent   int      `json:"percent"`
	Message   string   `json:"message"`
	Log       []string `json:"log"`
}

// Terminal reports whether the job has stopped changing.
func (j *JobStatus) Terminal() bool { return j.Status == "completed" || j.Status == "failed" }

// VerifyData is the "data" object of a 200 POST /verify.
type VerifyData struct {
	Status      string `json:"status"`
	Name        string `json:"name"`
	Event       string `json:"event"`
	IssuedAt    string `json:"issued_at"`
	DownloadURL string `json:"download_url"`
}

// Event is one entry of GET /admin/events.
type Event struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Status        string   `json:"status"`
	AssignedRoles []string `json:"assigned_roles"`
}

type loginResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Redirect string `json:"redirect"`
	Bearer   string `json:"bearer"`
}

func (c *Client) UploadCSV(ctx context.Context, list *UploadedAsset, eventName string) (*UploadResult, error) {
	body, contentType, err := multipartBody(map[string]string{"eventName": eventName}, filePart{"csv", list})
	if err != nil {
		return nil, err
	}
	var out UploadResult
	if err := c.do(ctx, http.MethodPost, "/admin/upload-csv", contentType, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GenerateBulk(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	p := req.Placement
	nx, ny := p.Normalized()
	fields := map[string]string{
		"eventName":  req.EventName,
		"uploadId":   req.UploadID,
		"fontFamily": p.FontFamily,
		"fontSize":   strconv.FormatFloat(p.FontSizePt, 'f', -1, 64),
		"textColor":  p.ColorHex,
		"centerX":    strconv.FormatFloat(p.X, 'f', -1, 64),
		"centerY":    strconv.FormatFloat(p.Y, 'f', -1, 64),
	}
	if p.PreviewWidth > 0 && p.PreviewHeight > 0 {
		fields["normX"] = strconv.FormatFloat(nx, 'f', 6, 64)
		fields["normY"] = strconv.FormatFloat(ny, 'f', 6, 64)
	}
	var parts []filePart
	if req.Template != nil {
		parts = append(parts, filePart{"template", req.Template})
	}
	body, contentType, err := multipartBody(fields, parts...)
	if err != nil {
		return nil, err
	}
	var out GenerateResult
	if err := c.do(ctx, http.MethodPost, "/admin/generate-bulk", contentType, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetJob(ctx context.Context, jobID string) (*JobStatus, error) {
	var out JobStatus
	if err := c.do(ctx, http.MethodGet, "/admin/jobs/"+jobID, "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Verify posts one lookup. A 404 is returned as an *APIError with Status 404.
func (c *Client) Verify(ctx context.Context, email, event string) (*VerifyData, error) {
	body, err := json.Marshal(map[string]string{"email": email, "event": event})
	if err != nil {
		return nil, err
	}
	var out struct {
		Data VerifyData `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/verify", "application/json", bytes.NewReader(body), &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// FirebaseLogin exchanges an identity-provider token for a portal bearer and
// keeps it for later calls.
func (c *Client) FirebaseLogin(ctx context.Context, idToken string) (redirect string, err error) {
	body, err := json.Marshal(map[string]string{"idToken": idToken})
	if err != nil {
		return "", err
	}
	var out loginResponse
	if err := c.do(ctx, http.MethodPost, "/admin/firebase-login", "application/json", bytes.NewReader(body), &out); err != nil {
		return "", err
	}
	c.SetBearer(out.Bearer)
	return out.Redirect, nil
}

func (c *Client) ListEvents(ctx context.Context) ([]Event, error) {
	var out struct {
		Data []Event `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/admin/events", "", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if b := c.Bearer(); b != "" {
		req.Header.Set("Authorization", "Bearer "+b)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return &NetworkError{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(resp.StatusCode, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// apiError keeps the backend message when the body carries one.
func apiError(status int, raw []byte) *APIError {
	var body struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(raw, &body)
	return &APIError{Status: status, Message: body.Message}
}

type filePart struct {
	field string
	asset *UploadedAsset
}

func multipartBody(fields map[string]string, files ...filePart) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	for _, f := range files {
		if f.asset == nil {
			continue
		}
		w, err := mw.CreateFormFile(f.field, f.asset.Name)
		if err != nil {
			return nil, "", err
		}
		if _, err := w.Write(f.asset.Data); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

// IsNotFound reports whether err is a 404 from the portal.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

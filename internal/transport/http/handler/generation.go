package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/certportal/internal/application/generation"
	"github.com/certportal/internal/domain"
	"github.com/certportal/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
)

const (
	defaultFontFamily = "Go Regular"
	defaultFontSizePt = 36
	defaultTextColor  = "#000000"
)

// GenerationHandler serves the operator's upload, generate and job endpoints.
type GenerationHandler struct {
	svc               generation.Service
	maxRecipientBytes int64
	maxTemplateBytes  int64
}

func NewGenerationHandler(svc generation.Service, maxRecipientBytes, maxTemplateBytes int64) *GenerationHandler {
	return &GenerationHandler{svc: svc, maxRecipientBytes: maxRecipientBytes, maxTemplateBytes: maxTemplateBytes}
}

// UploadCSV accepts the multipart fields csv and eventName.
func (h *GenerationHandler) UploadCSV(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxRecipientBytes+formOverhead)
	if err := r.ParseMultipartForm(h.maxRecipientBytes); err != nil {
		writeFormError(w, err)
		return
	}
	data, name, err := readFormFile(r, "csv", h.maxRecipientBytes)
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		writeDomainError(w, r, err)
		return
	}
	res, err := h.svc.UploadRecipients(r.Context(), generation.UploadInput{
		AdminEmail: claims.Email,
		EventName:  r.FormValue("eventName"),
		Filename:   name,
		Data:       data,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GenerateBulk starts an asynchronous generation job and answers with its id.
func (h *GenerationHandler) GenerateBulk(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxTemplateBytes+formOverhead)
	if err := r.ParseMultipartForm(h.maxTemplateBytes); err != nil {
		writeFormError(w, err)
		return
	}
	in, err := generateInput(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	tpl, tplName, err := readFormFile(r, "template", h.maxTemplateBytes)
	switch {
	case err == nil:
		in.Template, in.TemplateName = tpl, tplName
	case !errors.Is(err, http.ErrMissingFile):
		writeDomainError(w, r, err)
		return
	}
	in.AdminEmail, in.AdminRole = claims.Email, claims.Role

	res, err := h.svc.StartBulk(r.Context(), in)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, res)
}

// GetJob reports the progress of a generation job.
func (h *GenerationHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.svc.GetJob(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// formOverhead leaves room for the non-file multipart fields.
const formOverhead = 1 << 20

func generateInput(r *http.Request) (generation.GenerateInput, error) {
	in := generation.GenerateInput{
		EventName: strings.TrimSpace(r.FormValue("eventName")),
		UploadID:  strings.TrimSpace(r.FormValue("uploadId")),
	}

	family := strings.TrimSpace(r.FormValue("fontFamily"))
	if family == "" {
		family = defaultFontFamily
	}
	size := float64(defaultFontSizePt)
	if v := strings.TrimSpace(r.FormValue("fontSize")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return in, domain.Errorf(domain.ErrBadRequest, "Invalid font size %q", v)
		}
		size = f
	}
	colorHex := r.FormValue("textColor")
	if strings.TrimSpace(colorHex) == "" {
		colorHex = defaultTextColor
	}
	color, err := domain.ParseHexColor(colorHex)
	if err != nil {
		return in, err
	}
	in.Style = domain.TextStyle{FontFamily: family, FontSizePt: size, Color: color}

	anchor, err := parseAnchor(r)
	if err != nil {
		return in, err
	}
	in.Anchor = anchor
	return in, nil
}

// parseAnchor prefers normX/normY and falls back to raw centerX/centerY.
func parseAnchor(r *http.Request) (domain.Anchor, error) {
	var a domain.Anchor
	nx, ny := strings.TrimSpace(r.FormValue("normX")), strings.TrimSpace(r.FormValue("normY"))
	if nx != "" && ny != "" {
		x, errX := strconv.ParseFloat(nx, 64)
		y, errY := strconv.ParseFloat(ny, 64)
		if errX != nil || errY != nil || x < 0 || x > 1 || y < 0 || y > 1 {
			return a, domain.Errorf(domain.ErrBadRequest, "Invalid text position")
		}
		a.NormX, a.NormY, a.HasNorm = x, y, true
		return a, nil
	}
	cx, cy := strings.TrimSpace(r.FormValue("centerX")), strings.TrimSpace(r.FormValue("centerY"))
	if cx == "" || cy == "" {
		return a, domain.Errorf(domain.ErrBadRequest, "Please set the text position on the template")
	}
	x, errX := strconv.ParseFloat(cx, 64)
	y, errY := strconv.ParseFloat(cy, 64)
	if errX != nil || errY != nil || x < 0 || y < 0 {
		return a, domain.Errorf(domain.ErrBadRequest, "Invalid text position")
	}
	a.PixelX, a.PixelY = int(x+0.5), int(y+0.5)
	return a, nil
}

func readFormFile(r *http.Request, field string, limit int64) ([]byte, string, error) {
	f, hdr, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, "", err
		}
		return nil, "", domain.Errorf(domain.ErrBadRequest, "Could not read %s upload", field)
	}
	defer func(f multipart.File) { _ = f.Close() }(f)
	if hdr.Size > limit {
		return nil, "", domain.Errorf(domain.ErrBadRequest, "File %s exceeds the %d MB limit", hdr.Filename, limit>>20)
	}
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, "", domain.Errorf(domain.ErrBadRequest, "Could not read %s upload", field)
	}
	return data, hdr.Filename, nil
}

func writeFormError(w http.ResponseWriter, err error) {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		writeError(w, http.StatusRequestEntityTooLarge, "Upload is too large")
		return
	}
	writeError(w, http.StatusBadRequest, "Invalid multipart form")
}

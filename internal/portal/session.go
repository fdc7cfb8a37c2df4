package portal

import (
	"sync"
	"time"
)

// TemplateMode decides whether the operator must upload a template.
type TemplateMode string

const (
	TemplatePredefined TemplateMode = "predefined"
	TemplateUpload     TemplateMode = "upload"
)

// ProgressMode selects how generation progress is reported.
type ProgressMode string

const (
	// ProgressPolled follows the backend job through GET /admin/jobs/{id}.
	ProgressPolled ProgressMode = "polled"
	// ProgressSimulated advances fixed 10-point ticks. It does not reflect
	// backend completion and is only for backends without a job endpoint.
	ProgressSimulated ProgressMode = "simulated"
)

// Options configures a Session.
type Options struct {
	TemplateMode     TemplateMode
	ProgressMode     ProgressMode
	PollInterval     time.Duration
	MaxTemplateBytes int64
	// OnLog, when set, receives every job log line as it is appended.
	OnLog func(line string)
	// OnProgress, when set, receives every percentage update.
	OnProgress func(percent int)
}

// Session is the state of one operator page: the picked assets, the placement
// and the current generation job. All methods are safe for concurrent use but
// only one backend call runs at a time.
type Session struct {
	client *Client
	opts   Options

	mu        sync.Mutex
	list      *UploadedAsset
	listInput string
	template  *UploadedAsset
	placement *Placement
	state     State
	percent   int
	log       []string
	inFlight  bool
}

func NewSession(client *Client, opts Options) *Session {
	if opts.TemplateMode == "" {
		opts.TemplateMode = TemplatePredefined
	}
	if opts.ProgressMode == "" {
		opts.ProgressMode = ProgressPolled
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 500 * time.Millisecond
	}
	return &Session{client: client, opts: opts, state: StateIdle}
}

// TemplateRequired reports whether generation needs an uploaded template.
func (s *Session) TemplateRequired() bool { return s.opts.TemplateMode == TemplateUpload }

// OfferRecipientList ingests a dropped file. Anything without a tabular
// extension is refused and the current list is kept.
func (s *Session) OfferRecipientList(a *UploadedAsset) error {
	if a == nil || !hasTabularExtension(a.Name) {
		name := ""
		if a != nil {
			name = a.Name
		}
		return &RejectionError{Kind: AssetRecipientList, Name: name, Reason: "only .csv or .xlsx recipient lists are accepted"}
	}
	a.Kind = AssetRecipientList
	s.mu.Lock()
	s.list = a
	s.listInput = a.Name
	s.mu.Unlock()
	return nil
}

// SelectRecipientList models the file picker: choosing the file the input
// already holds fires no change and nothing is ingested. It reports whether
// ingestion ran.
func (s *Session) SelectRecipientList(a *UploadedAsset) (bool, error) {
	s.mu.Lock()
	unchanged := a != nil && s.listInput != "" && s.listInput == a.Name
	s.mu.Unlock()
	if unchanged {
		return false, nil
	}
	if err := s.OfferRecipientList(a); err != nil {
		return false, err
	}
	return true, nil
}

// RemoveRecipientList drops the list and clears the picker so the same file
// can be selected again.
func (s *Session) RemoveRecipientList() {
	s.mu.Lock()
	s.list = nil
	s.listInput = ""
	s.mu.Unlock()
}

// OfferTemplate ingests an image template. Non-image files and files over
// the size cap are refused and the current template is kept.
func (s *Session) OfferTemplate(a *UploadedAsset) error {
	if a == nil {
		return &RejectionError{Kind: AssetTemplate, Reason: "no file selected"}
	}
	if !isImageMIME(a.MIME) {
		return &RejectionError{Kind: AssetTemplate, Name: a.Name, Reason: "only image files can be used as templates"}
	}
	if s.opts.MaxTemplateBytes > 0 && a.SizeBytes > s.opts.MaxTemplateBytes {
		return &RejectionError{Kind: AssetTemplate, Name: a.Name, Reason: "file is larger than the template size limit"}
	}
	a.Kind = AssetTemplate
	s.mu.Lock()
	s.template = a
	s.placement = nil
	s.mu.Unlock()
	return nil
}

func (s *Session) RemoveTemplate() {
	s.mu.Lock()
	s.template = nil
	s.placement = nil
	s.mu.Unlock()
}

func (s *Session) RecipientList() *UploadedAsset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list
}

func (s *Session) Template() *UploadedAsset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.template
}

// Placement returns the placement bound to this session, creating one over a
// preview of the given size on first use.
func (s *Session) Placement(previewWidth, previewHeight float64) *Placement {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.placement == nil {
		s.placement = NewPlacement(previewWidth, previewHeight)
	}
	return s.placement
}

// CanGenerate holds exactly when every asset the template mode requires is present.
func (s *Session) CanGenerate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readyLocked()
}

func (s *Session) readyLocked() bool {
	if s.list == nil {
		return false
	}
	return !s.TemplateRequired() || s.template != nil
}

// GenerateControl is the state of the generate button.
func (s *Session) GenerateControl() Control {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Control{Label: "Generate Certificates", Disabled: s.inFlight || !s.readyLocked()}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Percent() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.percent
}

// Log returns a copy of the job log.
func (s *Session) Log() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.log))
	copy(out, s.log)
	return out
}

func (s *Session) appendLog(line string) {
	s.mu.Lock()
	s.log = append(s.log, line)
	s.mu.Unlock()
	if s.opts.OnLog != nil {
		s.opts.OnLog(line)
	}
}

func (s *Session) setPercent(p int) {
	s.mu.Lock()
	s.percent = p
	s.mu.Unlock()
	if s.opts.OnProgress != nil {
		s.opts.OnProgress(p)
	}
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

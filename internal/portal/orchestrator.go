package portal

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// State is a step of the generation workflow.
type State int

const (
	StateIdle State = iota
	StateUploadingList
	StateUploaded
	StateSubmitting
	StateProgress
	StateComplete
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateUploadingList:
		return "uploading"
	case StateUploaded:
		return "uploaded"
	case StateSubmitting:
		return "submitting"
	case StateProgress:
		return "progress"
	case StateComplete:
		return "complete"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

var milestones = []int{20, 40, 60, 80, 100}

// GenerateParams are the form values read fresh for each run.
type GenerateParams struct {
	EventName string
	Placement PlacementConfig
}

// Outcome is the result of a run the backend accepted and finished.
type Outcome struct {
	JobID   string
	Message string
	Total   int
	Job     *JobStatus
}

// Generate uploads the recipient list, submits the generation job and
// follows it to the end. Every exit re-arms the generate control. Backend
// and transport failures are appended to the log and returned.
func (s *Session) Generate(ctx context.Context, p GenerateParams) (*Outcome, error) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	if !s.readyLocked() {
		s.mu.Unlock()
		reason := "Please upload a CSV file first"
		kind := AssetRecipientList
		if s.list != nil {
			reason, kind = "Please upload a certificate template", AssetTemplate
		}
		return nil, &RejectionError{Kind: kind, Reason: reason}
	}
	s.inFlight = true
	list, template := s.list, s.template
	s.state = StateUploadingList
	s.percent = 0
	s.log = nil
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	s.setPercent(0)
	s.appendLog("📋 Preparing to upload CSV data...")

	up, err := s.client.UploadCSV(ctx, list, p.EventName)
	if err != nil {
		return nil, s.fail(err, "✗ CSV Upload Error: ", "Failed to upload CSV")
	}
	s.setState(StateUploaded)
	s.appendLog("✓ " + up.Message)
	s.appendLog("📋 Starting certificate generation...")

	s.setState(StateSubmitting)
	req := GenerateRequest{EventName: p.EventName, UploadID: up.UploadID, Placement: p.Placement}
	if s.TemplateRequired() {
		req.Template = template
	}
	accepted, err := s.client.GenerateBulk(ctx, req)
	if err != nil {
		return nil, s.fail(err, "✗ Error: ", "Failed to generate certificates")
	}

	s.setState(StateProgress)
	out := &Outcome{JobID: accepted.JobID, Message: accepted.Message, Total: accepted.Total}
	if s.opts.ProgressMode == ProgressSimulated || accepted.JobID == "" {
		err = s.simulate(ctx)
	} else {
		out.Job, err = s.poll(ctx, accepted)
	}
	if err != nil {
		return out, err
	}

	msg := accepted.Message
	if msg == "" {
		msg = "All certificates generated successfully!"
	}
	s.appendLog("✓ " + msg)
	s.appendLog(fmt.Sprintf("📧 Total: %d certificates", accepted.Total))
	s.setState(StateComplete)
	return out, nil
}

// fail logs err with the prefix matching its class and moves to Failed.
func (s *Session) fail(err error, domainPrefix, fallback string) error {
	var apiErr *APIError
	var netErr *NetworkError
	switch {
	case errors.As(err, &apiErr):
		msg := apiErr.Message
		if msg == "" {
			msg = fallback
		}
		s.appendLog(domainPrefix + msg)
	case errors.As(err, &netErr):
		s.appendLog("✗ Network error: " + netErr.Err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.appendLog("✗ Generation cancelled")
	default:
		s.appendLog(domainPrefix + err.Error())
	}
	s.setState(StateFailed)
	return err
}

// poll follows the job until it is terminal, logging milestones as the real
// percentage crosses them. The ticker is stopped on every return.
func (s *Session) poll(ctx context.Context, accepted *GenerateResult) (*JobStatus, error) {
	ticker := time.NewTicker(s.opts.PollInterval)
	defer ticker.Stop()

	next := 0
	for {
		select {
		case <-ctx.Done():
			return nil, s.fail(ctx.Err(), "✗ Error: ", "")
		case <-ticker.C:
		}

		job, err := s.client.GetJob(ctx, accepted.JobID)
		if err != nil {
			return nil, s.fail(err, "✗ Error: ", "Failed to read job status")
		}
		s.setPercent(job.Percent)
		for next < len(milestones) && job.Percent >= milestones[next] {
			s.appendLog(fmt.Sprintf("✓ %d%% complete (%d of %d processed)", milestones[next], job.Processed+job.Failed, job.Total))
			next++
		}
		if !job.Terminal() {
			continue
		}
		if job.Status == "failed" {
			msg := job.Message
			if msg == "" {
				msg = "Generation failed"
			}
			s.appendLog("✗ Error: " + msg)
			s.setState(StateFailed)
			return job, &APIError{Status: 0, Message: msg}
		}
		if job.Failed > 0 {
			s.appendLog(fmt.Sprintf("⚠ %d of %d certificates failed", job.Failed, job.Total))
		}
		s.setPercent(100)
		return job, nil
	}
}

// simulate advances 10 points per tick with fixed milestone lines. It is
// cosmetic: reaching 100 says nothing about the backend job.
func (s *Session) simulate(ctx context.Context) error {
	templateLine := "✓ Using predefined template"
	if s.TemplateRequired() {
		templateLine = "✓ Template uploaded"
	}
	lines := map[int]string{
		20: "✓ CSV uploaded successfully",
		40: templateLine,
		60: "✓ Processing participants...",
		80: "✓ Generating certificates...",
	}

	ticker := time.NewTicker(s.opts.PollInterval)
	defer ticker.Stop()
	for pct := 10; pct <= 100; pct += 10 {
		select {
		case <-ctx.Done():
			return s.fail(ctx.Err(), "✗ Error: ", "")
		case <-ticker.C:
		}
		s.setPercent(pct)
		if l, ok := lines[pct]; ok {
			s.appendLog(l)
		}
	}
	return nil
}

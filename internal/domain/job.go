package domain

import "time"

const (
	JobQueued    = "queued"
	JobRunning   = "running"
	JobCompleted = "completed"
	JobFailed    = "failed"
)

// GenerationJob tracks one bulk generation request. Percent is derived from
// Processed+Failed over Total and is persisted so clients can poll it.
type GenerationJob struct {
	JobID     string    `json:"id" dynamodbav:"job_id"`
	EventName string    `json:"event_name" dynamodbav:"event_name"`
	UploadID  string    `json:"upload_id" dynamodbav:"upload_id"`
	CreatedBy string    `json:"created_by" dynamodbav:"created_by"`
	Status    string    `json:"status" dynamodbav:"status"`
	Total     int       `json:"total" dynamodbav:"total"`
	Processed int       `json:"processed" dynamodbav:"processed"`
	Failed    int       `json:"failed" dynamodbav:"failed"`
	Emailed   int       `json:"emailed" dynamodbav:"emailed"`
	Percent   int       `json:"percent" dynamodbav:"percent"`
	Message   string    `json:"message" dynamodbav:"message"`
	Log       []string  `json:"log" dynamodbav:"log"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
}

// Terminal reports whether the job will not change any more.
func (j *GenerationJob) Terminal() bool {
	return j.Status == JobCompleted || j.Status == JobFailed
}

// ComputePercent returns the completion percentage for done out of total.
// An empty job is complete by definition.
func ComputePercent(done, total int) int {
	if total <= 0 {
		return 100
	}
	p := done * 100 / total
	if p > 100 {
		return 100
	}
	return p
}

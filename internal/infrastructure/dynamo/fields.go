package dynamo

// DynamoDB attribute names used in keys and update expressions across all repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldEmail     = "email"
	fieldEvent     = "event"
	fieldStatus    = "status"
	fieldObjectKey = "object_key"
	fieldIssuedAt  = "issued_at"
	fieldUpdatedAt = "updated_at"
	fieldJobID     = "job_id"
	fieldUploadID  = "upload_id"
	fieldEventID   = "event_id"
)

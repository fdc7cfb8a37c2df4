package generation

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// S3 key layout.
//
//	recipients/<upload_id>/<file>       staged recipient lists
//	templates/jobs/<job_id>/<file>      templates uploaded with a job
//	certificates/<event_id>/<stem>.png  rendered certificates
func recipientListKey(uploadID, filename string) string {
	return fmt.Sprintf("recipients/%s/%s", uploadID, sanitizeFilename(filename))
}

func jobTemplateKey(jobID, filename string) string {
	return fmt.Sprintf("templates/jobs/%s/%s", jobID, sanitizeFilename(filename))
}

func certificateKey(eventID, email string) string {
	return fmt.Sprintf("certificates/%s/%s_%s.png", sanitizeFilename(eventID), sanitizeFilename(eventID), sanitizeFilename(email))
}

// verifyURL links the recipient to the public verification page with the
// form pre-filled.
func verifyURL(base, email, eventID string) string {
	q := url.Values{}
	q.Set("email", email)
	q.Set("event", eventID)
	return strings.TrimRight(base, "/") + "/?" + q.Encode()
}

// sanitizeFilename strips directory components and keeps only safe characters
// (alphanumeric, dot, dash, underscore) to prevent path traversal in S3 keys.
func sanitizeFilename(name string) string {
	name = path.Base(name)
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	if result := b.String(); result != "" && result != "." && result != ".." {
		return result
	}
	return "_"
}

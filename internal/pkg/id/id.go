package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New generates a new ULID string. Job and upload IDs use it so that a
// lexicographic scan returns them in creation order.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

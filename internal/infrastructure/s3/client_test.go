package s3infra

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentType(t *testing.T) {
	cases := map[string]string{
		"templates/Sample1.PNG": "image/png",
		"certs/a.jpeg":          "image/jpeg",
		"uploads/list.csv":      "text/csv",
		"uploads/list.xlsx":     "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"unknown.bin":           "application/octet-stream",
	}
	for name, want := range cases {
		assert.Equal(t, want, ContentType(name), name)
	}
}

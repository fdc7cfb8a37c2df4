package portal

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

type AssetKind int

const (
	AssetTemplate AssetKind = iota + 1
	AssetRecipientList
)

func (k AssetKind) String() string {
	switch k {
	case AssetTemplate:
		return "template"
	case AssetRecipientList:
		return "recipient list"
	default:
		return "asset"
	}
}

// RecipientListExtensions are the tabular formats the backend parses.
var RecipientListExtensions = []string{".csv", ".xlsx"}

// UploadedAsset is a file picked by the operator. Data is sent as-is.
type UploadedAsset struct {
	Kind      AssetKind
	Name      string
	Path      string
	SizeBytes int64
	MIME      string
	Data      []byte
}

// NewAsset builds an in-memory asset. An empty mimeType is sniffed from the
// extension and then from the content.
func NewAsset(kind AssetKind, name string, data []byte, mimeType string) *UploadedAsset {
	if mimeType == "" {
		mimeType = detectMIME(name, data)
	}
	return &UploadedAsset{
		Kind:      kind,
		Name:      name,
		SizeBytes: int64(len(data)),
		MIME:      mimeType,
		Data:      data,
	}
}

// LoadAsset reads path from disk.
func LoadAsset(kind AssetKind, path string) (*UploadedAsset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", kind, err)
	}
	a := NewAsset(kind, filepath.Base(path), data, "")
	a.Path = path
	return a, nil
}

func detectMIME(name string, data []byte) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); t != "" {
		return t
	}
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	return http.DetectContentType(head)
}

// Preview renders "name (12.34 KB)" for recipient lists and "name (1.23 MB)"
// for templates.
func (a *UploadedAsset) Preview() string {
	if a.Kind == AssetTemplate {
		return fmt.Sprintf("%s (%.2f MB)", a.Name, float64(a.SizeBytes)/(1024*1024))
	}
	return fmt.Sprintf("%s (%.2f KB)", a.Name, float64(a.SizeBytes)/1024)
}

func hasTabularExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range RecipientListExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

func isImageMIME(m string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(m)), "image/")
}

package portal

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// DecodeTemplate returns the native pixel size of an image template.
func DecodeTemplate(a *UploadedAsset) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(a.Data))
	if err != nil {
		return 0, 0, fmt.Errorf("decode template %s: %w", a.Name, err)
	}
	return cfg.Width, cfg.Height, nil
}

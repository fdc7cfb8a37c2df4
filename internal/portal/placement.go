package portal

import (
	"fmt"
	"sync"
)

// PlacementConfig locates and styles the recipient name. X and Y are pixel
// offsets inside the rendered preview box, not template pixels.
type PlacementConfig struct {
	X, Y          float64
	PreviewWidth  float64
	PreviewHeight float64
	FontFamily    string
	FontSizePt    float64
	ColorHex      string
}

// Normalized maps (X, Y) into 0..1 of the preview box so the backend can
// scale it to the template's native resolution. Without a preview size it
// returns 0, 0.
func (p PlacementConfig) Normalized() (nx, ny float64) {
	if p.PreviewWidth <= 0 || p.PreviewHeight <= 0 {
		return 0, 0
	}
	return clamp01(p.X / p.PreviewWidth), clamp01(p.Y / p.PreviewHeight)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// Placement captures clicks on a template preview. Each click replaces the
// previous one and there is no undo.
type Placement struct {
	mu       sync.Mutex
	cfg      PlacementConfig
	captured bool
}

// NewPlacement prepares capture over a preview of the given on-screen size.
func NewPlacement(previewWidth, previewHeight float64) *Placement {
	return &Placement{cfg: PlacementConfig{
		PreviewWidth:  previewWidth,
		PreviewHeight: previewHeight,
		FontFamily:    "Arial",
		FontSizePt:    36,
		ColorHex:      "#000000",
	}}
}

// Capture records a click at (x, y) relative to the preview's top-left corner.
func (p *Placement) Capture(x, y float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cfg.PreviewWidth <= 0 || p.cfg.PreviewHeight <= 0 {
		return &RejectionError{Kind: AssetTemplate, Reason: "load a template preview before placing text"}
	}
	if x < 0 || y < 0 || x > p.cfg.PreviewWidth || y > p.cfg.PreviewHeight {
		return &RejectionError{Kind: AssetTemplate, Reason: fmt.Sprintf("click (%.0f, %.0f) is outside the preview", x, y)}
	}
	p.cfg.X, p.cfg.Y = x, y
	p.captured = true
	return nil
}

// Style sets font, size and color for the next generation.
func (p *Placement) Style(fontFamily string, sizePt float64, colorHex string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if fontFamily != "" {
		p.cfg.FontFamily = fontFamily
	}
	if sizePt > 0 {
		p.cfg.FontSizePt = sizePt
	}
	if colorHex != "" {
		p.cfg.ColorHex = colorHex
	}
}

// Config returns the current placement and whether a click was captured.
func (p *Placement) Config() (PlacementConfig, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg, p.captured
}

// Save acknowledges the coordinates locally. Nothing is transmitted.
func (p *Placement) Save() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.captured {
		return "", &RejectionError{Kind: AssetTemplate, Reason: "click on the template to choose a position first"}
	}
	return fmt.Sprintf("Coordinates saved: X=%.0f, Y=%.0f", p.cfg.X, p.cfg.Y), nil
}

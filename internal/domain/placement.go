package domain

import (
	"strconv"
	"strings"
)

// TextStyle describes how the recipient name is drawn.
type TextStyle struct {
	FontFamily string
	FontSizePt float64
	Color      RGB
}

type RGB struct{ R, G, B uint8 }

// ParseHexColor accepts #RRGGBB or #RGB (leading # optional).
func ParseHexColor(s string) (RGB, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(s) {
	case 3:
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	case 6:
	default:
		return RGB{}, Errorf(ErrBadRequest, "Invalid text color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, Errorf(ErrBadRequest, "Invalid text color %q", s)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// Anchor locates the text center on the template. Normalized coordinates win
// over raw pixels when both are present since they survive preview scaling.
type Anchor struct {
	NormX, NormY   float64
	HasNorm        bool
	PixelX, PixelY int
}

// Resolve returns the anchor in native template pixels.
func (a Anchor) Resolve(width, height int) (int, int) {
	if a.HasNorm {
		return int(a.NormX*float64(width) + 0.5), int(a.NormY*float64(height) + 0.5)
	}
	return a.PixelX, a.PixelY
}

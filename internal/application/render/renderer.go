// Package render composites recipient names onto certificate templates.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"

	"github.com/certportal/internal/domain"
	"github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Request describes one certificate to draw.
type Request struct {
	Template  image.Image
	Name      string
	Style     domain.TextStyle
	Anchor    domain.Anchor
	VerifyURL string // stamped as a QR code when non-empty and QR stamping is on
}

// Renderer is safe for concurrent use; each Render call builds its own face.
type Renderer struct {
	font    *opentype.Font
	stampQR bool
}

// New loads the TTF/OTF at fontPath, or Go Regular when fontPath is empty.
func New(fontPath string, stampQR bool) (*Renderer, error) {
	data := goregular.TTF
	if fontPath != "" {
		b, err := os.ReadFile(fontPath)
		if err != nil {
			return nil, fmt.Errorf("read font: %w", err)
		}
		data = b
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return &Renderer{font: f, stampQR: stampQR}, nil
}

// DecodeTemplate decodes a PNG, JPEG or GIF template image.
func DecodeTemplate(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("template is not a supported image: %w", domain.ErrBadRequest)
	}
	return img, nil
}

// Render draws the name centered on the anchor and returns PNG bytes.
func (r *Renderer) Render(req Request) ([]byte, error) {
	b := req.Template.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(canvas, canvas.Bounds(), req.Template, b.Min, draw.Src)

	size := req.Style.FontSizePt
	if size <= 0 {
		size = 36
	}
	face, err := opentype.NewFace(r.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("font face: %w", err)
	}
	defer face.Close()

	c := req.Style.Color
	d := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}),
		Face: face,
	}
	cx, cy := req.Anchor.Resolve(b.Dx(), b.Dy())
	d.Dot = centeredDot(d, face.Metrics(), req.Name, cx, cy)
	d.DrawString(req.Name)

	if r.stampQR && req.VerifyURL != "" {
		if err := stampQR(canvas, req.VerifyURL); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// centeredDot returns the baseline origin that centers s on (cx, cy).
func centeredDot(d *font.Drawer, m font.Metrics, s string, cx, cy int) fixed.Point26_6 {
	width := d.MeasureString(s)
	height := m.Ascent + m.Descent
	return fixed.Point26_6{
		X: fixed.I(cx) - width/2,
		Y: fixed.I(cy) - height/2 + m.Ascent,
	}
}

// stampQR draws a QR code linking to url in the bottom-right corner, sized to
// an eighth of the shorter template side.
func stampQR(canvas *image.RGBA, url string) error {
	q, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		return fmt.Errorf("qr code: %w", err)
	}
	b := canvas.Bounds()
	side := b.Dx()
	if b.Dy() < side {
		side = b.Dy()
	}
	side /= 8
	if side < 48 {
		return nil
	}
	margin := side / 4
	img := q.Image(side)
	at := image.Rect(b.Max.X-side-margin, b.Max.Y-side-margin, b.Max.X-margin, b.Max.Y-margin)
	draw.Draw(canvas, at, img, img.Bounds().Min, draw.Src)
	return nil
}

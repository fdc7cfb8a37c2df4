package portal

import (
	"strconv"
	"strings"

	"github.com/certportal/internal/pkg/validate"
)

// Control is the observable state of a button.
type Control struct {
	Label    string
	Disabled bool
}

// GenerateForm is the generation form after binding.
type GenerateForm struct {
	EventName  string       `form:"eventName" validate:"required"`
	FontFamily string       `form:"fontFamily" validate:"required"`
	FontSize   string       `form:"fontSize" validate:"required,numeric"`
	TextColor  string       `form:"textColor" validate:"required,hexcolor"`
	CenterX    string       `form:"centerX" validate:"required,numeric"`
	CenterY    string       `form:"centerY" validate:"required,numeric"`
	Template   string       `form:"template" validate:"required_if=Mode upload"`
	Mode       TemplateMode `form:"-"`
}

// BindForm checks every required field at once. All missing or malformed
// fields are reported together in a *MissingFieldsError.
func BindForm(values map[string]string, mode TemplateMode) (*GenerateForm, error) {
	get := func(k string) string { return strings.TrimSpace(values[k]) }
	f := &GenerateForm{
		EventName:  get("eventName"),
		FontFamily: get("fontFamily"),
		FontSize:   get("fontSize"),
		TextColor:  get("textColor"),
		CenterX:    get("centerX"),
		CenterY:    get("centerY"),
		Template:   get("template"),
		Mode:       mode,
	}
	if fields := validate.Fields(f); len(fields) > 0 {
		return nil, &MissingFieldsError{Fields: fields}
	}
	return f, nil
}

// Placement converts the bound form into a PlacementConfig. Raw coordinates
// carry no preview size, so they are sent as template pixels.
func (f *GenerateForm) Placement() PlacementConfig {
	size, _ := strconv.ParseFloat(f.FontSize, 64)
	x, _ := strconv.ParseFloat(f.CenterX, 64)
	y, _ := strconv.ParseFloat(f.CenterY, 64)
	return PlacementConfig{X: x, Y: y, FontFamily: f.FontFamily, FontSizePt: size, ColorHex: f.TextColor}
}

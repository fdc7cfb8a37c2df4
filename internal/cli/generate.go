package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/certportal/internal/cli/ui"
	"github.com/certportal/internal/portal"
)

var genFlags struct {
	csv           string
	template      string
	event         string
	x, y          float64
	previewWidth  float64
	previewHeight float64
	font          string
	size          float64
	color         string
	simulated     bool
	upload        bool
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Upload a recipient list and generate certificates for an event",
	Long: "Uploads the recipient list, submits bulk generation and follows the job\n" +
		"until it finishes. --x and --y are read against --preview-width and\n" +
		"--preview-height when given, otherwise against the template's own size.",
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.StringVar(&genFlags.csv, "csv", "", "recipient list (.csv or .xlsx)")
	f.StringVar(&genFlags.template, "template", "", "template image, required when the portal expects uploads")
	f.StringVar(&genFlags.event, "event", "", "event name")
	f.Float64Var(&genFlags.x, "x", -1, "horizontal text anchor")
	f.Float64Var(&genFlags.y, "y", -1, "vertical text anchor")
	f.Float64Var(&genFlags.previewWidth, "preview-width", 0, "width of the preview the anchor was picked on")
	f.Float64Var(&genFlags.previewHeight, "preview-height", 0, "height of the preview the anchor was picked on")
	f.StringVar(&genFlags.font, "font", "Arial", "font family")
	f.Float64Var(&genFlags.size, "size", 36, "font size in points")
	f.StringVar(&genFlags.color, "color", "#000000", "text color as #rrggbb")
	f.BoolVar(&genFlags.simulated, "simulated", false, "show simulated progress instead of polling the job")
	f.BoolVar(&genFlags.upload, "upload-template", false, "require an uploaded template regardless of config")
	_ = generateCmd.MarkFlagRequired("csv")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	mode := portal.TemplateMode(appConfig.TemplateMode)
	if genFlags.upload {
		mode = portal.TemplateUpload
	}

	values := map[string]string{
		"eventName":  genFlags.event,
		"fontFamily": genFlags.font,
		"fontSize":   strconv.FormatFloat(genFlags.size, 'f', -1, 64),
		"textColor":  genFlags.color,
		"template":   genFlags.template,
	}
	if genFlags.x >= 0 && genFlags.y >= 0 {
		values["centerX"] = strconv.FormatFloat(genFlags.x, 'f', -1, 64)
		values["centerY"] = strconv.FormatFloat(genFlags.y, 'f', -1, 64)
	}
	form, err := portal.BindForm(values, mode)
	if err != nil {
		return err
	}

	progress := portal.ProgressPolled
	if genFlags.simulated || appConfig.ProgressMode == string(portal.ProgressSimulated) {
		progress = portal.ProgressSimulated
	}
	session := portal.NewSession(client, portal.Options{
		TemplateMode:     mode,
		ProgressMode:     progress,
		PollInterval:     appConfig.PollInterval(),
		MaxTemplateBytes: appConfig.MaxTemplateBytes,
		OnLog: func(line string) {
			fmt.Printf("\r\033[K%s\n", ui.FormatLogLine(line))
		},
		OnProgress: func(p int) {
			fmt.Printf("\r\033[K%s", ui.ProgressBar(p, 30))
		},
	})

	list, err := portal.LoadAsset(portal.AssetRecipientList, genFlags.csv)
	if err != nil {
		return err
	}
	if _, err := session.SelectRecipientList(list); err != nil {
		return err
	}
	fmt.Println(ui.FormatInfo("Recipient list: " + list.Preview()))

	var native [2]float64
	if genFlags.template != "" {
		tmpl, err := portal.LoadAsset(portal.AssetTemplate, genFlags.template)
		if err != nil {
			return err
		}
		if err := session.OfferTemplate(tmpl); err != nil {
			return err
		}
		w, h, err := portal.DecodeTemplate(tmpl)
		if err != nil {
			return err
		}
		native = [2]float64{float64(w), float64(h)}
		fmt.Println(ui.FormatInfo(fmt.Sprintf("Template: %s, %dx%d", tmpl.Preview(), w, h)))
	}

	placement, err := resolvePlacement(session, form, native)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(getContext(), os.Interrupt)
	defer stop()

	out, err := session.Generate(ctx, portal.GenerateParams{EventName: form.EventName, Placement: placement})
	fmt.Println()
	if err != nil {
		return err
	}
	if out.JobID != "" {
		fmt.Println(ui.FormatMuted("job: " + out.JobID))
	}
	return nil
}

// resolvePlacement captures the anchor against the preview it was picked on:
// the flags, then the configured preview, then the template's own size.
// Without any of them the raw coordinates are sent as template pixels.
func resolvePlacement(s *portal.Session, form *portal.GenerateForm, native [2]float64) (portal.PlacementConfig, error) {
	w, h := genFlags.previewWidth, genFlags.previewHeight
	if w <= 0 || h <= 0 {
		w, h = float64(appConfig.PreviewWidth), float64(appConfig.PreviewHeight)
	}
	if w <= 0 || h <= 0 {
		w, h = native[0], native[1]
	}
	raw := form.Placement()
	if w <= 0 || h <= 0 {
		return raw, nil
	}

	p := s.Placement(w, h)
	if err := p.Capture(raw.X, raw.Y); err != nil {
		return portal.PlacementConfig{}, err
	}
	p.Style(raw.FontFamily, raw.FontSizePt, raw.ColorHex)
	cfg, _ := p.Config()
	return cfg, nil
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/certportal/internal/cli/ui"
	"github.com/certportal/internal/portal"
)

var placeFlags struct {
	previewWidth  float64
	previewHeight float64
}

var placeCmd = &cobra.Command{
	Use:   "place <template> <x> <y>",
	Short: "Check a text anchor against a template before generating",
	Long: "Captures (x, y) on a preview of the template and prints the saved\n" +
		"coordinates together with where they land on the full-size template.\n" +
		"Nothing is sent to the portal.",
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		var x, y float64
		if _, err := fmt.Sscanf(args[1]+" "+args[2], "%g %g", &x, &y); err != nil {
			return fmt.Errorf("coordinates must be numbers: %w", err)
		}

		tmpl, err := portal.LoadAsset(portal.AssetTemplate, args[0])
		if err != nil {
			return err
		}
		w, h, err := portal.DecodeTemplate(tmpl)
		if err != nil {
			return err
		}

		pw, ph := placeFlags.previewWidth, placeFlags.previewHeight
		if pw <= 0 || ph <= 0 {
			pw, ph = float64(w), float64(h)
		}
		p := portal.NewPlacement(pw, ph)
		if err := p.Capture(x, y); err != nil {
			return err
		}
		msg, err := p.Save()
		if err != nil {
			return err
		}
		cfg, _ := p.Config()
		nx, ny := cfg.Normalized()

		fmt.Println(ui.FormatSuccess(msg))
		fmt.Println(ui.FormatMuted(fmt.Sprintf("preview %.0fx%.0f, template %dx%d", pw, ph, w, h)))
		fmt.Println(ui.FormatInfo(fmt.Sprintf("Lands at %.0f, %.0f on the template (%.4f, %.4f)", nx*float64(w), ny*float64(h), nx, ny)))
		return nil
	},
}

func init() {
	placeCmd.Flags().Float64Var(&placeFlags.previewWidth, "preview-width", 0, "width of the preview the click was made on")
	placeCmd.Flags().Float64Var(&placeFlags.previewHeight, "preview-height", 0, "height of the preview the click was made on")
}

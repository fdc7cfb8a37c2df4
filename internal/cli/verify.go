package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/certportal/internal/cli/ui"
	"github.com/certportal/internal/portal"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <email> <event>",
	Short: "Look up a recipient's certificate",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		v := portal.NewVerifier(client)
		panel, err := v.Verify(getContext(), args[0], args[1])
		if err != nil {
			return err
		}

		out := ui.Panel(panel.Lines())
		switch panel.Kind {
		case portal.PanelFound:
			out = ui.StyleSuccess.Render(out)
		case portal.PanelPending:
			out = ui.StyleWarning.Render(out)
		default:
			out = ui.StyleError.Render(out)
		}
		fmt.Println(out)
		return nil
	},
}

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/certportal/internal/cli/ui"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List the events visible to the signed-in operator",
	RunE: func(cmd *cobra.Command, args []string) error {
		events, err := client.ListEvents(getContext())
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Println(ui.FormatInfo("No events"))
			return nil
		}

		fmt.Println(ui.FormatBold(fmt.Sprintf("%-28s %-32s %-10s %s", "ID", "NAME", "STATUS", "ROLES")))
		for _, e := range events {
			fmt.Printf("%-28s %-32s %-10s %s\n", e.ID, e.Name, e.Status, ui.FormatMuted(strings.Join(e.AssignedRoles, ",")))
		}
		return nil
	},
}

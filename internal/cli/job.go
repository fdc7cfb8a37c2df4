package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/certportal/internal/cli/ui"
)

var jobCmd = &cobra.Command{
	Use:   "job <id>",
	Short: "Show the status of a generation job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		job, err := client.GetJob(getContext(), args[0])
		if err != nil {
			return err
		}

		fmt.Println(ui.FormatTitle("Job " + job.ID))
		fmt.Println(ui.ProgressBar(job.Percent, 30))
		fmt.Printf("status %s, %d of %d processed, %d failed\n", job.Status, job.Processed, job.Total, job.Failed)
		if job.Message != "" {
			fmt.Println(ui.FormatMuted(job.Message))
		}
		for _, line := range job.Log {
			fmt.Println(ui.FormatLogLine(line))
		}
		return nil
	},
}

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"valsign/internal/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status <job-id>",
	Short: "Query the current state of a validation job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gw, err := newGateway()
		if err != nil {
			return err
		}
		update, err := gw.Status(context.Background(), args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "job %s: %s %d%%\n", update.JobID, update.Status, update.Progress)
		for _, f := range update.Files {
			line := string(f.State)
			if f.State == domain.FileValidated {
				if f.IsValid {
					line = "valid signature"
				} else {
					line = "invalid signature"
				}
			}
			if f.Error != "" {
				line += " (" + f.Error + ")"
			}
			fmt.Fprintf(out, "  %-40s %s\n", f.Filename, line)
		}
		if update.ReportAvailable() {
			fmt.Fprintln(out, "report is ready, fetch it with: valsign report "+update.JobID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

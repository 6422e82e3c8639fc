package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var reportDest string

var reportCmd = &cobra.Command{
	Use:   "report <job-id>",
	Short: "Download the report of a completed job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gw, err := newGateway()
		if err != nil {
			return err
		}
		if reportDest == "" {
			return gw.FetchReport(context.Background(), args[0], cmd.OutOrStdout())
		}
		f, err := os.Create(reportDest)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := gw.FetchReport(context.Background(), args[0], f); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "report saved to %s\n", reportDest)
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVarP(&reportDest, "output", "o", "", "write the report to this file instead of stdout")
	rootCmd.AddCommand(reportCmd)
}

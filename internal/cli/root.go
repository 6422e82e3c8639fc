// Package cli implements the valsign command line client: batch
// submission, job status queries and report downloads against a running
// validation service.
package cli

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"valsign/internal/client/gateway"
	"valsign/internal/infra"
)

var (
	serverURL    string
	pollInterval time.Duration
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "valsign",
	Short: "Batch digital-signature validation client",
	Long: `valsign submits batches of PDF documents to a validation service,
follows job progress while signatures are checked, and downloads the
resulting report.

Available commands:
  submit   - Upload a batch of PDFs and watch the job until it finishes
  status   - Query the current state of a validation job
  report   - Download the report of a completed job`,
	SilenceUsage: true,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	defaultServer := os.Getenv("VALSIGN_SERVER")
	if defaultServer == "" {
		defaultServer = "http://localhost:8080"
	}
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServer, "base URL of the validation service (env VALSIGN_SERVER)")
	rootCmd.PersistentFlags().DurationVar(&pollInterval, "interval", 2*time.Second, "status poll interval")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log request details to stderr")
}

func newGateway() (*gateway.Client, error) {
	logger := infra.NewLogger("production", "")
	if verbose {
		logger = infra.NewLogger("development", "")
	}
	return gateway.NewClient(gateway.Options{
		BaseURL: serverURL,
		Logger:  &logger,
	})
}

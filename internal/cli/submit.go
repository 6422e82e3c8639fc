package cli

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"valsign/internal/client/gateway"
	"valsign/internal/client/orchestrator"
	"valsign/internal/client/selection"
	"valsign/internal/domain"
)

var reportOut string

var submitCmd = &cobra.Command{
	Use:   "submit <file>...",
	Short: "Upload a batch of PDFs and watch the job until it finishes",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSubmit,
}

func init() {
	submitCmd.Flags().StringVar(&reportOut, "report", "", "download the report to this path once the job completes")
	rootCmd.AddCommand(submitCmd)
}

func runSubmit(cmd *cobra.Command, args []string) error {
	gw, err := newGateway()
	if err != nil {
		return err
	}
	candidates, err := candidatesFromPaths(args)
	if err != nil {
		return err
	}

	snapshots := make(chan orchestrator.Snapshot, 16)
	orch, err := orchestrator.New(orchestrator.Options{
		Gateway:      gw,
		PollInterval: pollInterval,
		Notify:       func(s orchestrator.Snapshot) { snapshots <- s },
	})
	if err != nil {
		return err
	}

	if err := orch.AddFiles(candidates...); err != nil {
		return fmt.Errorf("selection rejected: %w", err)
	}
	for _, f := range orch.Selection() {
		fmt.Fprintf(cmd.OutOrStdout(), "selected %s (%d bytes)\n", f.Name, f.SizeBytes)
	}

	if err := orch.Submit(context.Background()); err != nil {
		return err
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	out := cmd.OutOrStdout()
	for {
		select {
		case <-interrupt:
			orch.Reset()
			fmt.Fprintln(out, "cancelled")
			return nil
		case snap := <-snapshots:
			renderSnapshot(out, snap)
			switch snap.State {
			case orchestrator.StateCompleted:
				if reportOut != "" && snap.Job != nil {
					return downloadReport(gw, snap.Job.ID, reportOut, out)
				}
				return nil
			case orchestrator.StateFailed:
				if snap.Fault != nil {
					return snap.Fault
				}
				return fmt.Errorf("job failed")
			}
		}
	}
}

func candidatesFromPaths(paths []string) ([]selection.Candidate, error) {
	out := make([]selection.Candidate, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		mediaType := mime.TypeByExtension(strings.ToLower(filepath.Ext(p)))
		if mediaType == "" {
			mediaType = "application/octet-stream"
		}
		path := p
		out = append(out, selection.Candidate{
			Name:      filepath.Base(p),
			SizeBytes: info.Size(),
			MediaType: mediaType,
			Open:      func() (io.ReadCloser, error) { return os.Open(path) },
		})
	}
	return out, nil
}

func renderSnapshot(out io.Writer, snap orchestrator.Snapshot) {
	switch snap.State {
	case orchestrator.StateSubmitting:
		fmt.Fprintln(out, "uploading batch...")
	case orchestrator.StatePolling:
		if snap.Job != nil {
			fmt.Fprintf(out, "job %s: %s %d%%\n", snap.Job.ID, snap.Job.Status, snap.Job.Progress)
		}
	case orchestrator.StateCompleted:
		if snap.Job != nil {
			fmt.Fprintf(out, "job %s completed\n", snap.Job.ID)
			for _, f := range snap.Job.Files {
				marker := "invalid"
				if f.IsValid {
					marker = "valid"
				}
				if f.State == domain.FileError {
					marker = "error: " + f.Error
				}
				fmt.Fprintf(out, "  %-40s %s\n", f.Filename, marker)
			}
		}
	case orchestrator.StateFailed:
		if snap.Fault != nil {
			fmt.Fprintf(out, "failed during %s: %v\n", snap.Fault.Phase, snap.Fault.Err)
		}
	}
}

func downloadReport(gw *gateway.Client, jobID, dest string, out io.Writer) error {
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := gw.FetchReport(context.Background(), jobID, f); err != nil {
		return err
	}
	fmt.Fprintf(out, "report saved to %s\n", dest)
	return nil
}

// Package report writes the per-job summary artifact that the report
// endpoint serves. The artifact is a JSON document; turning it into a
// formatted deliverable is left to downstream tooling.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"valsign/internal/domain"
	"valsign/internal/storage"
)

// Writer produces report artifacts into a file store rooted at the report
// directory.
type Writer struct {
	store *storage.FileStore
}

// NewWriter wraps the given store.
func NewWriter(store *storage.FileStore) *Writer {
	return &Writer{store: store}
}

type fileSummary struct {
	Filename string `json:"filename"`
	Status   string `json:"status"`
	IsValid  bool   `json:"is_valid"`
	Error    string `json:"error,omitempty"`
}

type rejectedSummary struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

type summary struct {
	JobID       string            `json:"job_id"`
	GeneratedAt time.Time         `json:"generated_at"`
	TotalFiles  int               `json:"total_files"`
	ValidFiles  int               `json:"valid_files"`
	ErrorFiles  int               `json:"error_files"`
	Files       []fileSummary     `json:"files"`
	Rejected    []rejectedSummary `json:"rejected,omitempty"`
}

// Write renders the job summary and returns the storage key of the artifact.
func (w *Writer) Write(ctx context.Context, job *domain.Job) (string, error) {
	s := summary{
		JobID:       job.ID,
		GeneratedAt: time.Now().UTC(),
		TotalFiles:  len(job.Files),
	}
	for _, f := range job.Files {
		s.Files = append(s.Files, fileSummary{
			Filename: f.Filename,
			Status:   f.State.Wire(),
			IsValid:  f.IsValid,
			Error:    f.Error,
		})
		switch {
		case f.State == domain.FileValidated && f.IsValid:
			s.ValidFiles++
		case f.State == domain.FileError:
			s.ErrorFiles++
		}
	}
	for _, r := range job.Rejected {
		s.Rejected = append(s.Rejected, rejectedSummary{Filename: r.Filename, Reason: r.Reason})
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("report: encode summary: %w", err)
	}
	key := Key(job.ID)
	saved, _, err := w.store.Save(ctx, key, strings.NewReader(string(data)))
	if err != nil {
		return "", fmt.Errorf("report: persist summary: %w", err)
	}
	return saved, nil
}

// Store exposes the backing file store so callers can open artifacts.
func (w *Writer) Store() *storage.FileStore {
	return w.store
}

// Key returns the artifact key for a job id.
func Key(jobID string) string {
	return fmt.Sprintf("report_%s.json", jobID)
}

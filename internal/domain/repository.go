package domain

import "context"

// JobStore defines persistence for validation jobs. Implementations must be
// safe for concurrent use; the HTTP handlers and the background worker share
// one store.
type JobStore interface {
	// Create persists a new job in its initial state.
	Create(ctx context.Context, job *Job) error
	// Get returns a copy of the job, or ErrJobNotFound.
	Get(ctx context.Context, jobID string) (*Job, error)
	// ClaimPending atomically picks one pending job and marks it processing.
	// Returns ErrNotFound when no job is waiting.
	ClaimPending(ctx context.Context) (*Job, error)
	// SetProgress updates the job's reported progress percentage.
	SetProgress(ctx context.Context, jobID string, progress int) error
	// SetFileResult replaces the outcome of the file at the given index.
	SetFileResult(ctx context.Context, jobID string, index int, result FileResult) error
	// Complete marks the job completed with its report artifact path.
	Complete(ctx context.Context, jobID string, reportPath string) error
}

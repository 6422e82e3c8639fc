// Package worker drains the pending-job queue: it claims one batch at a
// time, validates each stored document, writes the report artifact, and
// marks the job complete.
package worker

import (
	"context"
	"errors"
	"time"

	"valsign/internal/domain"
	"valsign/internal/infra"
	"valsign/internal/report"
	"valsign/internal/storage"
	"valsign/internal/validation"
)

// Options wires a Worker's collaborators.
type Options struct {
	Store        domain.JobStore
	Uploads      *storage.FileStore
	Checker      validation.Checker
	Reports      *report.Writer
	Logger       infra.Logger
	PollInterval time.Duration
}

// Worker processes validation jobs until its context is cancelled.
type Worker struct {
	store    domain.JobStore
	uploads  *storage.FileStore
	checker  validation.Checker
	reports  *report.Writer
	logger   infra.Logger
	interval time.Duration
}

// New constructs a Worker.
func New(opts Options) *Worker {
	interval := opts.PollInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	checker := opts.Checker
	if checker == nil {
		checker = &validation.PDFChecker{}
	}
	return &Worker{
		store:    opts.Store,
		uploads:  opts.Uploads,
		checker:  checker,
		reports:  opts.Reports,
		logger:   opts.Logger,
		interval: interval,
	}
}

// Run claims and processes jobs until ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info().Msg("worker: started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := w.RunOnce(ctx)
		if err == nil {
			continue
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if !errors.Is(err, domain.ErrNotFound) {
			w.logger.Error().Err(err).Msg("worker: job processing failed")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.interval):
		}
	}
}

// RunOnce claims a single pending job and processes it to completion.
// Returns domain.ErrNotFound when the queue is empty.
func (w *Worker) RunOnce(ctx context.Context) error {
	job, err := w.store.ClaimPending(ctx)
	if err != nil {
		return err
	}
	w.logger.Info().Str("job_id", job.ID).Int("files", len(job.Files)).Msg("worker: picked job")
	return w.process(ctx, job)
}

func (w *Worker) process(ctx context.Context, job *domain.Job) error {
	total := len(job.Files)
	for i, f := range job.Files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if total > 0 {
			if err := w.store.SetProgress(ctx, job.ID, i*100/total); err != nil {
				return err
			}
		}
		f.State = domain.FileProcessing
		if err := w.store.SetFileResult(ctx, job.ID, i, f); err != nil {
			return err
		}

		f = w.checkFile(ctx, f)
		if err := w.store.SetFileResult(ctx, job.ID, i, f); err != nil {
			return err
		}
	}

	// Re-read so the report reflects the stored outcomes.
	finished, err := w.store.Get(ctx, job.ID)
	if err != nil {
		return err
	}
	reportKey, err := w.reports.Write(ctx, finished)
	if err != nil {
		return err
	}
	if err := w.store.Complete(ctx, job.ID, reportKey); err != nil {
		return err
	}
	w.logger.Info().Str("job_id", job.ID).Str("report", reportKey).Msg("worker: job completed")
	return nil
}

func (w *Worker) checkFile(ctx context.Context, f domain.FileResult) domain.FileResult {
	path, err := w.uploads.Resolve(f.Path)
	if err == nil {
		var res validation.Result
		res, err = w.checker.Check(ctx, path)
		if err == nil {
			f.State = domain.FileValidated
			f.IsValid = res.Valid
			f.Error = res.Reason
			return f
		}
	}
	w.logger.Warn().Err(err).Str("filename", f.Filename).Msg("worker: file check failed")
	f.State = domain.FileError
	f.IsValid = false
	f.Error = err.Error()
	return f
}

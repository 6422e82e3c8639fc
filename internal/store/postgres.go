package store

import (
	"context"
	"fmt"

	"valsign/internal/domain"
	"valsign/internal/infra"
	"valsign/internal/sqlinline"
)

// Postgres persists jobs through the shared SQLRunner. Schema: one
// validation_jobs row per batch, validation_files rows keyed by (job_id,
// idx) in submission order, rejected_files for refused uploads.
type Postgres struct {
	runner infra.SQLExecutor
}

// NewPostgres wraps the given executor.
func NewPostgres(runner infra.SQLExecutor) *Postgres {
	return &Postgres{runner: runner}
}

func (p *Postgres) Create(ctx context.Context, job *domain.Job) error {
	if _, err := p.runner.Exec(ctx, sqlinline.QInsertJob,
		job.ID, job.CreatedAt, job.Status.Wire(), job.Progress, job.ReportPath,
	); err != nil {
		return fmt.Errorf("store: insert job: %w", err)
	}
	for i, f := range job.Files {
		if _, err := p.runner.Exec(ctx, sqlinline.QInsertJobFile,
			job.ID, i, f.Filename, f.Path, f.State.Wire(), f.IsValid, f.Error,
		); err != nil {
			return fmt.Errorf("store: insert job file: %w", err)
		}
	}
	for _, r := range job.Rejected {
		if _, err := p.runner.Exec(ctx, sqlinline.QInsertRejectedFile,
			job.ID, r.Filename, r.Reason,
		); err != nil {
			return fmt.Errorf("store: insert rejected file: %w", err)
		}
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, jobID string) (*domain.Job, error) {
	row := p.runner.QueryRow(ctx, sqlinline.QSelectJob, jobID)
	job, err := scanJob(row.Scan)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("store: select job: %w", err)
	}
	if err := p.loadFiles(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (p *Postgres) ClaimPending(ctx context.Context) (*domain.Job, error) {
	row := p.runner.QueryRow(ctx, sqlinline.QClaimPendingJob,
		domain.JobProcessing.Wire(), domain.JobPending.Wire(),
	)
	job, err := scanJob(row.Scan)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("store: claim pending job: %w", err)
	}
	if err := p.loadFiles(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (p *Postgres) SetProgress(ctx context.Context, jobID string, progress int) error {
	if _, err := p.runner.Exec(ctx, sqlinline.QUpdateJobProgress, jobID, progress); err != nil {
		return fmt.Errorf("store: update progress: %w", err)
	}
	return nil
}

func (p *Postgres) SetFileResult(ctx context.Context, jobID string, index int, result domain.FileResult) error {
	if _, err := p.runner.Exec(ctx, sqlinline.QUpdateJobFile,
		jobID, index, result.State.Wire(), result.IsValid, result.Error,
	); err != nil {
		return fmt.Errorf("store: update file result: %w", err)
	}
	return nil
}

func (p *Postgres) Complete(ctx context.Context, jobID string, reportPath string) error {
	if _, err := p.runner.Exec(ctx, sqlinline.QCompleteJob,
		jobID, domain.JobCompleted.Wire(), reportPath,
	); err != nil {
		return fmt.Errorf("store: complete job: %w", err)
	}
	return nil
}

func (p *Postgres) loadFiles(ctx context.Context, job *domain.Job) error {
	rows, err := p.runner.Query(ctx, sqlinline.QSelectJobFiles, job.ID)
	if err != nil {
		return fmt.Errorf("store: select job files: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var f domain.FileResult
		var wireState string
		if err := rows.Scan(&f.Filename, &f.Path, &wireState, &f.IsValid, &f.Error); err != nil {
			return fmt.Errorf("store: scan job file: %w", err)
		}
		state, ok := domain.ParseFileState(wireState)
		if !ok {
			return fmt.Errorf("store: unknown file state %q for job %s", wireState, job.ID)
		}
		f.State = state
		job.Files = append(job.Files, f)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("store: iterate job files: %w", err)
	}

	rejected, err := p.runner.Query(ctx, sqlinline.QSelectRejectedFiles, job.ID)
	if err != nil {
		return fmt.Errorf("store: select rejected files: %w", err)
	}
	defer rejected.Close()
	for rejected.Next() {
		var r domain.RejectedFile
		if err := rejected.Scan(&r.Filename, &r.Reason); err != nil {
			return fmt.Errorf("store: scan rejected file: %w", err)
		}
		job.Rejected = append(job.Rejected, r)
	}
	if err := rejected.Err(); err != nil {
		return fmt.Errorf("store: iterate rejected files: %w", err)
	}
	return nil
}

func scanJob(scan func(dest ...any) error) (*domain.Job, error) {
	var job domain.Job
	var wireStatus string
	if err := scan(&job.ID, &job.CreatedAt, &wireStatus, &job.Progress, &job.ReportPath); err != nil {
		return nil, err
	}
	status, ok := domain.ParseJobStatus(wireStatus)
	if !ok {
		return nil, fmt.Errorf("unknown job status %q", wireStatus)
	}
	job.Status = status
	return &job, nil
}

var _ domain.JobStore = (*Postgres)(nil)

// Package store provides job persistence. The in-memory implementation
// mirrors the original single-process deployment; the Postgres one survives
// restarts and lets several instances share a queue.
package store

import (
	"context"
	"sync"

	"valsign/internal/domain"
)

// Memory is an in-memory JobStore safe for concurrent use.
type Memory struct {
	mu   sync.RWMutex
	jobs map[string]*domain.Job
	// order preserves creation order so ClaimPending is FIFO.
	order []string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{jobs: make(map[string]*domain.Job)}
}

func (m *Memory) Create(ctx context.Context, job *domain.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID] = cloneJob(job)
	m.order = append(m.order, job.ID)
	return nil
}

func (m *Memory) Get(ctx context.Context, jobID string) (*domain.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	return cloneJob(job), nil
}

func (m *Memory) ClaimPending(ctx context.Context) (*domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.order {
		job := m.jobs[id]
		if job != nil && job.Status == domain.JobPending {
			job.Status = domain.JobProcessing
			return cloneJob(job), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *Memory) SetProgress(ctx context.Context, jobID string, progress int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return domain.ErrJobNotFound
	}
	job.Progress = progress
	return nil
}

func (m *Memory) SetFileResult(ctx context.Context, jobID string, index int, result domain.FileResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return domain.ErrJobNotFound
	}
	if index < 0 || index >= len(job.Files) {
		return domain.ErrNotFound
	}
	job.Files[index] = result
	return nil
}

func (m *Memory) Complete(ctx context.Context, jobID string, reportPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return domain.ErrJobNotFound
	}
	job.Status = domain.JobCompleted
	job.Progress = 100
	job.ReportPath = reportPath
	return nil
}

func cloneJob(job *domain.Job) *domain.Job {
	out := *job
	out.Files = append([]domain.FileResult(nil), job.Files...)
	out.Rejected = append([]domain.RejectedFile(nil), job.Rejected...)
	return &out
}

var _ domain.JobStore = (*Memory)(nil)

// Package orchestrator is the top-level controller for batch submission and
// asynchronous job-status polling. It owns the selection, the single active
// job, and the poller bound to it, and emits immutable state snapshots that
// a stateless presentation layer can redraw from.
package orchestrator

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"valsign/internal/client/selection"
	"valsign/internal/domain"
	"valsign/internal/infra"
)

var (
	// ErrEmptySelection is surfaced when the user submits with nothing
	// selected. No network call is made.
	ErrEmptySelection = errors.New("orchestrator: selection is empty")
	// ErrSubmissionActive rejects a second submission, or a selection
	// mutation, while one is in flight or being polled.
	ErrSubmissionActive = errors.New("orchestrator: submission already active")
	// ErrSuperseded indicates a reset happened while the submission was in
	// flight; its outcome was discarded.
	ErrSuperseded = errors.New("orchestrator: run superseded by reset")
)

// State is the orchestrator lifecycle.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StatePolling    State = "polling"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// Phase tags where a fault happened; user messaging differs between a
// rejected selection, a failed submission, and a broken poll.
type Phase string

const (
	PhaseSelection Phase = "selection"
	PhaseSubmit    Phase = "submit"
	PhasePoll      Phase = "poll"
)

// Fault is the error payload carried by a snapshot.
type Fault struct {
	Phase Phase
	Err   error
}

func (f *Fault) Error() string {
	return string(f.Phase) + ": " + f.Err.Error()
}

func (f *Fault) Unwrap() error { return f.Err }

// Gateway is the backend surface the orchestrator depends on.
type Gateway interface {
	Submit(ctx context.Context, files []selection.Candidate) (string, error)
	Status(ctx context.Context, jobID string) (*domain.JobUpdate, error)
}

// Job is the client-side handle for the active validation run. Its identity
// never changes after creation; the mutable fields track the latest poll.
type Job struct {
	ID              string
	Status          domain.JobStatus
	Progress        int
	Files           []domain.FileResult
	ReportAvailable bool
}

// SelectedFile is the render view of one selection entry.
type SelectedFile struct {
	Name      string
	SizeBytes int64
}

// Snapshot is an immutable representation of orchestrator state handed to
// the presentation layer after every transition.
type Snapshot struct {
	State     State
	Selection []SelectedFile
	Job       *Job
	Fault     *Fault
}

// Options configures an Orchestrator.
type Options struct {
	Gateway      Gateway
	PollInterval time.Duration
	Logger       *infra.Logger
	// Notify receives a snapshot after every state transition. Called
	// without internal locks held, so it may call back into the
	// orchestrator (e.g. Reset on a rendered cancel button).
	Notify func(Snapshot)
}

// Orchestrator composes the selection store, submission gateway, and job
// poller into the state machine Idle -> Submitting -> Polling ->
// Completed/Failed, with Reset returning to Idle from anywhere.
type Orchestrator struct {
	gw       Gateway
	interval time.Duration
	logger   *infra.Logger
	notify   func(Snapshot)

	mu     sync.Mutex
	sel    *selection.Store
	state  State
	job    *Job
	poller *Poller
	fault  *Fault
	// gen identifies the current run; it is bumped on every Reset so
	// callbacks and in-flight submissions from a superseded run are
	// discarded instead of mutating fresh state.
	gen uint64
}

// New constructs an idle orchestrator.
func New(opts Options) (*Orchestrator, error) {
	if opts.Gateway == nil {
		return nil, errors.New("orchestrator: gateway is required")
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	notify := opts.Notify
	if notify == nil {
		notify = func(Snapshot) {}
	}
	return &Orchestrator{
		gw:       opts.Gateway,
		interval: interval,
		logger:   logger,
		notify:   notify,
		sel:      selection.NewStore(),
		state:    StateIdle,
	}, nil
}

// AddFiles adds candidates to the selection. Valid while no submission is
// active; a fully non-PDF batch is surfaced as a selection fault without a
// state transition.
func (o *Orchestrator) AddFiles(files ...selection.Candidate) error {
	o.mu.Lock()
	if o.state == StateSubmitting || o.state == StatePolling {
		o.mu.Unlock()
		return ErrSubmissionActive
	}
	err := o.sel.Add(files...)
	if err != nil {
		o.fault = &Fault{Phase: PhaseSelection, Err: err}
	} else {
		o.clearSelectionFaultLocked()
	}
	snap := o.snapshotLocked()
	o.mu.Unlock()
	o.notify(snap)
	return err
}

// RemoveFile removes the selection entry at the given index; out-of-range
// indices are a no-op, mirroring the selection store contract.
func (o *Orchestrator) RemoveFile(index int) error {
	o.mu.Lock()
	if o.state == StateSubmitting || o.state == StatePolling {
		o.mu.Unlock()
		return ErrSubmissionActive
	}
	o.sel.Remove(index)
	snap := o.snapshotLocked()
	o.mu.Unlock()
	o.notify(snap)
	return nil
}

// ClearSelection empties the selection without touching job state.
func (o *Orchestrator) ClearSelection() error {
	o.mu.Lock()
	if o.state == StateSubmitting || o.state == StatePolling {
		o.mu.Unlock()
		return ErrSubmissionActive
	}
	o.sel.Clear()
	snap := o.snapshotLocked()
	o.mu.Unlock()
	o.notify(snap)
	return nil
}

// Submit sends the current selection as one batch and, on success, starts
// polling the returned job. Valid from Idle and Failed (retry keeps the
// selection); an empty selection is rejected in place without a network
// call. The call blocks until the submission round trip finishes.
func (o *Orchestrator) Submit(ctx context.Context) error {
	o.mu.Lock()
	switch o.state {
	case StateIdle, StateFailed:
	default:
		o.mu.Unlock()
		return ErrSubmissionActive
	}
	files := o.sel.List()
	if len(files) == 0 {
		o.fault = &Fault{Phase: PhaseSelection, Err: ErrEmptySelection}
		snap := o.snapshotLocked()
		o.mu.Unlock()
		o.notify(snap)
		return ErrEmptySelection
	}
	gen := o.gen
	o.state = StateSubmitting
	o.fault = nil
	o.job = nil
	snap := o.snapshotLocked()
	o.mu.Unlock()
	o.notify(snap)

	jobID, err := o.gw.Submit(ctx, files)

	o.mu.Lock()
	if gen != o.gen {
		// Reset happened while the upload was in flight.
		o.mu.Unlock()
		return ErrSuperseded
	}
	if err != nil {
		o.state = StateFailed
		o.fault = &Fault{Phase: PhaseSubmit, Err: err}
		snap := o.snapshotLocked()
		o.mu.Unlock()
		o.logger.Warn().Err(err).Msg("orchestrator: submission failed")
		o.notify(snap)
		return err
	}

	o.job = &Job{ID: jobID, Status: domain.JobPending}
	p := NewPoller(o.interval, o.gw.Status, func(update *domain.JobUpdate, pollErr error, terminal bool) {
		o.apply(gen, update, pollErr, terminal)
	})
	o.poller = p
	o.state = StatePolling
	snap = o.snapshotLocked()
	o.mu.Unlock()

	o.logger.Info().Str("job_id", jobID).Int("files", len(files)).Msg("orchestrator: job accepted, polling")
	o.notify(snap)
	// A reset between unlock and here cancels p, making Start a no-op
	// error; the generation guard keeps any late callback harmless.
	_ = p.Start(jobID)
	return nil
}

// apply folds one poll outcome into orchestrator state. Outcomes tagged with
// a superseded generation are discarded.
func (o *Orchestrator) apply(gen uint64, update *domain.JobUpdate, err error, terminal bool) {
	o.mu.Lock()
	if gen != o.gen || o.state != StatePolling || o.job == nil {
		o.mu.Unlock()
		return
	}
	if err != nil {
		o.state = StateFailed
		o.fault = &Fault{Phase: PhasePoll, Err: err}
		o.poller = nil
		snap := o.snapshotLocked()
		o.mu.Unlock()
		o.logger.Warn().Err(err).Str("job_id", o.jobIDForLog(snap)).Msg("orchestrator: polling failed")
		o.notify(snap)
		return
	}

	o.job.Status = update.Status
	o.job.Progress = update.Progress
	o.job.Files = append([]domain.FileResult(nil), update.Files...)
	if terminal {
		o.job.ReportAvailable = update.ReportAvailable()
		o.state = StateCompleted
		o.poller = nil
	}
	snap := o.snapshotLocked()
	o.mu.Unlock()
	o.notify(snap)
}

// Reset tears down any active poller, discards the current job and the
// selection, and returns to Idle. Safe from every state, idempotent, and
// callable from inside a notify callback.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	o.gen++
	p := o.poller
	o.poller = nil
	o.job = nil
	o.fault = nil
	o.state = StateIdle
	o.sel.Clear()
	snap := o.snapshotLocked()
	o.mu.Unlock()

	if p != nil {
		p.Cancel()
	}
	o.notify(snap)
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Snapshot returns the current render state.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

// Selection returns the current candidate list.
func (o *Orchestrator) Selection() []selection.Candidate {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sel.List()
}

func (o *Orchestrator) snapshotLocked() Snapshot {
	snap := Snapshot{State: o.state}
	for _, c := range o.sel.List() {
		snap.Selection = append(snap.Selection, SelectedFile{Name: c.Name, SizeBytes: c.SizeBytes})
	}
	if o.job != nil {
		j := *o.job
		j.Files = append([]domain.FileResult(nil), o.job.Files...)
		snap.Job = &j
	}
	if o.fault != nil {
		f := *o.fault
		snap.Fault = &f
	}
	return snap
}

func (o *Orchestrator) clearSelectionFaultLocked() {
	if o.fault != nil && o.fault.Phase == PhaseSelection {
		o.fault = nil
	}
}

func (o *Orchestrator) jobIDForLog(snap Snapshot) string {
	if snap.Job != nil {
		return snap.Job.ID
	}
	return ""
}

package orchestrator

import (
	"context"
	"errors"
	"sync"
	"time"

	"valsign/internal/domain"
)

// ErrPollerStarted is returned by Start when the poller already left Idle.
var ErrPollerStarted = errors.New("orchestrator: poller already started")

// PollState is the poller lifecycle: Idle until Start, Running while the
// timer is armed, Stopped once it completed, failed, or was cancelled.
type PollState int

const (
	PollIdle PollState = iota
	PollRunning
	PollStopped
)

func (s PollState) String() string {
	switch s {
	case PollIdle:
		return "idle"
	case PollRunning:
		return "running"
	case PollStopped:
		return "stopped"
	}
	return "unknown"
}

// StatusFunc queries job status once.
type StatusFunc func(ctx context.Context, jobID string) (*domain.JobUpdate, error)

// DeliverFunc receives each poll outcome. terminal is true for the last
// delivery a poller will ever make: the completion snapshot or a poll error.
type DeliverFunc func(update *domain.JobUpdate, err error, terminal bool)

// Poller owns the recurring status query for one job. It issues one query
// immediately on Start, then one per interval, and stops itself on the first
// error or on a completed status. Queries never overlap: the loop waits for
// each response before arming the next tick, so a slow backend delays
// polling instead of stacking requests.
type Poller struct {
	interval time.Duration
	fetch    StatusFunc
	deliver  DeliverFunc

	mu     sync.Mutex
	state  PollState
	cancel context.CancelFunc
}

// NewPoller constructs an Idle poller. deliver is invoked from the polling
// goroutine; it must not block indefinitely.
func NewPoller(interval time.Duration, fetch StatusFunc, deliver DeliverFunc) *Poller {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Poller{interval: interval, fetch: fetch, deliver: deliver}
}

// Start begins polling the given job. Valid only from Idle.
func (p *Poller) Start(jobID string) error {
	p.mu.Lock()
	if p.state != PollIdle {
		p.mu.Unlock()
		return ErrPollerStarted
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.state = PollRunning
	p.mu.Unlock()

	go p.run(ctx, jobID)
	return nil
}

// Cancel stops the poller. Idempotent and valid from any state, including
// from inside a delivery callback, which is why it never blocks waiting for
// the polling goroutine: doing so would deadlock the re-entrant case.
//
// After Cancel returns, no delivery whose running-state check has not yet
// passed will ever fire. A delivery that already passed its check on the
// polling goroutine may still land concurrently with Cancel; the
// Orchestrator discards such stragglers through its run generation, so a
// Reset is strict even when this window is hit. Callers driving a Poller
// directly get the strict guarantee by calling Cancel from the delivery
// goroutine, where no delivery can be in flight.
func (p *Poller) Cancel() {
	p.mu.Lock()
	cancel := p.cancel
	p.state = PollStopped
	p.cancel = nil
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// State reports the current lifecycle state.
func (p *Poller) State() PollState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Poller) run(ctx context.Context, jobID string) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		update, err := p.fetch(ctx, jobID)
		if ctx.Err() != nil {
			// Cancelled while the query was in flight; the response, if
			// any, belongs to a superseded run.
			return
		}
		if err != nil {
			if p.stopSelf() {
				p.deliver(nil, err, true)
			}
			return
		}
		if update.Status.Terminal() {
			if p.stopSelf() {
				p.deliver(update, nil, true)
			}
			return
		}
		if !p.deliverRunning(update) {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// stopSelf transitions Running -> Stopped and reports whether this call won
// the transition; a concurrent Cancel means the terminal delivery is skipped.
func (p *Poller) stopSelf() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != PollRunning {
		return false
	}
	p.state = PollStopped
	p.cancel = nil
	return true
}

// deliverRunning hands a mid-flight update to the callback unless the poller
// has been cancelled in the meantime. The check and the callback are not one
// atomic step; see the Cancel contract for the resulting window.
func (p *Poller) deliverRunning(update *domain.JobUpdate) bool {
	p.mu.Lock()
	running := p.state == PollRunning
	p.mu.Unlock()
	if !running {
		return false
	}
	p.deliver(update, nil, false)
	return true
}

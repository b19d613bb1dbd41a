// Package jobs runs long operator-triggered batch work, one run at a time.
package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrAlreadyRunning = errors.New("job is already running")
	ErrNotRunning     = errors.New("no job is running")
)

// Run is a handle to one in-flight job.
type Run struct {
	ID        string
	Name      string
	StartedAt time.Time

	cancel    context.CancelFunc
	done      chan struct{}
	processed atomic.Int64
	failed    atomic.Int64
}

// Progress returns how many items have been processed and how many of those failed.
func (r *Run) Progress() (processed, failed int64) {
	return r.processed.Load(), r.failed.Load()
}

// Done is closed when the run has finished.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Cancel asks the run to stop at its next checkpoint.
func (r *Run) Cancel() {
	r.cancel()
}

func (r *Run) addProcessed(failed bool) {
	r.processed.Add(1)
	if failed {
		r.failed.Add(1)
	}
}

// Guard allows at most one run at a time. A run is cancelled after maxRuntime.
type Guard struct {
	mu         sync.Mutex
	current    *Run
	maxRuntime time.Duration
}

func NewGuard(maxRuntime time.Duration) *Guard {
	return &Guard{maxRuntime: maxRuntime}
}

// TryStart runs fn in a new goroutine unless another run is active. The
// context passed to fn is cancelled by Cancel, by parent cancellation or
// when the maximum runtime elapses.
func (g *Guard) TryStart(parent context.Context, name string, fn func(ctx context.Context, run *Run)) (*Run, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.current != nil {
		return nil, ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(parent)
	if g.maxRuntime > 0 {
		var timeoutCancel context.CancelFunc
		ctx, timeoutCancel = context.WithTimeout(ctx, g.maxRuntime)
		prev := cancel
		cancel = func() {
			timeoutCancel()
			prev()
		}
	}

	run := &Run{
		ID:        uuid.NewString(),
		Name:      name,
		StartedAt: time.Now(),
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	g.current = run

	log.Info().Str("job", name).Str("runId", run.ID).Msg("job started")

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("job", name).Str("runId", run.ID).Msg("job panicked")
			}
			cancel()
			g.mu.Lock()
			if g.current == run {
				g.current = nil
			}
			g.mu.Unlock()
			close(run.done)
		}()
		fn(ctx, run)
	}()

	return run, nil
}

// Cancel stops the active run. It does not wait for it to finish.
func (g *Guard) Cancel() (*Run, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.current == nil {
		return nil, ErrNotRunning
	}
	g.current.Cancel()
	log.Info().Str("job", g.current.Name).Str("runId", g.current.ID).Msg("job cancellation requested")
	return g.current, nil
}

// Current returns the active run, or nil.
func (g *Guard) Current() *Run {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

package uploads

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/scanpilot/internal/client/models"
)

// Task is the handle of one polling run.
type Task struct {
	id     string
	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	outcome Outcome
}

func newTask(id string, cancel context.CancelFunc) *Task {
	return &Task{
		id:      id,
		cancel:  cancel,
		done:    make(chan struct{}),
		outcome: Outcome{State: StatePolling},
	}
}

func (t *Task) ID() string { return t.id }

// Done is closed once the task has settled.
func (t *Task) Done() <-chan struct{} { return t.done }

func (t *Task) Outcome() Outcome {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.outcome
}

// Wait blocks until the task settles or ctx ends.
func (t *Task) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-t.done:
		return t.Outcome(), nil
	case <-ctx.Done():
		return t.Outcome(), ctx.Err()
	}
}

// observe counts a fetch and records u unless it would move the status
// backwards.
func (t *Task) observe(u *models.Upload) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.outcome.Ticks++
	if u == nil {
		return
	}
	if prev := t.outcome.Upload; prev != nil && !prev.Status.CanAdvanceTo(u.Status) {
		return
	}
	cp := *u
	t.outcome.Upload = &cp
}

// settle fixes the final state. The controller closes done afterwards.
func (t *Task) settle(o Outcome) Outcome {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.outcome.State = o.State
	t.outcome.Err = o.Err
	return t.outcome
}

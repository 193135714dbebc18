package sync

import (
	"context"
	"fmt"
	"sync"

	"tally/internal/state"
	"tally/internal/todo"
)

// Mode selects how bulk-operation progress is observed.
type Mode string

const (
	// ModePoll refetches the full collection on a timer.
	ModePoll Mode = "poll"
	// ModePush subscribes to the event stream.
	ModePush Mode = "push"
)

// ParseMode validates a mode string from config or flags.
func ParseMode(raw string) (Mode, error) {
	switch Mode(raw) {
	case ModePoll, ModePush:
		return Mode(raw), nil
	}
	return "", fmt.Errorf("unknown sync mode %q (want poll or push)", raw)
}

// Progress is the visible counter pair for a running bulk operation.
// Poll mode carries no numbers, only a busy indicator.
type Progress struct {
	Completed int
	Total     int
}

// BulkState is a snapshot of the bulk-operation state machine, read by
// the UI.
type BulkState struct {
	Running  bool
	Mode     Mode
	Progress *Progress
}

// driver observes a running bulk operation and funnels completion into the
// coordinator's shared finish rule. Exactly one implementation is wired
// per configured mode.
type driver interface {
	// start begins observation for the given list. Starting an already
	// started driver is a no-op.
	start(ctx context.Context, listID string) error
	// stop releases run-scoped resources. For the poll driver that is the
	// recurring fetch; the push driver's connection outlives a run and is
	// torn down separately.
	stop()
}

// Coordinator owns the bulk-operation state machine: Idle -> Running(mode)
// -> Idle. Both drivers mutate it only through setProgress and finish, so
// completion is evaluated identically regardless of which channel detected
// it.
type Coordinator struct {
	store  *state.Store
	client todo.Service
	status *Board
	mode   Mode
	notify func()

	// blocked reports whether another exclusive operation (sample-data
	// generation) is active.
	blocked func() bool

	mu       sync.Mutex
	listID   string
	running  bool
	progress *Progress
	driver   driver
}

// State returns a snapshot of the current bulk state.
func (c *Coordinator) State() BulkState {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := BulkState{Running: c.running, Mode: c.mode}
	if c.progress != nil {
		p := *c.progress
		st.Progress = &p
	}
	return st
}

// Running reports whether a bulk operation is in flight.
func (c *Coordinator) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Start triggers the complete-all operation for the current list.
//
// Entry guards are silent no-ops: nothing to complete, already running, or
// another exclusive operation active. A failed trigger reverts to Idle
// immediately and is never retried automatically.
func (c *Coordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running || (c.blocked != nil && c.blocked()) {
		c.mu.Unlock()
		return nil
	}
	completed, total := c.store.Counts()
	if total == 0 || completed == total {
		c.mu.Unlock()
		return nil
	}
	c.running = true
	if c.mode == ModePush {
		c.progress = &Progress{Completed: completed, Total: total}
	}
	listID := c.listID
	d := c.driver
	c.mu.Unlock()

	if err := c.client.TriggerCompleteAll(ctx, listID); err != nil {
		c.mu.Lock()
		c.running = false
		c.progress = nil
		c.mu.Unlock()
		c.status.Set(CategoryBulk, "complete all failed: "+err.Error())
		c.changed()
		return fmt.Errorf("trigger complete all: %w", err)
	}

	c.status.Clear(CategoryBulk)
	if d != nil {
		if err := d.start(ctx, listID); err != nil {
			return err
		}
	}
	c.changed()
	return nil
}

// setProgress updates the visible counters. Counters are only meaningful
// while a push-mode run is in flight; stray updates outside a run are
// dropped.
func (c *Coordinator) setProgress(completed, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running || c.mode != ModePush {
		return
	}
	c.progress = &Progress{Completed: completed, Total: total}
}

// finish is the single authoritative completion rule shared by both
// drivers: transition Running -> Idle, clear progress, and release
// run-scoped resources. Re-detection is idempotent; only the first call
// per run has side effects.
func (c *Coordinator) finish() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	c.progress = nil
	d := c.driver
	c.mu.Unlock()

	if d != nil {
		d.stop()
	}
	c.changed()
}

func (c *Coordinator) setList(listID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listID = listID
}

func (c *Coordinator) changed() {
	if c.notify != nil {
		c.notify()
	}
}

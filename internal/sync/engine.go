package sync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tally/internal/push"
	"tally/internal/state"
	"tally/internal/todo"
)

// Options configure an Engine.
type Options struct {
	Client todo.Service
	Mode   Mode
	ListID string
	// Events is the push channel transport; required when Mode is
	// ModePush, ignored otherwise.
	Events *push.Conn
	// PollInterval overrides the recurring fetch cadence in poll mode.
	PollInterval time.Duration
	// Notify wakes the UI after any state change. Optional.
	Notify func()
}

// Engine is the composition root for the reconciliation core: it owns the
// item store, the status board, the optimistic mutator, the bulk
// coordinator and whichever driver the configured mode selects.
type Engine struct {
	store   *state.Store
	client  todo.Service
	status  *Board
	coord   *Coordinator
	mutator *Mutator
	mode    Mode
	notify  func()

	pollDrv *pollDriver // nil in push mode
	pushDrv *pushDriver // nil in poll mode

	mu         sync.Mutex
	listID     string
	generating bool
}

// New wires an Engine for the given mode. It does not touch the network;
// call Start and Refresh once the process is ready.
func New(opts Options) (*Engine, error) {
	if opts.Client == nil {
		return nil, fmt.Errorf("engine requires a client")
	}
	if opts.Mode != ModePoll && opts.Mode != ModePush {
		return nil, fmt.Errorf("unknown sync mode %q", opts.Mode)
	}
	if opts.Mode == ModePush && opts.Events == nil {
		return nil, fmt.Errorf("push mode requires an event channel")
	}

	e := &Engine{
		store:  &state.Store{},
		client: opts.Client,
		status: &Board{},
		mode:   opts.Mode,
		notify: opts.Notify,
		listID: opts.ListID,
	}

	e.coord = &Coordinator{
		store:   e.store,
		client:  e.client,
		status:  e.status,
		mode:    opts.Mode,
		notify:  opts.Notify,
		blocked: e.generatingSample,
		listID:  opts.ListID,
	}

	switch opts.Mode {
	case ModePoll:
		e.pollDrv = newPollDriver(e.store, e.client, e.status, e.coord, opts.PollInterval, opts.Notify)
		e.coord.driver = e.pollDrv
	case ModePush:
		e.pushDrv = newPushDriver(e.store, e.coord, e.status, opts.Events, opts.Notify)
		e.coord.driver = e.pushDrv
	}

	e.mutator = &Mutator{
		store:  e.store,
		client: e.client,
		status: e.status,
		notify: opts.Notify,
		busy:   e.exclusiveBusy,
	}
	return e, nil
}

// Store exposes the item store for read-only snapshots.
func (e *Engine) Store() *state.Store { return e.store }

// Status exposes the status board.
func (e *Engine) Status() *Board { return e.status }

// Bulk returns the current bulk-operation state.
func (e *Engine) Bulk() BulkState { return e.coord.State() }

// Mode returns the configured sync mode.
func (e *Engine) Mode() Mode { return e.mode }

// ListID returns the currently viewed list.
func (e *Engine) ListID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.listID
}

// Start brings up mode-scoped resources. In push mode that connects the
// event channel and joins the current list's group; in poll mode there is
// nothing to do until a bulk operation runs.
func (e *Engine) Start(ctx context.Context) error {
	if e.pushDrv == nil {
		return nil
	}
	return e.pushDrv.start(ctx, e.ListID())
}

// Refresh performs a manual fetch of the full collection. A manual fetch
// takes precedence over the recurring poll cadence: the cadence is
// cancelled first and restarted only if the bulk operation is still
// running after the fetch succeeds.
func (e *Engine) Refresh(ctx context.Context) error {
	if e.pollDrv != nil {
		e.pollDrv.stop()
	}

	items, err := e.client.FetchItems(ctx, e.ListID())
	if err != nil {
		e.status.Set(CategoryFetch, "refresh failed: "+err.Error())
		if e.pollDrv != nil && e.coord.Running() {
			// Same rule as a recurring fetch failure: the run ends.
			e.coord.finish()
		}
		e.changed()
		return fmt.Errorf("fetch items: %w", err)
	}

	e.store.ReplaceAll(items)
	e.status.Clear(CategoryFetch)
	if e.pollDrv != nil && e.coord.Running() {
		if e.store.AllCompleted() {
			e.coord.finish()
		} else {
			_ = e.pollDrv.start(ctx, e.ListID())
		}
	}
	e.changed()
	return nil
}

// Lists fetches the known lists from the remote service.
func (e *Engine) Lists(ctx context.Context) ([]todo.List, error) {
	lists, err := e.client.FetchLists(ctx)
	if err != nil {
		e.status.Set(CategoryFetch, "load lists failed: "+err.Error())
		return nil, fmt.Errorf("fetch lists: %w", err)
	}
	return lists, nil
}

// CompleteAll starts the bulk completion run for the current list.
func (e *Engine) CompleteAll(ctx context.Context) error {
	return e.coord.Start(ctx)
}

// GenerateSample asks the server to populate the list with sample items
// and refetches. Exclusive with the bulk operation in both directions.
func (e *Engine) GenerateSample(ctx context.Context) error {
	e.mu.Lock()
	if e.generating || e.coord.Running() {
		e.mu.Unlock()
		return nil
	}
	e.generating = true
	listID := e.listID
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.generating = false
		e.mu.Unlock()
	}()

	if err := e.client.GenerateSampleData(ctx, listID); err != nil {
		e.status.Set(CategoryMutate, "sample data failed: "+err.Error())
		e.changed()
		return fmt.Errorf("generate sample data: %w", err)
	}
	e.status.Clear(CategoryMutate)
	return e.Refresh(ctx)
}

// SetList switches the observed list. Any in-flight run and its timers are
// cancelled, the push subscription moves to the new list's group, and the
// collection is refetched.
func (e *Engine) SetList(ctx context.Context, listID string) error {
	if listID == e.ListID() {
		return nil
	}

	e.coord.finish()
	e.mu.Lock()
	e.listID = listID
	e.mu.Unlock()
	e.coord.setList(listID)

	// A failed subscribe must not leave the store showing the old list;
	// the refetch happens regardless and the subscribe error surfaces
	// afterwards (the status board already carries it).
	var joinErr error
	if e.pushDrv != nil {
		joinErr = e.pushDrv.setList(ctx, listID)
	}
	if err := e.Refresh(ctx); err != nil {
		return err
	}
	return joinErr
}

// Close tears the engine down: poll timers are stopped, the push channel
// leaves its group and closes, and any push-scoped running state clears.
func (e *Engine) Close(ctx context.Context) {
	if e.pollDrv != nil {
		e.pollDrv.stop()
	}
	e.coord.finish()
	if e.pushDrv != nil {
		e.pushDrv.teardown(ctx)
	}
}

// Mutator operations, delegated so the UI deals with one type.

func (e *Engine) Create(ctx context.Context, description string) error {
	return e.mutator.Create(ctx, e.ListID(), description)
}

func (e *Engine) ToggleCompleted(ctx context.Context, id string) error {
	return e.mutator.ToggleCompleted(ctx, id)
}

func (e *Engine) EditDescription(ctx context.Context, id, description string) error {
	return e.mutator.EditDescription(ctx, id, description)
}

func (e *Engine) Delete(ctx context.Context, id string) error {
	return e.mutator.Delete(ctx, id)
}

func (e *Engine) BeginEdit(id string) { e.mutator.BeginEdit(id) }
func (e *Engine) EndEdit()            { e.mutator.EndEdit() }

func (e *Engine) Editing() (string, bool) { return e.mutator.Editing() }

func (e *Engine) generatingSample() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generating
}

// exclusiveBusy guards user mutations: rejected while a bulk run or
// sample-data generation is active.
func (e *Engine) exclusiveBusy() bool {
	return e.generatingSample() || e.coord.Running()
}

func (e *Engine) changed() {
	if e.notify != nil {
		e.notify()
	}
}

package sync

import (
	"context"
	"sync"

	"tally/internal/push"
	"tally/internal/state"
)

// pushDriver adapts the event-stream transport to the coordinator. The
// underlying connection lives for the whole of push mode, not just one
// bulk-operation run: the remote side owns completion truth, so progress
// events are honored whenever they arrive for the viewed list.
type pushDriver struct {
	store  *state.Store
	coord  *Coordinator
	status *Board
	conn   *push.Conn
	notify func()

	mu      sync.Mutex
	listID  string
	wired   bool
}

func newPushDriver(store *state.Store, coord *Coordinator, status *Board, conn *push.Conn, notify func()) *pushDriver {
	return &pushDriver{
		store:  store,
		coord:  coord,
		status: status,
		conn:   conn,
		notify: notify,
	}
}

// start ensures the connection is up and the group for the given list is
// joined. Both operations are idempotent, so start doubles as the per-run
// hook and the enter-push-mode hook.
func (d *pushDriver) start(ctx context.Context, listID string) error {
	d.mu.Lock()
	if !d.wired {
		d.conn.SetHandlers(push.Handlers{
			OnProgress:     d.handleProgress,
			OnClosed:       d.handleClosed,
			OnReconnecting: d.handleReconnecting,
			OnReconnected:  d.handleReconnected,
		})
		d.wired = true
	}
	d.listID = listID
	d.mu.Unlock()

	if err := d.conn.Connect(ctx); err != nil {
		d.status.Set(CategoryConnection, "connection failed: "+err.Error())
		return err
	}
	if err := d.conn.Join(ctx, listID); err != nil {
		d.status.Set(CategoryConnection, "subscribe failed: "+err.Error())
		return err
	}
	d.status.Clear(CategoryConnection)
	return nil
}

// stop is run-scoped and deliberately empty: the subscription outlives a
// single bulk operation. teardown closes the channel for good.
func (d *pushDriver) stop() {}

// setList switches the observed list: the transport leaves the old group
// and joins the new one, never holding two memberships.
func (d *pushDriver) setList(ctx context.Context, listID string) error {
	d.mu.Lock()
	d.listID = listID
	d.mu.Unlock()
	if err := d.conn.Join(ctx, listID); err != nil {
		d.status.Set(CategoryConnection, "subscribe failed: "+err.Error())
		return err
	}
	return nil
}

// teardown detaches handlers, leaves the group best-effort, closes the
// connection and clears any push-scoped running state.
func (d *pushDriver) teardown(ctx context.Context) {
	d.conn.SetHandlers(push.Handlers{})
	_ = d.conn.Leave(ctx)
	_ = d.conn.Close()
	d.coord.finish()
}

func (d *pushDriver) handleProgress(ev push.ProgressEvent) {
	d.mu.Lock()
	listID := d.listID
	d.mu.Unlock()
	if ev.ListID != listID {
		return
	}
	if ev.ItemID != "" {
		// Idempotent: already-completed or unknown ids are safely ignored
		// by the store.
		d.store.SetCompleted(ev.ItemID, true)
	}
	d.coord.setProgress(ev.Completed, ev.Total)
	if ev.Total > 0 && ev.Completed == ev.Total {
		d.coord.finish()
	}
	d.changed()
}

func (d *pushDriver) handleClosed(err error) {
	d.status.Set(CategoryConnection, "connection lost")
	d.changed()
}

func (d *pushDriver) handleReconnecting(err error) {
	d.status.Set(CategoryConnection, "connection interrupted, reconnecting")
	d.changed()
}

func (d *pushDriver) handleReconnected() {
	d.status.Clear(CategoryConnection)
	d.changed()
}

func (d *pushDriver) changed() {
	if d.notify != nil {
		d.notify()
	}
}

package sync

import (
	"context"
	"log"
	"sync"
	"time"

	"tally/internal/state"
	"tally/internal/todo"
)

// DefaultPollInterval is the cadence of the recurring fetch in poll mode.
const DefaultPollInterval = 2 * time.Second

// pollDriver observes a running bulk operation by refetching the full item
// collection at a fixed interval. At most one recurring fetch is active at
// a time.
type pollDriver struct {
	store    *state.Store
	client   todo.Service
	status   *Board
	coord    *Coordinator
	notify   func()
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
}

func newPollDriver(store *state.Store, client todo.Service, status *Board, coord *Coordinator, interval time.Duration, notify func()) *pollDriver {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &pollDriver{
		store:    store,
		client:   client,
		status:   status,
		coord:    coord,
		notify:   notify,
		interval: interval,
	}
}

// start launches the recurring fetch. A second start while one is active
// is a no-op; the old cadence must be stopped first.
func (p *pollDriver) start(ctx context.Context, listID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	go p.loop(ctx, listID)
	return nil
}

// stop cancels the recurring fetch. Stopping an idle driver is a no-op.
func (p *pollDriver) stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

func (p *pollDriver) loop(ctx context.Context, listID string) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		items, err := p.client.FetchItems(ctx, listID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			// A failed fetch ends the run; the individual fetch is not
			// retried.
			log.Printf("poll: fetch failed: %v", err)
			p.status.Set(CategoryFetch, "refresh failed: "+err.Error())
			p.coord.finish()
			return
		}

		// The cadence may have been cancelled while the fetch was in
		// flight (manual refresh, teardown); its result is stale then.
		if ctx.Err() != nil {
			return
		}

		p.store.ReplaceAll(items)
		if p.notify != nil {
			p.notify()
		}
		if p.store.AllCompleted() {
			p.coord.finish()
			return
		}
	}
}

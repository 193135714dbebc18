package sync

import (
	"context"
	"testing"
	"time"

	"tally/internal/state"
	"tally/internal/todo"
)

func TestPollDriver_CancelledFetchResultIsDiscarded(t *testing.T) {
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	svc := &fakeService{
		items:        []todo.Item{complete("1")},
		fetchStarted: started,
		fetchRelease: release,
	}

	st := &state.Store{}
	st.ReplaceAll([]todo.Item{incomplete("1")})
	board := &Board{}
	c := &Coordinator{store: st, client: svc, status: board, mode: ModePoll, listID: "5"}
	p := newPollDriver(st, svc, board, c, 5*time.Millisecond, nil)
	c.driver = p
	c.running = true

	if err := p.start(context.Background(), "5"); err != nil {
		t.Fatalf("start returned error: %v", err)
	}
	<-started // a fetch is now in flight
	p.stop()  // cadence cancelled while the fetch is mid-flight
	close(release)

	// The stale result must not reach the store or end the run.
	time.Sleep(50 * time.Millisecond)
	if st.AllCompleted() {
		t.Fatal("a fetch result arriving after stop must not be applied")
	}
	if !c.Running() {
		t.Fatal("a fetch result arriving after stop must not finish the run")
	}
}

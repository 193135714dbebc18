package sync

import (
	"context"
	"testing"
	"time"

	"tally/internal/state"
	"tally/internal/todo"
)

func incomplete(id string) todo.Item {
	return todo.Item{ID: id, ListID: "5", Description: "item " + id}
}

func complete(id string) todo.Item {
	it := incomplete(id)
	it.Completed = true
	return it
}

func newPollEngine(t *testing.T, svc todo.Service, interval time.Duration) *Engine {
	t.Helper()
	e, err := New(Options{
		Client:       svc,
		Mode:         ModePoll,
		ListID:       "5",
		PollInterval: interval,
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	t.Cleanup(func() { e.Close(context.Background()) })
	return e
}

func TestCoordinator_StartIsNoOpWithNothingToComplete(t *testing.T) {
	svc := &fakeService{}
	e := newPollEngine(t, svc, 10*time.Millisecond)

	// Empty collection.
	if err := e.CompleteAll(context.Background()); err != nil {
		t.Fatalf("CompleteAll returned error: %v", err)
	}
	if e.Bulk().Running {
		t.Fatal("bulk state left Idle with no items")
	}

	// Every item already completed.
	e.Store().ReplaceAll([]todo.Item{complete("1"), complete("2")})
	if err := e.CompleteAll(context.Background()); err != nil {
		t.Fatalf("CompleteAll returned error: %v", err)
	}
	if e.Bulk().Running {
		t.Fatal("bulk state left Idle with all items complete")
	}
	if svc.triggerCount() != 0 {
		t.Fatalf("triggers = %d, want 0", svc.triggerCount())
	}
}

func TestCoordinator_StartIsNoOpWhileRunning(t *testing.T) {
	svc := &fakeService{items: []todo.Item{incomplete("1")}}
	e := newPollEngine(t, svc, time.Hour) // cadence never fires during the test
	e.Store().ReplaceAll([]todo.Item{incomplete("1")})

	if err := e.CompleteAll(context.Background()); err != nil {
		t.Fatalf("CompleteAll returned error: %v", err)
	}
	if !e.Bulk().Running {
		t.Fatal("bulk state should be Running")
	}
	if err := e.CompleteAll(context.Background()); err != nil {
		t.Fatalf("second CompleteAll returned error: %v", err)
	}
	if svc.triggerCount() != 1 {
		t.Fatalf("triggers = %d, want 1", svc.triggerCount())
	}
}

func TestCoordinator_FailedTriggerRevertsToIdle(t *testing.T) {
	svc := &fakeService{triggerErr: context.DeadlineExceeded}
	e := newPollEngine(t, svc, 10*time.Millisecond)
	e.Store().ReplaceAll([]todo.Item{incomplete("1")})

	if err := e.CompleteAll(context.Background()); err == nil {
		t.Fatal("CompleteAll should surface the trigger failure")
	}
	if e.Bulk().Running {
		t.Fatal("bulk state must revert to Idle on trigger failure")
	}
	cat, _, ok := e.Status().Message()
	if !ok || cat != CategoryBulk {
		t.Fatalf("status = %v/%v, want bulk category", cat, ok)
	}

	// No automatic retry and no polling after the failed trigger.
	time.Sleep(50 * time.Millisecond)
	if svc.triggerCount() != 1 {
		t.Fatalf("triggers = %d, want 1", svc.triggerCount())
	}
	if svc.fetchCount() != 0 {
		t.Fatalf("fetches = %d, want 0", svc.fetchCount())
	}
}

func TestCoordinator_PollRunCompletesOnSecondFetch(t *testing.T) {
	svc := &fakeService{
		fetchQueue: [][]todo.Item{
			{incomplete("1"), incomplete("2")},
			{complete("1"), complete("2")},
		},
		items: []todo.Item{complete("1"), complete("2")},
	}
	e := newPollEngine(t, svc, 10*time.Millisecond)
	e.Store().ReplaceAll([]todo.Item{incomplete("1"), incomplete("2")})

	if err := e.CompleteAll(context.Background()); err != nil {
		t.Fatalf("CompleteAll returned error: %v", err)
	}
	st := e.Bulk()
	if !st.Running || st.Mode != ModePoll {
		t.Fatalf("bulk state = %#v, want Running(poll)", st)
	}
	if st.Progress != nil {
		t.Fatal("poll mode must not expose numeric progress")
	}

	waitFor(t, "bulk run to finish", func() bool { return !e.Bulk().Running })

	if !e.Store().AllCompleted() {
		t.Fatalf("store = %#v, want all completed", e.Store().Items())
	}
	if e.Bulk().Progress != nil {
		t.Fatal("progress must clear on completion")
	}
	if svc.fetchCount() < 2 {
		t.Fatalf("fetches = %d, want >= 2", svc.fetchCount())
	}

	// The recurring fetch is stopped once completion is detected.
	settled := svc.fetchCount()
	time.Sleep(60 * time.Millisecond)
	if svc.fetchCount() != settled {
		t.Fatalf("poller kept fetching after completion: %d -> %d", settled, svc.fetchCount())
	}
}

func TestCoordinator_PollFetchFailureEndsRun(t *testing.T) {
	svc := &fakeService{fetchErr: context.DeadlineExceeded}
	e := newPollEngine(t, svc, 10*time.Millisecond)
	e.Store().ReplaceAll([]todo.Item{incomplete("1")})

	if err := e.CompleteAll(context.Background()); err != nil {
		t.Fatalf("CompleteAll returned error: %v", err)
	}
	waitFor(t, "run to end on fetch failure", func() bool { return !e.Bulk().Running })

	cat, _, ok := e.Status().Message()
	if !ok || cat != CategoryFetch {
		t.Fatalf("status = %v/%v, want fetch category", cat, ok)
	}

	// The individual fetch is not retried.
	settled := svc.fetchCount()
	time.Sleep(60 * time.Millisecond)
	if svc.fetchCount() != settled {
		t.Fatalf("poller kept fetching after failure: %d -> %d", settled, svc.fetchCount())
	}
}

func TestCoordinator_PushModeInitializesProgress(t *testing.T) {
	svc := &fakeService{}
	st := &state.Store{}
	st.ReplaceAll([]todo.Item{complete("1"), incomplete("2"), incomplete("3")})

	c := &Coordinator{store: st, client: svc, status: &Board{}, mode: ModePush, listID: "5"}

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	got := c.State()
	if !got.Running || got.Mode != ModePush {
		t.Fatalf("state = %#v, want Running(push)", got)
	}
	if got.Progress == nil || got.Progress.Completed != 1 || got.Progress.Total != 3 {
		t.Fatalf("progress = %#v, want 1/3", got.Progress)
	}
}

func TestCoordinator_FinishIsIdempotent(t *testing.T) {
	svc := &fakeService{}
	st := &state.Store{}
	st.ReplaceAll([]todo.Item{incomplete("1")})

	c := &Coordinator{store: st, client: svc, status: &Board{}, mode: ModePush, listID: "5"}
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	c.finish()
	if c.Running() {
		t.Fatal("finish did not transition to Idle")
	}
	// Re-detection must not re-fire side effects; at minimum it must not
	// resurrect state.
	c.finish()
	if c.Running() || c.State().Progress != nil {
		t.Fatalf("state after double finish = %#v", c.State())
	}
}

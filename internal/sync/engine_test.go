package sync

import (
	"context"
	"testing"
	"time"

	"tally/internal/push"
	"tally/internal/todo"
)

func TestNew_ValidatesOptions(t *testing.T) {
	if _, err := New(Options{Mode: ModePoll}); err == nil {
		t.Fatal("New without a client should fail")
	}
	if _, err := New(Options{Client: &fakeService{}, Mode: Mode("carrier-pigeon")}); err == nil {
		t.Fatal("New with an unknown mode should fail")
	}
	if _, err := New(Options{Client: &fakeService{}, Mode: ModePush}); err == nil {
		t.Fatal("push mode without an event channel should fail")
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode("poll"); err != nil || m != ModePoll {
		t.Fatalf("ParseMode(poll) = %v, %v", m, err)
	}
	if m, err := ParseMode("push"); err != nil || m != ModePush {
		t.Fatalf("ParseMode(push) = %v, %v", m, err)
	}
	if _, err := ParseMode("smoke-signals"); err == nil {
		t.Fatal("ParseMode should reject unknown modes")
	}
}

func TestEngine_RefreshReplacesStore(t *testing.T) {
	svc := &fakeService{items: []todo.Item{incomplete("1"), complete("2")}}
	e := newPollEngine(t, svc, time.Hour)

	if err := e.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if got := len(e.Store().Items()); got != 2 {
		t.Fatalf("items = %d, want 2", got)
	}
	svc.mu.Lock()
	last := svc.lastListID
	svc.mu.Unlock()
	if last != "5" {
		t.Fatalf("fetched list = %q, want 5", last)
	}
}

func TestEngine_RefreshFailureEndsPollRun(t *testing.T) {
	svc := &fakeService{items: []todo.Item{incomplete("1")}}
	e := newPollEngine(t, svc, time.Hour)
	e.Store().ReplaceAll([]todo.Item{incomplete("1")})

	if err := e.CompleteAll(context.Background()); err != nil {
		t.Fatalf("CompleteAll returned error: %v", err)
	}

	svc.mu.Lock()
	svc.fetchErr = errRemote
	svc.mu.Unlock()

	if err := e.Refresh(context.Background()); err == nil {
		t.Fatal("Refresh should surface the fetch failure")
	}
	if e.Bulk().Running {
		t.Fatal("a failed manual fetch ends the run, same as a failed poll")
	}
	cat, _, ok := e.Status().Message()
	if !ok || cat != CategoryFetch {
		t.Fatalf("status = %v/%v, want fetch category", cat, ok)
	}
}

func TestEngine_RefreshDuringPollRunRestartsCadence(t *testing.T) {
	svc := &fakeService{items: []todo.Item{incomplete("1")}}
	e := newPollEngine(t, svc, 10*time.Millisecond)
	e.Store().ReplaceAll([]todo.Item{incomplete("1")})

	if err := e.CompleteAll(context.Background()); err != nil {
		t.Fatalf("CompleteAll returned error: %v", err)
	}
	if err := e.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if !e.Bulk().Running {
		t.Fatal("run should survive a manual fetch that still sees incomplete items")
	}

	// The cadence keeps firing after the manual fetch.
	before := svc.fetchCount()
	waitFor(t, "cadence to resume", func() bool { return svc.fetchCount() > before+1 })
}

func TestEngine_RefreshDuringPollRunDetectsCompletion(t *testing.T) {
	svc := &fakeService{items: []todo.Item{complete("1")}}
	e := newPollEngine(t, svc, time.Hour)
	e.Store().ReplaceAll([]todo.Item{incomplete("1")})

	if err := e.CompleteAll(context.Background()); err != nil {
		t.Fatalf("CompleteAll returned error: %v", err)
	}
	if err := e.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if e.Bulk().Running {
		t.Fatal("a manual fetch that sees full completion ends the run")
	}
}

func TestEngine_SetListCancelsRunAndRefetches(t *testing.T) {
	svc := &fakeService{items: []todo.Item{incomplete("9")}}
	e := newPollEngine(t, svc, time.Hour)
	e.Store().ReplaceAll([]todo.Item{incomplete("1")})

	if err := e.CompleteAll(context.Background()); err != nil {
		t.Fatalf("CompleteAll returned error: %v", err)
	}
	if err := e.SetList(context.Background(), "7"); err != nil {
		t.Fatalf("SetList returned error: %v", err)
	}

	if e.Bulk().Running {
		t.Fatal("switching lists must cancel the in-flight run")
	}
	if got := e.ListID(); got != "7" {
		t.Fatalf("ListID = %q, want 7", got)
	}
	svc.mu.Lock()
	last := svc.lastListID
	svc.mu.Unlock()
	if last != "7" {
		t.Fatalf("fetched list = %q, want 7", last)
	}
	items := e.Store().Items()
	if len(items) != 1 || items[0].ID != "9" {
		t.Fatalf("items = %#v, want the new list's collection", items)
	}
}

func TestEngine_SetListRefetchesWhenSubscribeFails(t *testing.T) {
	svc := &fakeService{items: []todo.Item{incomplete("9")}}
	e, err := New(Options{
		Client: svc,
		Mode:   ModePush,
		ListID: "5",
		Events: push.NewConn("ws://127.0.0.1:0/api/events"),
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	t.Cleanup(func() { e.Close(context.Background()) })
	e.Store().ReplaceAll([]todo.Item{incomplete("1")})

	// The channel was never connected, so the group join fails; the new
	// list's collection must still be fetched and the failure surfaced.
	if err := e.SetList(context.Background(), "7"); err == nil {
		t.Fatal("SetList should surface the subscribe failure")
	}
	if got := e.ListID(); got != "7" {
		t.Fatalf("ListID = %q, want 7", got)
	}
	items := e.Store().Items()
	if len(items) != 1 || items[0].ID != "9" {
		t.Fatalf("items = %#v, want the new list's collection", items)
	}
	svc.mu.Lock()
	last := svc.lastListID
	svc.mu.Unlock()
	if last != "7" {
		t.Fatalf("fetched list = %q, want 7", last)
	}
}

func TestEngine_SetListSameIDIsNoOp(t *testing.T) {
	svc := &fakeService{}
	e := newPollEngine(t, svc, time.Hour)

	if err := e.SetList(context.Background(), "5"); err != nil {
		t.Fatalf("SetList returned error: %v", err)
	}
	if svc.fetchCount() != 0 {
		t.Fatal("switching to the current list must not refetch")
	}
}

func TestEngine_GenerateSampleRefetches(t *testing.T) {
	svc := &fakeService{items: []todo.Item{incomplete("1"), incomplete("2")}}
	e := newPollEngine(t, svc, time.Hour)

	if err := e.GenerateSample(context.Background()); err != nil {
		t.Fatalf("GenerateSample returned error: %v", err)
	}
	svc.mu.Lock()
	samples := svc.samples
	svc.mu.Unlock()
	if samples != 1 {
		t.Fatalf("samples = %d, want 1", samples)
	}
	if got := len(e.Store().Items()); got != 2 {
		t.Fatalf("items = %d, want refetched collection", got)
	}
}

func TestEngine_GenerateSampleBlockedDuringBulkRun(t *testing.T) {
	svc := &fakeService{items: []todo.Item{incomplete("1")}}
	e := newPollEngine(t, svc, time.Hour)
	e.Store().ReplaceAll([]todo.Item{incomplete("1")})

	if err := e.CompleteAll(context.Background()); err != nil {
		t.Fatalf("CompleteAll returned error: %v", err)
	}
	if err := e.GenerateSample(context.Background()); err != nil {
		t.Fatalf("GenerateSample returned error: %v", err)
	}
	svc.mu.Lock()
	samples := svc.samples
	svc.mu.Unlock()
	if samples != 0 {
		t.Fatal("sample-data generation must be rejected while a run is in flight")
	}
}

func TestEngine_BulkRunBlockedWhileGenerating(t *testing.T) {
	svc := &fakeService{}
	e := newPollEngine(t, svc, time.Hour)
	e.Store().ReplaceAll([]todo.Item{incomplete("1")})

	e.mu.Lock()
	e.generating = true
	e.mu.Unlock()

	if err := e.CompleteAll(context.Background()); err != nil {
		t.Fatalf("CompleteAll returned error: %v", err)
	}
	if e.Bulk().Running || svc.triggerCount() != 0 {
		t.Fatal("bulk run must be rejected while sample data is generating")
	}
}

func TestEngine_MutationsRejectedDuringBulkRun(t *testing.T) {
	svc := &fakeService{items: []todo.Item{incomplete("1")}}
	e := newPollEngine(t, svc, time.Hour)
	e.Store().ReplaceAll([]todo.Item{incomplete("1")})

	if err := e.CompleteAll(context.Background()); err != nil {
		t.Fatalf("CompleteAll returned error: %v", err)
	}
	if err := e.ToggleCompleted(context.Background(), "1"); err != nil {
		t.Fatalf("ToggleCompleted returned error: %v", err)
	}
	if svc.updateCount() != 0 {
		t.Fatal("mutations must be rejected while a run is in flight")
	}
}

package sync

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"tally/internal/todo"
)

// fakeService is a scriptable in-memory stand-in for the remote API.
type fakeService struct {
	mu sync.Mutex

	items      []todo.Item
	fetchQueue [][]todo.Item // scripted FetchItems responses, consumed in order

	fetchStarted chan struct{} // if set, receives a signal as each fetch begins
	fetchRelease chan struct{} // if set, each fetch blocks until it receives

	fetchErr   error
	createErr  error
	updateErr  error
	deleteErr  error
	triggerErr error
	sampleErr  error

	fetches    int
	creates    int
	updates    int
	deletes    int
	triggers   int
	samples    int
	lastListID string

	nextID int
}

var _ todo.Service = (*fakeService)(nil)

func (f *fakeService) FetchLists(ctx context.Context) ([]todo.List, error) {
	return []todo.List{{ID: "5", Name: "Groceries"}, {ID: "7", Name: "Chores"}}, nil
}

func (f *fakeService) FetchItems(ctx context.Context, listID string) ([]todo.Item, error) {
	f.mu.Lock()
	f.fetches++
	f.lastListID = listID
	err := f.fetchErr
	var items []todo.Item
	if len(f.fetchQueue) > 0 {
		items = append([]todo.Item(nil), f.fetchQueue[0]...)
		f.fetchQueue = f.fetchQueue[1:]
	} else {
		items = append([]todo.Item(nil), f.items...)
	}
	started := f.fetchStarted
	release := f.fetchRelease
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if release != nil {
		<-release
	}
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (f *fakeService) CreateItem(ctx context.Context, listID, description string) (todo.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil {
		return todo.Item{}, f.createErr
	}
	f.nextID++
	return todo.Item{
		ID:          fmt.Sprintf("srv-%d", f.nextID),
		ListID:      listID,
		Description: description,
	}, nil
}

func (f *fakeService) UpdateItem(ctx context.Context, listID, itemID string, patch todo.ItemPatch) (todo.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	if f.updateErr != nil {
		return todo.Item{}, f.updateErr
	}
	it := todo.Item{ID: itemID, ListID: listID}
	if patch.Description != nil {
		it.Description = *patch.Description
	}
	if patch.Completed != nil {
		it.Completed = *patch.Completed
	}
	return it, nil
}

func (f *fakeService) DeleteItem(ctx context.Context, listID, itemID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	return f.deleteErr
}

func (f *fakeService) TriggerCompleteAll(ctx context.Context, listID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.triggers++
	f.lastListID = listID
	return f.triggerErr
}

func (f *fakeService) GenerateSampleData(ctx context.Context, listID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.samples++
	return f.sampleErr
}

func (f *fakeService) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

func (f *fakeService) triggerCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.triggers
}

func (f *fakeService) createCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creates
}

func (f *fakeService) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updates
}

func (f *fakeService) deleteCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deletes
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

package sync

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"tally/internal/state"
	"tally/internal/todo"
)

// Mutator applies user edits optimistically: the local change lands first,
// the remote call follows, and a remote failure restores the captured
// prior state exactly.
//
// Mutations are rejected silently (nil error, no local change) while the
// target item is being edited inline or while an exclusive operation is
// running; those are UI-level illegal actions, not failures.
type Mutator struct {
	store  *state.Store
	client todo.Service
	status *Board
	notify func()

	// busy reports whether an exclusive operation (bulk run, sample-data
	// generation) is in flight.
	busy func() bool

	mu      sync.Mutex
	editing string
}

// provisionalID returns a fresh client-side id, distinguishable from
// server-assigned ids until the create is confirmed.
func provisionalID() string {
	return "local-" + uuid.NewString()
}

// BeginEdit marks an item as being edited inline, blocking other
// mutations of it until EndEdit.
func (m *Mutator) BeginEdit(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.editing = id
}

// EndEdit leaves inline edit mode.
func (m *Mutator) EndEdit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.editing = ""
}

// Editing returns the id of the item being edited inline, if any.
func (m *Mutator) Editing() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.editing, m.editing != ""
}

func (m *Mutator) rejected(itemID string) bool {
	if m.busy != nil && m.busy() {
		return true
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.editing != "" && m.editing == itemID
}

// Create adds an item optimistically under a provisional id and swaps in
// the authoritative server copy on success. On failure the provisional
// entry is removed again. Blank descriptions are ignored.
func (m *Mutator) Create(ctx context.Context, listID, description string) error {
	desc := strings.TrimSpace(description)
	if desc == "" {
		return nil
	}
	if m.rejected("") {
		return nil
	}

	provisional := todo.Item{
		ID:          provisionalID(),
		ListID:      listID,
		Description: desc,
	}
	m.store.InsertProvisional(provisional)
	m.changed()

	created, err := m.client.CreateItem(ctx, listID, desc)
	if err != nil {
		m.store.Remove(provisional.ID)
		m.status.Set(CategoryMutate, "create item failed: "+err.Error())
		m.changed()
		return fmt.Errorf("create item: %w", err)
	}

	m.store.Replace(provisional.ID, created)
	m.status.Clear(CategoryMutate)
	m.changed()
	return nil
}

// ToggleCompleted flips an item's completion flag optimistically.
func (m *Mutator) ToggleCompleted(ctx context.Context, id string) error {
	if m.rejected(id) {
		return nil
	}
	prev, ok := m.store.Get(id)
	if !ok {
		return nil
	}

	next := !prev.Completed
	m.store.SetCompleted(id, next)
	m.changed()

	updated, err := m.client.UpdateItem(ctx, prev.ListID, id, todo.ItemPatch{Completed: &next})
	if err != nil {
		m.store.SetCompleted(id, prev.Completed)
		m.status.Set(CategoryMutate, "update item failed: "+err.Error())
		m.changed()
		return fmt.Errorf("toggle item: %w", err)
	}

	// Authoritative value; a no-op when the optimistic one already matches.
	m.store.SetCompleted(id, updated.Completed)
	m.status.Clear(CategoryMutate)
	m.changed()
	return nil
}

// EditDescription saves an inline edit. An unchanged or blank value just
// cancels edit mode without a remote call.
func (m *Mutator) EditDescription(ctx context.Context, id, description string) error {
	prev, ok := m.store.Get(id)
	if !ok {
		m.EndEdit()
		return nil
	}
	desc := strings.TrimSpace(description)
	if desc == "" || desc == prev.Description {
		m.EndEdit()
		return nil
	}
	if m.busy != nil && m.busy() {
		m.EndEdit()
		return nil
	}

	m.store.SetDescription(id, desc)
	m.EndEdit()
	m.changed()

	updated, err := m.client.UpdateItem(ctx, prev.ListID, id, todo.ItemPatch{Description: &desc})
	if err != nil {
		m.store.SetDescription(id, prev.Description)
		m.status.Set(CategoryMutate, "update item failed: "+err.Error())
		m.changed()
		return fmt.Errorf("edit item: %w", err)
	}

	m.store.SetDescription(id, updated.Description)
	m.status.Clear(CategoryMutate)
	m.changed()
	return nil
}

// Delete removes an item optimistically. Rollback restores the full prior
// snapshot so the item returns to its original position.
func (m *Mutator) Delete(ctx context.Context, id string) error {
	if m.rejected(id) {
		return nil
	}
	prev, ok := m.store.Get(id)
	if !ok {
		return nil
	}

	prior := m.store.Items()
	m.store.Remove(id)
	m.changed()

	if err := m.client.DeleteItem(ctx, prev.ListID, id); err != nil {
		m.store.ReplaceAll(prior)
		m.status.Set(CategoryMutate, "delete item failed: "+err.Error())
		m.changed()
		return fmt.Errorf("delete item: %w", err)
	}

	m.status.Clear(CategoryMutate)
	m.changed()
	return nil
}

func (m *Mutator) changed() {
	if m.notify != nil {
		m.notify()
	}
}

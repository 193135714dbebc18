package state

import (
	"sync"

	"tally/internal/todo"
)

// Store holds the ordered item collection for the currently viewed list.
// It is the single source of truth for the UI; insertion order is display
// order. All methods are safe for concurrent use and every mutation runs
// to completion before the next one begins.
type Store struct {
	mu    sync.RWMutex
	items []todo.Item
}

// Items returns a copy of the current ordered items. Callers own the
// returned slice; it never aliases the stored one.
func (s *Store) Items() []todo.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneItems(s.items)
}

// Get returns the item with the given id, if present.
func (s *Store) Get(id string) (todo.Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.items {
		if it.ID == id {
			return it, true
		}
	}
	return todo.Item{}, false
}

// Counts reports how many items are completed and how many exist in total.
func (s *Store) Counts() (completed, total int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.items {
		if it.Completed {
			completed++
		}
	}
	return completed, len(s.items)
}

// AllCompleted reports whether the collection is non-empty and every item
// is completed.
func (s *Store) AllCompleted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.items) == 0 {
		return false
	}
	for _, it := range s.items {
		if !it.Completed {
			return false
		}
	}
	return true
}

// InsertProvisional appends an item carrying a caller-supplied provisional
// id, pending server confirmation.
func (s *Store) InsertProvisional(item todo.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, item)
}

// Replace swaps the item with the provisional id for the authoritative
// server copy, preserving its position. Unknown ids are ignored.
func (s *Store) Replace(provisionalID string, item todo.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == provisionalID {
			s.items[i] = item
			return
		}
	}
}

// Remove deletes the item with the given id. Unknown ids are ignored.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

// SetCompleted updates an item's completion flag. Unknown ids are a silent
// no-op: a remote event may race a concurrent deletion.
func (s *Store) SetCompleted(id string, value bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Completed = value
			return
		}
	}
}

// SetDescription updates an item's description. Unknown ids are a silent
// no-op.
func (s *Store) SetDescription(id, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Description = value
			return
		}
	}
}

// ReplaceAll swaps the entire collection for the given one, used after a
// full refetch. The store keeps its own copy of the slice.
func (s *Store) ReplaceAll(items []todo.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = cloneItems(items)
}

func cloneItems(items []todo.Item) []todo.Item {
	if len(items) == 0 {
		return nil
	}
	dup := make([]todo.Item, len(items))
	copy(dup, items)
	return dup
}

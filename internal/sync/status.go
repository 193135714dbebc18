package sync

import "sync"

// Category classifies a user-visible failure status.
type Category string

const (
	CategoryFetch      Category = "fetch"
	CategoryMutate     Category = "mutate"
	CategoryBulk       Category = "bulk"
	CategoryConnection Category = "connection"
)

// Board holds the single user-visible status line. At most one status is
// active at a time; a new status overwrites the previous one regardless of
// category, and a successful operation clears only its own category.
type Board struct {
	mu       sync.Mutex
	category Category
	message  string
}

// Set records a status message for the given category, replacing whatever
// was shown before.
func (b *Board) Set(category Category, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.category = category
	b.message = message
}

// Clear removes the active status if it belongs to the given category.
// Statuses from other categories are left alone.
func (b *Board) Clear(category Category) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.category != category {
		return
	}
	b.category = ""
	b.message = ""
}

// Message returns the active status, if any.
func (b *Board) Message() (Category, string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.message == "" {
		return "", "", false
	}
	return b.category, b.message, true
}

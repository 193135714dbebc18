package todo

// List identifies a remote todo list.
type List struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Item is a single work item belonging to a list.
//
// The ID is opaque. Items created optimistically carry a provisional
// client-side id until the server assigns the real one.
type Item struct {
	ID          string `json:"id"`
	ListID      string `json:"listId"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// ItemPatch is a partial update for an item. Nil fields are left unchanged.
type ItemPatch struct {
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

// ListsResponse is the payload of GET /api/lists.
type ListsResponse struct {
	Lists []List `json:"lists"`
}

// ItemsResponse is the payload of GET /api/lists/{id}/items.
type ItemsResponse struct {
	Items []Item `json:"items"`
}

package push

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Frame types and targets for the event stream protocol. Outbound frames
// are invocations (group membership); inbound frames are named events.
const (
	frameInvoke = "invoke"
	frameEvent  = "event"

	targetJoinGroup  = "joinGroup"
	targetLeaveGroup = "leaveGroup"
	targetProgress   = "completionProgress"
)

// frame is the JSON envelope for every message on the channel.
type frame struct {
	Type    string          `json:"type"`
	Target  string          `json:"target"`
	ListID  string          `json:"listId,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ProgressEvent is the decoded "completion progress" event. List and item
// ids are normalized to canonical strings at the channel boundary, so
// consumers compare them directly.
type ProgressEvent struct {
	ListID    string
	ItemID    string // empty when the event carries only counters
	Completed int
	Total     int
}

type progressPayload struct {
	ListID    flexID `json:"listId"`
	ItemID    flexID `json:"itemId"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
}

// flexID accepts a JSON string or number and normalizes it to a string.
// The remote side is not strict about identifier types on the event
// stream, so the tolerance lives here and nowhere else.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*f = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("list/item id must be a string or number: %w", err)
	}
	*f = flexID(n.String())
	return nil
}

func decodeProgress(payload json.RawMessage) (ProgressEvent, error) {
	var raw progressPayload
	if err := json.Unmarshal(payload, &raw); err != nil {
		return ProgressEvent{}, fmt.Errorf("decode progress event: %w", err)
	}
	return ProgressEvent{
		ListID:    string(raw.ListID),
		ItemID:    string(raw.ItemID),
		Completed: raw.Completed,
		Total:     raw.Total,
	}, nil
}

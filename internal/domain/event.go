package domain

import (
	"time"
)

// Canonical event types. AddEvent rejects anything outside this set.
const (
	EventMessage        = "message"
	EventTitle          = "title"
	EventPlan           = "plan"
	EventStep           = "step"
	EventTool           = "tool"
	EventError          = "error"
	EventDone           = "done"
	EventSessionCreated = "session_created"
	EventMessageRecv    = "message_received"
	EventMessageSent    = "message_sent"
	EventToolInvoked    = "tool_invoked"
	EventShellExecuted  = "shell_executed"
	EventFileOperation  = "file_operation"
	EventStatusChanged  = "status_changed"
)

var eventTypes = map[string]struct{}{
	EventMessage:        {},
	EventTitle:          {},
	EventPlan:           {},
	EventStep:           {},
	EventTool:           {},
	EventError:          {},
	EventDone:           {},
	EventSessionCreated: {},
	EventMessageRecv:    {},
	EventMessageSent:    {},
	EventToolInvoked:    {},
	EventShellExecuted:  {},
	EventFileOperation:  {},
	EventStatusChanged:  {},
}

// ValidEventType reports whether t is in the canonical event type set.
func ValidEventType(t string) bool {
	_, ok := eventTypes[t]
	return ok
}

// Event is one entry of a session's append-only log. Once appended it is
// never mutated or removed; deletion only happens with the whole session.
type Event struct {
	ID        string
	SessionID SessionID
	Type      string
	Data      map[string]any
	Timestamp time.Time
}

// HistoryEntry is one turn of the chat history derived from the event log.
type HistoryEntry struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// History projects the event log into chronological chat turns. Only
// message_received and message_sent events contribute; the projection is pure
// and idempotent over the same log.
func History(events []Event) []HistoryEntry {
	var out []HistoryEntry
	for _, ev := range events {
		var role Role
		switch ev.Type {
		case EventMessageRecv:
			role = RoleUser
		case EventMessageSent:
			role = RoleAssistant
		default:
			continue
		}
		content, _ := ev.Data["content"].(string)
		out = append(out, HistoryEntry{Role: role, Content: content, Timestamp: ev.Timestamp})
	}
	return out
}

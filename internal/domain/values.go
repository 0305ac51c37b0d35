// Package domain contains the conversation session aggregate, its value
// objects and the append-only event log. Entities here are pure in-memory
// state: persistence and tool execution live behind interfaces elsewhere.
package domain

import (
	"strings"

	"github.com/google/uuid"
)

// SessionID uniquely identifies a conversation session. Compared by value,
// usable as a map key.
type SessionID string

// NewSessionID generates a new UUID-backed session id.
func NewSessionID() SessionID {
	return SessionID(uuid.New().String())
}

// ParseSessionID validates an externally supplied session id.
func ParseSessionID(s string) (SessionID, error) {
	if s == "" {
		return "", &ValidationError{Field: "session_id", Reason: "must not be empty"}
	}
	return SessionID(s), nil
}

func (id SessionID) String() string { return string(id) }

// MessageID uniquely identifies a message within a session.
type MessageID string

// NewMessageID generates a new UUID-backed message id.
func NewMessageID() MessageID {
	return MessageID(uuid.New().String())
}

func (id MessageID) String() string { return string(id) }

// Role is the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ParseRole validates a role string.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleAssistant, RoleSystem:
		return Role(s), nil
	}
	return "", &ValidationError{Field: "role", Reason: "must be one of user, assistant, system"}
}

// Status is the lifecycle state of a session. Transitions are unconstrained:
// any status is reachable from any other, callers decide what is terminal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
	StatusStopped   Status = "stopped"
)

// ParseStatus validates a status string.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusRunning, StatusCompleted, StatusFailed, StatusCancelled, StatusStopped:
		return Status(s), nil
	}
	return "", &ValidationError{Field: "status", Reason: "unknown status " + s}
}

// MaxContentLength is the upper bound on message content, in characters.
const MaxContentLength = 10000

// Content is validated message text.
type Content string

// NewContent validates message content: non-blank, at most MaxContentLength
// characters.
func NewContent(s string) (Content, error) {
	if strings.TrimSpace(s) == "" {
		return "", &ValidationError{Field: "content", Reason: "must not be empty"}
	}
	if len([]rune(s)) > MaxContentLength {
		return "", &ValidationError{Field: "content", Reason: "too long"}
	}
	return Content(s), nil
}

func (c Content) String() string { return string(c) }

package domain

import (
	"time"
)

// Message is a single chat message owned by a session. Immutable once
// created; construction goes through ConversationSession.AddMessage.
type Message struct {
	ID        MessageID
	SessionID SessionID
	Role      Role
	Content   Content
	Timestamp time.Time
	Metadata  map[string]any
}

// ConsoleEntry is one prompt/command/output triple of a shell sub-session.
type ConsoleEntry struct {
	PS1     string `json:"ps1"`
	Command string `json:"command"`
	Output  string `json:"output"`
}

// ShellSession is a shell sub-session attached to a conversation. Console
// growth is append-only.
type ShellSession struct {
	ID          string
	SessionID   SessionID
	Console     []ConsoleEntry
	CreatedAt   time.Time
	LastUpdated time.Time
}

// AppendConsole records a console entry and refreshes LastUpdated.
func (s *ShellSession) AppendConsole(ps1, command, output string) {
	s.Console = append(s.Console, ConsoleEntry{PS1: ps1, Command: command, Output: output})
	s.LastUpdated = laterOf(time.Now().UTC(), s.LastUpdated)
}

// LatestOutput returns the output of the most recent console entry, or "".
func (s *ShellSession) LatestOutput() string {
	if len(s.Console) == 0 {
		return ""
	}
	return s.Console[len(s.Console)-1].Output
}

// FileOpType is a recorded file operation kind.
type FileOpType string

const (
	FileOpRead   FileOpType = "read"
	FileOpWrite  FileOpType = "write"
	FileOpDelete FileOpType = "delete"
)

// ParseFileOpType validates a file operation kind.
func ParseFileOpType(s string) (FileOpType, error) {
	switch FileOpType(s) {
	case FileOpRead, FileOpWrite, FileOpDelete:
		return FileOpType(s), nil
	}
	return "", &ValidationError{Field: "operation_type", Reason: "must be one of read, write, delete"}
}

// FileOperation records a file access performed on behalf of a session.
type FileOperation struct {
	Path      string
	SessionID SessionID
	Op        FileOpType
	Content   string
	Timestamp time.Time
}

// ConversationSession is the aggregate root: it owns messages, events, shell
// sub-sessions and file operation records as one consistency unit. All
// mutation is in-memory; persisting the snapshot is the caller's job.
type ConversationSession struct {
	ID             SessionID
	Title          string
	UserID         string
	Messages       []Message
	Events         []Event
	Status         Status
	ShellSessions  []*ShellSession
	FileOperations []FileOperation
	CreatedAt      time.Time
	LastUpdated    time.Time
	UnreadCount    int

	// Version is the persistence revision the snapshot was loaded at.
	// Zero for never-saved sessions; maintained by the store.
	Version int64
}

// NewConversationSession creates a pending session with a fresh id.
func NewConversationSession(title string) *ConversationSession {
	now := time.Now().UTC()
	return &ConversationSession{
		ID:          NewSessionID(),
		Title:       title,
		Status:      StatusPending,
		CreatedAt:   now,
		LastUpdated: now,
	}
}

// AddMessage validates role and content, appends a new message and refreshes
// LastUpdated. Returns a ValidationError for a bad role, empty content or
// content over the length bound.
func (s *ConversationSession) AddMessage(role, content string, metadata map[string]any) (Message, error) {
	r, err := ParseRole(role)
	if err != nil {
		return Message{}, err
	}
	c, err := NewContent(content)
	if err != nil {
		return Message{}, err
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	msg := Message{
		ID:        NewMessageID(),
		SessionID: s.ID,
		Role:      r,
		Content:   c,
		Timestamp: time.Now().UTC(),
		Metadata:  metadata,
	}
	s.Messages = append(s.Messages, msg)
	s.touch()
	return msg, nil
}

// AddEvent appends an event of a canonical type. Unknown types are rejected
// with a ValidationError.
func (s *ConversationSession) AddEvent(eventType string, data map[string]any) (Event, error) {
	if !ValidEventType(eventType) {
		return Event{}, &ValidationError{Field: "event_type", Reason: "unknown event type " + eventType}
	}
	if data == nil {
		data = map[string]any{}
	}
	ev := Event{
		ID:        NewMessageID().String(),
		SessionID: s.ID,
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
	s.Events = append(s.Events, ev)
	s.touch()
	return ev, nil
}

// CreateShellSession attaches a new shell sub-session. Duplicate ids are not
// checked; callers own id uniqueness.
func (s *ConversationSession) CreateShellSession(shellSessionID string) *ShellSession {
	now := time.Now().UTC()
	shell := &ShellSession{
		ID:          shellSessionID,
		SessionID:   s.ID,
		CreatedAt:   now,
		LastUpdated: now,
	}
	s.ShellSessions = append(s.ShellSessions, shell)
	s.touch()
	return shell
}

// FindShellSession returns the shell sub-session with the given id, or nil.
func (s *ConversationSession) FindShellSession(shellSessionID string) *ShellSession {
	for _, shell := range s.ShellSessions {
		if shell.ID == shellSessionID {
			return shell
		}
	}
	return nil
}

// AddFileOperation records a file operation. The operation kind is validated;
// content may be empty for reads and deletes.
func (s *ConversationSession) AddFileOperation(path, opType, content string) (FileOperation, error) {
	op, err := ParseFileOpType(opType)
	if err != nil {
		return FileOperation{}, err
	}
	if path == "" {
		return FileOperation{}, &ValidationError{Field: "file_path", Reason: "must not be empty"}
	}
	fo := FileOperation{
		Path:      path,
		SessionID: s.ID,
		Op:        op,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
	s.FileOperations = append(s.FileOperations, fo)
	s.touch()
	return fo, nil
}

// UpdateStatus overwrites the session status. No transition table is
// enforced.
func (s *ConversationSession) UpdateStatus(status string) error {
	st, err := ParseStatus(status)
	if err != nil {
		return err
	}
	s.Status = st
	s.touch()
	return nil
}

// LatestMessage returns the most recent message, if any.
func (s *ConversationSession) LatestMessage() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// History projects this session's event log into chat turns.
func (s *ConversationSession) History() []HistoryEntry {
	return History(s.Events)
}

// IncrementUnread bumps the unread message counter.
func (s *ConversationSession) IncrementUnread() { s.UnreadCount++ }

// ClearUnread resets the unread message counter.
func (s *ConversationSession) ClearUnread() { s.UnreadCount = 0 }

// Clone returns a snapshot copy sharing no mutable state with the receiver.
// Message metadata and event data maps are copied one level deep; their
// values are write-once after append and safe to share.
func (s *ConversationSession) Clone() *ConversationSession {
	out := *s
	out.Messages = make([]Message, len(s.Messages))
	for i, m := range s.Messages {
		m.Metadata = copyData(m.Metadata)
		out.Messages[i] = m
	}
	out.Events = make([]Event, len(s.Events))
	for i, ev := range s.Events {
		ev.Data = copyData(ev.Data)
		out.Events[i] = ev
	}
	out.ShellSessions = make([]*ShellSession, len(s.ShellSessions))
	for i, shell := range s.ShellSessions {
		copied := *shell
		copied.Console = append([]ConsoleEntry(nil), shell.Console...)
		out.ShellSessions[i] = &copied
	}
	out.FileOperations = append([]FileOperation(nil), s.FileOperations...)
	return &out
}

func copyData(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// touch refreshes LastUpdated, keeping it monotonic even if the wall clock
// steps backwards.
func (s *ConversationSession) touch() {
	s.LastUpdated = laterOf(time.Now().UTC(), s.LastUpdated)
}

func laterOf(a, b time.Time) time.Time {
	if a.Before(b) {
		return b
	}
	return a
}

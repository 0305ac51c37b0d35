package store

import (
	"fmt"
	"time"

	"github.com/likhonsdevbd/sheikh-ai/internal/domain"
)

// sessionRecord is the serialized form of one session. The same schema is
// used as the JSON document value in FileStore and as the record blob in
// SQLiteStore.
type sessionRecord struct {
	SessionID          string                `json:"session_id"`
	Title              string                `json:"title"`
	UserID             string                `json:"user_id,omitempty"`
	Status             string                `json:"status"`
	UnreadMessageCount int                   `json:"unread_message_count"`
	Version            int64                 `json:"version"`
	CreatedAt          string                `json:"created_at"`
	LastUpdated        string                `json:"last_updated"`
	Messages           []messageRecord       `json:"messages"`
	Events             []eventRecord         `json:"events"`
	ShellSessions      []shellSessionRecord  `json:"shell_sessions"`
	FileOperations     []fileOperationRecord `json:"file_operations"`
}

type messageRecord struct {
	MessageID string         `json:"message_id"`
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Timestamp string         `json:"timestamp"`
	Metadata  map[string]any `json:"metadata"`
}

type eventRecord struct {
	EventID   string         `json:"event_id"`
	EventType string         `json:"event_type"`
	Data      map[string]any `json:"data"`
	Timestamp string         `json:"timestamp"`
}

type shellSessionRecord struct {
	ShellSessionID string                `json:"shell_session_id"`
	Console        []domain.ConsoleEntry `json:"console"`
	CreatedAt      string                `json:"created_at"`
	LastUpdated    string                `json:"last_updated"`
}

type fileOperationRecord struct {
	FilePath      string `json:"file_path"`
	OperationType string `json:"operation_type"`
	Content       string `json:"content,omitempty"`
	Timestamp     string `json:"timestamp"`
}

func encodeTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func decodeTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

// encodeSession serializes the full aggregate graph.
func encodeSession(s *domain.ConversationSession) sessionRecord {
	rec := sessionRecord{
		SessionID:          s.ID.String(),
		Title:              s.Title,
		UserID:             s.UserID,
		Status:             string(s.Status),
		UnreadMessageCount: s.UnreadCount,
		Version:            s.Version,
		CreatedAt:          encodeTime(s.CreatedAt),
		LastUpdated:        encodeTime(s.LastUpdated),
		Messages:           make([]messageRecord, 0, len(s.Messages)),
		Events:             make([]eventRecord, 0, len(s.Events)),
		ShellSessions:      make([]shellSessionRecord, 0, len(s.ShellSessions)),
		FileOperations:     make([]fileOperationRecord, 0, len(s.FileOperations)),
	}
	for _, m := range s.Messages {
		rec.Messages = append(rec.Messages, messageRecord{
			MessageID: m.ID.String(),
			Role:      string(m.Role),
			Content:   m.Content.String(),
			Timestamp: encodeTime(m.Timestamp),
			Metadata:  m.Metadata,
		})
	}
	for _, ev := range s.Events {
		rec.Events = append(rec.Events, eventRecord{
			EventID:   ev.ID,
			EventType: ev.Type,
			Data:      ev.Data,
			Timestamp: encodeTime(ev.Timestamp),
		})
	}
	for _, shell := range s.ShellSessions {
		rec.ShellSessions = append(rec.ShellSessions, shellSessionRecord{
			ShellSessionID: shell.ID,
			Console:        shell.Console,
			CreatedAt:      encodeTime(shell.CreatedAt),
			LastUpdated:    encodeTime(shell.LastUpdated),
		})
	}
	for _, fo := range s.FileOperations {
		rec.FileOperations = append(rec.FileOperations, fileOperationRecord{
			FilePath:      fo.Path,
			OperationType: string(fo.Op),
			Content:       fo.Content,
			Timestamp:     encodeTime(fo.Timestamp),
		})
	}
	return rec
}

// decodeSession reconstructs the full aggregate, file operations included,
// from a serialized record.
func decodeSession(rec sessionRecord) (*domain.ConversationSession, error) {
	id, err := domain.ParseSessionID(rec.SessionID)
	if err != nil {
		return nil, err
	}
	status, err := domain.ParseStatus(rec.Status)
	if err != nil {
		return nil, err
	}
	createdAt, err := decodeTime(rec.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("session %s created_at: %w", id, err)
	}
	lastUpdated, err := decodeTime(rec.LastUpdated)
	if err != nil {
		return nil, fmt.Errorf("session %s last_updated: %w", id, err)
	}

	s := &domain.ConversationSession{
		ID:          id,
		Title:       rec.Title,
		UserID:      rec.UserID,
		Status:      status,
		UnreadCount: rec.UnreadMessageCount,
		Version:     rec.Version,
		CreatedAt:   createdAt,
		LastUpdated: lastUpdated,
	}

	for _, mr := range rec.Messages {
		role, err := domain.ParseRole(mr.Role)
		if err != nil {
			return nil, fmt.Errorf("session %s message %s: %w", id, mr.MessageID, err)
		}
		content, err := domain.NewContent(mr.Content)
		if err != nil {
			return nil, fmt.Errorf("session %s message %s: %w", id, mr.MessageID, err)
		}
		ts, err := decodeTime(mr.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("session %s message %s: %w", id, mr.MessageID, err)
		}
		meta := mr.Metadata
		if meta == nil {
			meta = map[string]any{}
		}
		s.Messages = append(s.Messages, domain.Message{
			ID:        domain.MessageID(mr.MessageID),
			SessionID: id,
			Role:      role,
			Content:   content,
			Timestamp: ts,
			Metadata:  meta,
		})
	}

	for _, er := range rec.Events {
		ts, err := decodeTime(er.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("session %s event %s: %w", id, er.EventID, err)
		}
		data := er.Data
		if data == nil {
			data = map[string]any{}
		}
		s.Events = append(s.Events, domain.Event{
			ID:        er.EventID,
			SessionID: id,
			Type:      er.EventType,
			Data:      data,
			Timestamp: ts,
		})
	}

	for _, sr := range rec.ShellSessions {
		createdAt, err := decodeTime(sr.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("session %s shell %s: %w", id, sr.ShellSessionID, err)
		}
		lastUpdated, err := decodeTime(sr.LastUpdated)
		if err != nil {
			return nil, fmt.Errorf("session %s shell %s: %w", id, sr.ShellSessionID, err)
		}
		s.ShellSessions = append(s.ShellSessions, &domain.ShellSession{
			ID:          sr.ShellSessionID,
			SessionID:   id,
			Console:     sr.Console,
			CreatedAt:   createdAt,
			LastUpdated: lastUpdated,
		})
	}

	for _, fr := range rec.FileOperations {
		op, err := domain.ParseFileOpType(fr.OperationType)
		if err != nil {
			return nil, fmt.Errorf("session %s file op %s: %w", id, fr.FilePath, err)
		}
		ts, err := decodeTime(fr.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("session %s file op %s: %w", id, fr.FilePath, err)
		}
		s.FileOperations = append(s.FileOperations, domain.FileOperation{
			Path:      fr.FilePath,
			SessionID: id,
			Op:        op,
			Content:   fr.Content,
			Timestamp: ts,
		})
	}

	return s, nil
}

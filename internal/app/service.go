// Package app exposes the conversation operation surface: application
// services returning the uniform response envelope, and the command/query
// buses that dispatch to them. All domain and persistence errors are
// converted to envelopes here; nothing below the transport layer panics or
// leaks a raw error.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/likhonsdevbd/sheikh-ai/internal/domain"
	"github.com/likhonsdevbd/sheikh-ai/internal/llm"
	"github.com/likhonsdevbd/sheikh-ai/internal/metrics"
	"github.com/likhonsdevbd/sheikh-ai/internal/notify"
	"github.com/likhonsdevbd/sheikh-ai/internal/session"
	"github.com/likhonsdevbd/sheikh-ai/internal/tool"
)

// DefaultSessionTitle is used when CreateSession receives no title.
const DefaultSessionTitle = "New Conversation"

// ConversationService implements the conversation operation surface on top
// of the session domain service and the tool/AI collaborators.
type ConversationService struct {
	sessions *session.Service
	provider llm.Provider
	shell    *tool.ShellRunner
	files    *tool.FileTool
	notifier notify.Notifier
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// NewConversationService wires the application service.
func NewConversationService(
	sessions *session.Service,
	provider llm.Provider,
	shell *tool.ShellRunner,
	files *tool.FileTool,
	notifier notify.Notifier,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *ConversationService {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	return &ConversationService{
		sessions: sessions,
		provider: provider,
		shell:    shell,
		files:    files,
		notifier: notifier,
		metrics:  m,
		logger:   logger.With().Str("component", "app.conversation").Logger(),
	}
}

// CreateSession creates a new pending session and returns its id.
func (s *ConversationService) CreateSession(ctx context.Context, title string) Response {
	if title == "" {
		title = DefaultSessionTitle
	}
	sess, err := s.sessions.Create(ctx, title)
	if err != nil {
		return Internal(fmt.Sprintf("Failed to create session: %v", err))
	}
	return OK(map[string]any{"session_id": sess.ID.String()})
}

// GetSession returns the session's title, status and full event log.
func (s *ConversationService) GetSession(ctx context.Context, sessionID string) Response {
	sess, resp := s.fetch(ctx, sessionID)
	if sess == nil {
		return resp
	}
	return OK(map[string]any{
		"session_id": sess.ID.String(),
		"title":      sess.Title,
		"status":     string(sess.Status),
		"events":     encodeEvents(sess.Events),
	})
}

// ListSessions returns the listing summary for every stored session. Always
// served from the store, never the cache.
func (s *ConversationService) ListSessions(ctx context.Context) Response {
	all, err := s.sessions.List(ctx)
	if err != nil {
		return Internal(fmt.Sprintf("Failed to list sessions: %v", err))
	}

	list := make([]map[string]any, 0, len(all))
	for _, sess := range all {
		var latest string
		var latestAt int64
		if msg, ok := sess.LatestMessage(); ok {
			latest = msg.Content.String()
			latestAt = msg.Timestamp.Unix()
		}
		list = append(list, map[string]any{
			"session_id":           sess.ID.String(),
			"title":                sess.Title,
			"latest_message":       latest,
			"latest_message_at":    latestAt,
			"status":               string(sess.Status),
			"unread_message_count": sess.UnreadCount,
		})
	}
	return OK(map[string]any{"sessions": list})
}

// DeleteSession permanently removes a session from cache and store.
func (s *ConversationService) DeleteSession(ctx context.Context, sessionID string) Response {
	id, err := domain.ParseSessionID(sessionID)
	if err != nil {
		return Internal(fmt.Sprintf("Failed to delete session: %v", err))
	}
	existed, err := s.sessions.Delete(ctx, id)
	if err != nil {
		return Internal(fmt.Sprintf("Failed to delete session: %v", err))
	}
	if !existed {
		return NotFound("Session not found")
	}
	return OK(nil)
}

// StopSession marks a session stopped and persists the change.
func (s *ConversationService) StopSession(ctx context.Context, sessionID string) Response {
	id, err := domain.ParseSessionID(sessionID)
	if err != nil {
		return Internal(fmt.Sprintf("Failed to stop session: %v", err))
	}
	stopped, err := s.sessions.Stop(ctx, id)
	if err != nil {
		return Internal(fmt.Sprintf("Failed to stop session: %v", err))
	}
	if !stopped {
		return NotFound("Session not found")
	}

	if err := s.notifier.Notify(ctx, sessionID, domain.EventStatusChanged, "session stopped"); err != nil {
		s.logger.Debug().Err(err).Msg("stop notification skipped")
	}
	return OK(nil)
}

// SendMessage appends the user message and its event, generates the
// assistant response from the accumulated history, appends the response and
// its event, and persists the whole turn as one snapshot.
func (s *ConversationService) SendMessage(ctx context.Context, sessionID, message string, timestamp int64, eventID string) Response {
	id, err := domain.ParseSessionID(sessionID)
	if err != nil {
		return Internal(fmt.Sprintf("Failed to process chat: %v", err))
	}
	if timestamp == 0 {
		timestamp = time.Now().Unix()
	}

	var responseText string
	var assistantID string
	var generateErr error

	_, err = s.sessions.Mutate(ctx, id, func(sess *domain.ConversationSession) error {
		responseText, assistantID, generateErr = "", "", nil

		userMsg, err := sess.AddMessage(string(domain.RoleUser), message, nil)
		if err != nil {
			return err
		}
		if _, err := sess.AddEvent(domain.EventMessageRecv, map[string]any{
			"message_id": userMsg.ID.String(),
			"content":    userMsg.Content.String(),
			"role":       string(domain.RoleUser),
			"timestamp":  timestamp,
			"event_id":   eventID,
		}); err != nil {
			return err
		}

		reply, err := s.provider.Generate(ctx, historyForProvider(sess))
		if err != nil {
			// A failing provider must not lose the user's message: record
			// the error as an event and persist what we have.
			generateErr = err
			_, evErr := sess.AddEvent(domain.EventError, map[string]any{
				"error_message": err.Error(),
				"error_type":    "ai_generation",
			})
			return evErr
		}

		assistantMsg, err := sess.AddMessage(string(domain.RoleAssistant), reply, nil)
		if err != nil {
			return err
		}
		if _, err := sess.AddEvent(domain.EventMessageSent, map[string]any{
			"message_id": assistantMsg.ID.String(),
			"content":    assistantMsg.Content.String(),
		}); err != nil {
			return err
		}

		responseText = reply
		assistantID = assistantMsg.ID.String()
		return nil
	})
	if err == domain.ErrNotFound {
		return NotFound("Session not found")
	}
	if err != nil {
		if s.metrics != nil {
			s.metrics.ChatTurns.WithLabelValues("error").Inc()
		}
		return Internal(fmt.Sprintf("Failed to process chat: %v", err))
	}
	if generateErr != nil {
		if s.metrics != nil {
			s.metrics.ChatTurns.WithLabelValues("error").Inc()
		}
		if err := s.notifier.Notify(ctx, sessionID, domain.EventError, generateErr.Error()); err != nil {
			s.logger.Debug().Err(err).Msg("error notification skipped")
		}
		return Internal(fmt.Sprintf("Failed to process chat: %v", generateErr))
	}

	if s.metrics != nil {
		s.metrics.ChatTurns.WithLabelValues("ok").Inc()
	}
	return OK(map[string]any{
		"response":   responseText,
		"message_id": assistantID,
	})
}

// GetSessionHistory projects the event log into chronological chat turns.
func (s *ConversationService) GetSessionHistory(ctx context.Context, sessionID string) Response {
	sess, resp := s.fetch(ctx, sessionID)
	if sess == nil {
		return resp
	}

	history := sess.History()
	entries := make([]map[string]any, 0, len(history))
	for _, h := range history {
		entries = append(entries, map[string]any{
			"role":      string(h.Role),
			"content":   h.Content,
			"timestamp": h.Timestamp.UTC().Format(time.RFC3339Nano),
		})
	}
	return OK(map[string]any{
		"session_id": sess.ID.String(),
		"title":      sess.Title,
		"messages":   entries,
	})
}

// ExecuteShellCommand runs a command in one of the session's shell
// sub-sessions (creating it on first use), records the console entry and a
// shell_executed event, and persists. Tool failures are captured in the
// result payload, never raised.
func (s *ConversationService) ExecuteShellCommand(ctx context.Context, sessionID, shellSessionID, command string) Response {
	id, err := domain.ParseSessionID(sessionID)
	if err != nil {
		return Internal(fmt.Sprintf("Failed to execute shell command: %v", err))
	}

	var result tool.Result
	_, err = s.sessions.Mutate(ctx, id, func(sess *domain.ConversationSession) error {
		shell := sess.FindShellSession(shellSessionID)
		if shell == nil {
			shell = sess.CreateShellSession(shellSessionID)
		}

		result = s.shell.Execute(ctx, command)
		shell.AppendConsole("$", command, result.Output)

		_, err := sess.AddEvent(domain.EventShellExecuted, map[string]any{
			"shell_session_id": shellSessionID,
			"command":          command,
			"output":           result.Output,
			"exit_code":        result.ExitCode,
			"success":          result.Success,
		})
		return err
	})
	if err == domain.ErrNotFound {
		return NotFound("Session not found")
	}
	if err != nil {
		return Internal(fmt.Sprintf("Failed to execute shell command: %v", err))
	}

	return OK(map[string]any{
		"shell_session_id": shellSessionID,
		"command":          command,
		"output":           result.Output,
		"exit_code":        result.ExitCode,
		"success":          result.Success,
	})
}

// ViewShellSession returns a shell sub-session's console and latest output.
func (s *ConversationService) ViewShellSession(ctx context.Context, sessionID, shellSessionID string) Response {
	sess, resp := s.fetch(ctx, sessionID)
	if sess == nil {
		return resp
	}
	shell := sess.FindShellSession(shellSessionID)
	if shell == nil {
		return NotFound("Shell session not found")
	}
	return OK(map[string]any{
		"session_id": shell.ID,
		"output":     shell.LatestOutput(),
		"console":    shell.Console,
	})
}

// ViewFileContent reads a file through the file tool and records the read as
// a file operation with its event.
func (s *ConversationService) ViewFileContent(ctx context.Context, sessionID, filePath string) Response {
	id, err := domain.ParseSessionID(sessionID)
	if err != nil {
		return Internal(fmt.Sprintf("Failed to view file: %v", err))
	}

	var result tool.Result
	_, err = s.sessions.Mutate(ctx, id, func(sess *domain.ConversationSession) error {
		result = s.files.Read(filePath)
		if _, err := sess.AddFileOperation(filePath, string(domain.FileOpRead), ""); err != nil {
			return err
		}
		_, err := sess.AddEvent(domain.EventFileOperation, map[string]any{
			"file_path":      filePath,
			"operation_type": string(domain.FileOpRead),
			"success":        result.Success,
		})
		return err
	})
	if err == domain.ErrNotFound {
		return NotFound("Session not found")
	}
	if err != nil {
		return Internal(fmt.Sprintf("Failed to view file: %v", err))
	}

	return OK(map[string]any{
		"file":    filePath,
		"content": result.Output,
	})
}

// WriteFile writes a file through the file tool and records the operation.
func (s *ConversationService) WriteFile(ctx context.Context, sessionID, filePath, content string) Response {
	id, err := domain.ParseSessionID(sessionID)
	if err != nil {
		return Internal(fmt.Sprintf("Failed to write file: %v", err))
	}

	var result tool.Result
	_, err = s.sessions.Mutate(ctx, id, func(sess *domain.ConversationSession) error {
		result = s.files.Write(filePath, content)
		if _, err := sess.AddFileOperation(filePath, string(domain.FileOpWrite), content); err != nil {
			return err
		}
		_, err := sess.AddEvent(domain.EventFileOperation, map[string]any{
			"file_path":      filePath,
			"operation_type": string(domain.FileOpWrite),
			"success":        result.Success,
		})
		return err
	})
	if err == domain.ErrNotFound {
		return NotFound("Session not found")
	}
	if err != nil {
		return Internal(fmt.Sprintf("Failed to write file: %v", err))
	}
	if !result.Success {
		return Internal(fmt.Sprintf("Failed to write file: %s", result.Error))
	}
	return OK(map[string]any{"file": filePath})
}

// fetch resolves a session or builds the matching failure envelope. Exactly
// one of the return values is set.
func (s *ConversationService) fetch(ctx context.Context, sessionID string) (*domain.ConversationSession, Response) {
	id, err := domain.ParseSessionID(sessionID)
	if err != nil {
		return nil, Internal(fmt.Sprintf("Failed to get session: %v", err))
	}
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, Internal(fmt.Sprintf("Failed to get session: %v", err))
	}
	if sess == nil {
		return nil, NotFound("Session not found")
	}
	return sess, Response{}
}

func encodeEvents(events []domain.Event) []map[string]any {
	out := make([]map[string]any, 0, len(events))
	for _, ev := range events {
		out = append(out, map[string]any{
			"event_id":   ev.ID,
			"event_type": ev.Type,
			"data":       ev.Data,
			"timestamp":  ev.Timestamp.UTC().Format(time.RFC3339Nano),
		})
	}
	return out
}

func historyForProvider(sess *domain.ConversationSession) []llm.Message {
	history := sess.History()
	msgs := make([]llm.Message, 0, len(history))
	for _, h := range history {
		msgs = append(msgs, llm.Message{Role: string(h.Role), Content: h.Content})
	}
	return msgs
}

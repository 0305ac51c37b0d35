package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConversationSession(t *testing.T) {
	sess := NewConversationSession("My Session")
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, "My Session", sess.Title)
	assert.Equal(t, StatusPending, sess.Status)
	assert.Empty(t, sess.Messages)
	assert.Empty(t, sess.Events)
	assert.Equal(t, int64(0), sess.Version)
	assert.False(t, sess.CreatedAt.IsZero())
	assert.Equal(t, sess.CreatedAt, sess.LastUpdated)
}

func TestAddMessage_Success(t *testing.T) {
	sess := NewConversationSession("test")
	msg, err := sess.AddMessage("user", "hello", nil)
	require.NoError(t, err)
	assert.Equal(t, RoleUser, msg.Role)
	assert.Equal(t, "hello", msg.Content.String())
	assert.Equal(t, sess.ID, msg.SessionID)
	assert.NotEmpty(t, msg.ID)
	assert.NotNil(t, msg.Metadata)
	require.Len(t, sess.Messages, 1)
	assert.Equal(t, msg.ID, sess.Messages[0].ID)
}

func TestAddMessage_InvalidRole(t *testing.T) {
	sess := NewConversationSession("test")
	_, err := sess.AddMessage("bogus", "hello", nil)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Empty(t, sess.Messages)
}

func TestAddMessage_EmptyContent(t *testing.T) {
	sess := NewConversationSession("test")
	_, err := sess.AddMessage("user", "   ", nil)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestAddMessage_ContentLengthBoundary(t *testing.T) {
	sess := NewConversationSession("test")

	// Exactly at the bound is accepted.
	_, err := sess.AddMessage("user", strings.Repeat("x", MaxContentLength), nil)
	require.NoError(t, err)

	// One character over is rejected.
	_, err = sess.AddMessage("user", strings.Repeat("x", MaxContentLength+1), nil)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Len(t, sess.Messages, 1)
}

func TestAddMessage_MultibyteCountsRunes(t *testing.T) {
	sess := NewConversationSession("test")
	// 10000 multibyte runes exceed 10000 bytes but stay within the bound.
	_, err := sess.AddMessage("user", strings.Repeat("é", MaxContentLength), nil)
	require.NoError(t, err)
}

func TestAddEvent_AppendOnlyGrowth(t *testing.T) {
	sess := NewConversationSession("test")
	first, err := sess.AddEvent(EventSessionCreated, nil)
	require.NoError(t, err)
	second, err := sess.AddEvent(EventMessageRecv, map[string]any{"content": "hi"})
	require.NoError(t, err)

	require.Len(t, sess.Events, 2)
	assert.Equal(t, first.ID, sess.Events[0].ID)
	assert.Equal(t, second.ID, sess.Events[1].ID)
	assert.NotNil(t, sess.Events[0].Data)
}

func TestAddEvent_UnknownType(t *testing.T) {
	sess := NewConversationSession("test")
	_, err := sess.AddEvent("bogus", nil)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Empty(t, sess.Events)
}

func TestUpdateStatus(t *testing.T) {
	sess := NewConversationSession("test")

	require.NoError(t, sess.UpdateStatus("running"))
	assert.Equal(t, StatusRunning, sess.Status)

	// Transitions are unconstrained: completed back to pending is legal.
	require.NoError(t, sess.UpdateStatus("completed"))
	require.NoError(t, sess.UpdateStatus("pending"))
	assert.Equal(t, StatusPending, sess.Status)

	err := sess.UpdateStatus("bogus")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Equal(t, StatusPending, sess.Status)
}

func TestLatestMessage(t *testing.T) {
	sess := NewConversationSession("test")

	_, ok := sess.LatestMessage()
	assert.False(t, ok)

	_, err := sess.AddMessage("user", "first", nil)
	require.NoError(t, err)
	second, err := sess.AddMessage("assistant", "second", nil)
	require.NoError(t, err)

	latest, ok := sess.LatestMessage()
	require.True(t, ok)
	assert.Equal(t, second.ID, latest.ID)
}

func TestShellSessions(t *testing.T) {
	sess := NewConversationSession("test")

	assert.Nil(t, sess.FindShellSession("shell-1"))

	shell := sess.CreateShellSession("shell-1")
	require.NotNil(t, shell)
	assert.Equal(t, "shell-1", shell.ID)
	assert.Equal(t, sess.ID, shell.SessionID)
	assert.Equal(t, "", shell.LatestOutput())

	shell.AppendConsole("$", "ls", "main.go")
	shell.AppendConsole("$", "pwd", "/tmp")
	assert.Equal(t, "/tmp", shell.LatestOutput())
	require.Len(t, shell.Console, 2)
	assert.Equal(t, "ls", shell.Console[0].Command)

	found := sess.FindShellSession("shell-1")
	require.NotNil(t, found)
	assert.Same(t, shell, found)
}

func TestAddFileOperation(t *testing.T) {
	sess := NewConversationSession("test")

	fo, err := sess.AddFileOperation("/tmp/a.txt", "write", "data")
	require.NoError(t, err)
	assert.Equal(t, FileOpWrite, fo.Op)
	assert.Equal(t, "data", fo.Content)
	require.Len(t, sess.FileOperations, 1)

	_, err = sess.AddFileOperation("/tmp/a.txt", "bogus", "")
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	_, err = sess.AddFileOperation("", "read", "")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Len(t, sess.FileOperations, 1)
}

func TestUnreadCounter(t *testing.T) {
	sess := NewConversationSession("test")
	assert.Equal(t, 0, sess.UnreadCount)
	sess.IncrementUnread()
	sess.IncrementUnread()
	assert.Equal(t, 2, sess.UnreadCount)
	sess.ClearUnread()
	assert.Equal(t, 0, sess.UnreadCount)
}

func TestHistory_Projection(t *testing.T) {
	sess := NewConversationSession("test")

	_, err := sess.AddEvent(EventSessionCreated, nil)
	require.NoError(t, err)
	_, err = sess.AddEvent(EventMessageRecv, map[string]any{"content": "hi"})
	require.NoError(t, err)
	_, err = sess.AddEvent(EventStep, map[string]any{"status": "thinking"})
	require.NoError(t, err)
	_, err = sess.AddEvent(EventMessageSent, map[string]any{"content": "hello"})
	require.NoError(t, err)

	history := sess.History()
	require.Len(t, history, 2)
	assert.Equal(t, RoleUser, history[0].Role)
	assert.Equal(t, "hi", history[0].Content)
	assert.Equal(t, RoleAssistant, history[1].Role)
	assert.Equal(t, "hello", history[1].Content)

	// Projection is pure: running it again gives the same result.
	assert.Equal(t, history, sess.History())
}

func TestHistory_MissingContentKey(t *testing.T) {
	events := []Event{
		{Type: EventMessageRecv, Data: map[string]any{}, Timestamp: time.Now()},
	}
	history := History(events)
	require.Len(t, history, 1)
	assert.Equal(t, "", history[0].Content)
}

func TestClone_SharesNoMutableState(t *testing.T) {
	sess := NewConversationSession("original")
	_, err := sess.AddMessage("user", "hello", map[string]any{"k": "v"})
	require.NoError(t, err)
	_, err = sess.AddEvent(EventMessageRecv, map[string]any{"content": "hello"})
	require.NoError(t, err)
	shell := sess.CreateShellSession("sh-1")
	shell.AppendConsole("$", "ls", "out")
	_, err = sess.AddFileOperation("/tmp/a", "read", "")
	require.NoError(t, err)

	clone := sess.Clone()
	require.Len(t, clone.Messages, 1)
	require.Len(t, clone.Events, 1)
	require.Len(t, clone.ShellSessions, 1)
	require.Len(t, clone.FileOperations, 1)

	// Mutating the original never shows through the clone.
	_, err = sess.AddMessage("assistant", "reply", nil)
	require.NoError(t, err)
	sess.Events[0].Data["content"] = "rewritten"
	sess.Messages[0].Metadata["k"] = "changed"
	shell.AppendConsole("$", "pwd", "/tmp")

	assert.Len(t, clone.Messages, 1)
	assert.Equal(t, "hello", clone.Events[0].Data["content"])
	assert.Equal(t, "v", clone.Messages[0].Metadata["k"])
	assert.Len(t, clone.ShellSessions[0].Console, 1)
	assert.NotSame(t, sess.ShellSessions[0], clone.ShellSessions[0])
}

func TestTouch_MonotonicLastUpdated(t *testing.T) {
	sess := NewConversationSession("test")
	future := time.Now().Add(time.Hour).UTC()
	sess.LastUpdated = future
	_, err := sess.AddMessage("user", "hello", nil)
	require.NoError(t, err)
	assert.False(t, sess.LastUpdated.Before(future))
}

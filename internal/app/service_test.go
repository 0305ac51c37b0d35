package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/likhonsdevbd/sheikh-ai/internal/domain"
	"github.com/likhonsdevbd/sheikh-ai/internal/llm"
	"github.com/likhonsdevbd/sheikh-ai/internal/notify"
	"github.com/likhonsdevbd/sheikh-ai/internal/session"
	"github.com/likhonsdevbd/sheikh-ai/internal/store"
	"github.com/likhonsdevbd/sheikh-ai/internal/tool"
)

// failingProvider always errors, for testing the degraded chat path.
type failingProvider struct{}

func (failingProvider) Generate(context.Context, []llm.Message) (string, error) {
	return "", errors.New("model unavailable")
}

func newTestConversationService(t *testing.T, provider llm.Provider) *ConversationService {
	t.Helper()
	repo, err := store.NewFileStore(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	sessions := session.NewService(repo, zerolog.Nop())
	if provider == nil {
		provider = llm.NewStubProvider()
	}
	shell := tool.NewShellRunner(t.TempDir(), 0, nil, zerolog.Nop())
	files := tool.NewFileTool(zerolog.Nop())
	return NewConversationService(sessions, provider, shell, files, notify.Noop{}, nil, zerolog.Nop())
}

func createTestSession(t *testing.T, svc *ConversationService) string {
	t.Helper()
	resp := svc.CreateSession(context.Background(), "test session")
	require.Equal(t, 0, resp.Code)
	data := resp.Data.(map[string]any)
	id, ok := data["session_id"].(string)
	require.True(t, ok)
	require.NotEmpty(t, id)
	return id
}

func TestCreateSession_DefaultTitle(t *testing.T) {
	svc := newTestConversationService(t, nil)
	id := createTestSession(t, svc)

	resp := svc.GetSession(context.Background(), id)
	require.Equal(t, 0, resp.Code)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "test session", data["title"])

	resp = svc.CreateSession(context.Background(), "")
	require.Equal(t, 0, resp.Code)
	untitled := resp.Data.(map[string]any)["session_id"].(string)
	resp = svc.GetSession(context.Background(), untitled)
	require.Equal(t, 0, resp.Code)
	assert.Equal(t, DefaultSessionTitle, resp.Data.(map[string]any)["title"])
}

func TestGetSession_NotFound(t *testing.T) {
	svc := newTestConversationService(t, nil)
	resp := svc.GetSession(context.Background(), domain.NewSessionID().String())
	assert.Equal(t, 404, resp.Code)
	assert.Equal(t, "Session not found", resp.Msg)
	assert.Nil(t, resp.Data)
}

func TestGetSession_IncludesEvents(t *testing.T) {
	svc := newTestConversationService(t, nil)
	id := createTestSession(t, svc)

	resp := svc.GetSession(context.Background(), id)
	require.Equal(t, 0, resp.Code)
	events := resp.Data.(map[string]any)["events"].([]map[string]any)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventSessionCreated, events[0]["event_type"])
}

func TestSendMessage_FullTurn(t *testing.T) {
	stub := llm.NewStubProvider()
	stub.Responses["hi"] = "hello back"
	svc := newTestConversationService(t, stub)
	id := createTestSession(t, svc)
	ctx := context.Background()

	resp := svc.SendMessage(ctx, id, "hi", 0, "ev-1")
	require.Equal(t, 0, resp.Code)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "hello back", data["response"])
	assert.NotEmpty(t, data["message_id"])

	// The turn shows up in the projected history.
	resp = svc.GetSessionHistory(ctx, id)
	require.Equal(t, 0, resp.Code)
	msgs := resp.Data.(map[string]any)["messages"].([]map[string]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "user", msgs[0]["role"])
	assert.Equal(t, "hi", msgs[0]["content"])
	assert.Equal(t, "assistant", msgs[1]["role"])
	assert.Equal(t, "hello back", msgs[1]["content"])
}

func TestSendMessage_SessionNotFound(t *testing.T) {
	svc := newTestConversationService(t, nil)
	resp := svc.SendMessage(context.Background(), domain.NewSessionID().String(), "hi", 0, "")
	assert.Equal(t, 404, resp.Code)
}

func TestSendMessage_EmptyContent(t *testing.T) {
	svc := newTestConversationService(t, nil)
	id := createTestSession(t, svc)
	resp := svc.SendMessage(context.Background(), id, "   ", 0, "")
	assert.Equal(t, 500, resp.Code)
}

func TestSendMessage_ProviderFailurePersistsUserMessage(t *testing.T) {
	svc := newTestConversationService(t, failingProvider{})
	id := createTestSession(t, svc)
	ctx := context.Background()

	resp := svc.SendMessage(ctx, id, "hi", 0, "")
	assert.Equal(t, 500, resp.Code)
	assert.Contains(t, resp.Msg, "model unavailable")

	// The user's message and an error event survive the failure.
	got := svc.GetSession(ctx, id)
	require.Equal(t, 0, got.Code)
	events := got.Data.(map[string]any)["events"].([]map[string]any)
	var types []string
	for _, ev := range events {
		types = append(types, ev["event_type"].(string))
	}
	assert.Contains(t, types, domain.EventMessageRecv)
	assert.Contains(t, types, domain.EventError)
	assert.NotContains(t, types, domain.EventMessageSent)

	history := svc.GetSessionHistory(ctx, id)
	require.Equal(t, 0, history.Code)
	msgs := history.Data.(map[string]any)["messages"].([]map[string]any)
	require.Len(t, msgs, 1)
	assert.Equal(t, "user", msgs[0]["role"])
}

func TestListSessions_Summary(t *testing.T) {
	svc := newTestConversationService(t, nil)
	ctx := context.Background()
	id := createTestSession(t, svc)

	resp := svc.SendMessage(ctx, id, "latest words", 0, "")
	require.Equal(t, 0, resp.Code)

	resp = svc.ListSessions(ctx)
	require.Equal(t, 0, resp.Code)
	list := resp.Data.(map[string]any)["sessions"].([]map[string]any)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0]["session_id"])
	// Latest message is the assistant reply, not the user's text.
	assert.NotEmpty(t, list[0]["latest_message"])
	assert.NotZero(t, list[0]["latest_message_at"])
}

func TestDeleteSession(t *testing.T) {
	svc := newTestConversationService(t, nil)
	ctx := context.Background()
	id := createTestSession(t, svc)

	resp := svc.DeleteSession(ctx, id)
	assert.Equal(t, 0, resp.Code)

	resp = svc.DeleteSession(ctx, id)
	assert.Equal(t, 404, resp.Code)

	resp = svc.GetSession(ctx, id)
	assert.Equal(t, 404, resp.Code)
}

func TestStopSession(t *testing.T) {
	svc := newTestConversationService(t, nil)
	ctx := context.Background()
	id := createTestSession(t, svc)

	resp := svc.StopSession(ctx, id)
	assert.Equal(t, 0, resp.Code)

	got := svc.GetSession(ctx, id)
	require.Equal(t, 0, got.Code)
	assert.Equal(t, "stopped", got.Data.(map[string]any)["status"])

	resp = svc.StopSession(ctx, domain.NewSessionID().String())
	assert.Equal(t, 404, resp.Code)
}

func TestExecuteShellCommand(t *testing.T) {
	svc := newTestConversationService(t, nil)
	ctx := context.Background()
	id := createTestSession(t, svc)

	resp := svc.ExecuteShellCommand(ctx, id, "shell-1", "echo tool-output")
	require.Equal(t, 0, resp.Code)
	data := resp.Data.(map[string]any)
	assert.Equal(t, true, data["success"])
	assert.Equal(t, "tool-output", data["output"])

	// The console is visible through the view endpoint.
	resp = svc.ViewShellSession(ctx, id, "shell-1")
	require.Equal(t, 0, resp.Code)
	view := resp.Data.(map[string]any)
	assert.Equal(t, "shell-1", view["session_id"])
	assert.Equal(t, "tool-output", view["output"])
}

func TestExecuteShellCommand_FailureStillRecorded(t *testing.T) {
	svc := newTestConversationService(t, nil)
	ctx := context.Background()
	id := createTestSession(t, svc)

	// A failing command is a successful operation with a failure payload.
	resp := svc.ExecuteShellCommand(ctx, id, "shell-1", "exit 7")
	require.Equal(t, 0, resp.Code)
	data := resp.Data.(map[string]any)
	assert.Equal(t, false, data["success"])
	assert.Equal(t, 7, data["exit_code"])
}

func TestViewShellSession_NotFound(t *testing.T) {
	svc := newTestConversationService(t, nil)
	id := createTestSession(t, svc)

	resp := svc.ViewShellSession(context.Background(), id, "no-such-shell")
	assert.Equal(t, 404, resp.Code)
	assert.Equal(t, "Shell session not found", resp.Msg)
}

func TestWriteAndViewFile(t *testing.T) {
	svc := newTestConversationService(t, nil)
	ctx := context.Background()
	id := createTestSession(t, svc)
	path := filepath.Join(t.TempDir(), "notes.txt")

	resp := svc.WriteFile(ctx, id, path, "file body")
	require.Equal(t, 0, resp.Code)

	resp = svc.ViewFileContent(ctx, id, path)
	require.Equal(t, 0, resp.Code)
	data := resp.Data.(map[string]any)
	assert.Equal(t, path, data["file"])
	assert.Equal(t, "file body", data["content"])

	// Both operations leave file_operation events behind.
	got := svc.GetSession(ctx, id)
	require.Equal(t, 0, got.Code)
	events := got.Data.(map[string]any)["events"].([]map[string]any)
	var fileOps int
	for _, ev := range events {
		if ev["event_type"] == domain.EventFileOperation {
			fileOps++
		}
	}
	assert.Equal(t, 2, fileOps)
}

func TestGetSessionHistory_NotFound(t *testing.T) {
	svc := newTestConversationService(t, nil)
	resp := svc.GetSessionHistory(context.Background(), domain.NewSessionID().String())
	assert.Equal(t, 404, resp.Code)
}

func TestResponseHelpers(t *testing.T) {
	ok := OK(map[string]any{"k": "v"})
	assert.Equal(t, 0, ok.Code)
	assert.Equal(t, "success", ok.Msg)

	nf := NotFound("gone")
	assert.Equal(t, 404, nf.Code)
	assert.Equal(t, "gone", nf.Msg)
	assert.Nil(t, nf.Data)

	internal := Internal("boom")
	assert.Equal(t, 500, internal.Code)
}

package app

import (
	"context"
	"fmt"
	"reflect"
)

// Command types form a closed set; one handler per type is registered at
// startup. The buses carry no retry, backoff or ordering logic — they only
// document and dispatch the operation surface.

type CreateSession struct {
	Title string
}

type DeleteSession struct {
	SessionID string
}

type StopSession struct {
	SessionID string
}

type SendMessage struct {
	SessionID string
	Message   string
	Timestamp int64
	EventID   string
}

type ExecuteShellCommand struct {
	SessionID      string
	ShellSessionID string
	Command        string
}

type WriteFile struct {
	SessionID string
	Path      string
	Content   string
}

// HandlerFunc handles one command or query type.
type HandlerFunc func(ctx context.Context, msg any) Response

// CommandBus maps each command type to its single handler.
type CommandBus struct {
	handlers map[reflect.Type]HandlerFunc
}

// NewCommandBus creates an empty command bus.
func NewCommandBus() *CommandBus {
	return &CommandBus{handlers: make(map[reflect.Type]HandlerFunc)}
}

// Register binds a handler to the concrete type of sample. Re-registering a
// type replaces the previous handler.
func (b *CommandBus) Register(sample any, fn HandlerFunc) {
	b.handlers[reflect.TypeOf(sample)] = fn
}

// Send dispatches the command to its handler.
func (b *CommandBus) Send(ctx context.Context, cmd any) (Response, error) {
	fn, ok := b.handlers[reflect.TypeOf(cmd)]
	if !ok {
		return Response{}, fmt.Errorf("no handler registered for command type %T", cmd)
	}
	return fn(ctx, cmd), nil
}

// RegisterCommandHandlers binds every command type to the conversation
// service.
func RegisterCommandHandlers(bus *CommandBus, svc *ConversationService) {
	bus.Register(CreateSession{}, func(ctx context.Context, msg any) Response {
		c := msg.(CreateSession)
		return svc.CreateSession(ctx, c.Title)
	})
	bus.Register(DeleteSession{}, func(ctx context.Context, msg any) Response {
		c := msg.(DeleteSession)
		return svc.DeleteSession(ctx, c.SessionID)
	})
	bus.Register(StopSession{}, func(ctx context.Context, msg any) Response {
		c := msg.(StopSession)
		return svc.StopSession(ctx, c.SessionID)
	})
	bus.Register(SendMessage{}, func(ctx context.Context, msg any) Response {
		c := msg.(SendMessage)
		return svc.SendMessage(ctx, c.SessionID, c.Message, c.Timestamp, c.EventID)
	})
	bus.Register(ExecuteShellCommand{}, func(ctx context.Context, msg any) Response {
		c := msg.(ExecuteShellCommand)
		return svc.ExecuteShellCommand(ctx, c.SessionID, c.ShellSessionID, c.Command)
	})
	bus.Register(WriteFile{}, func(ctx context.Context, msg any) Response {
		c := msg.(WriteFile)
		return svc.WriteFile(ctx, c.SessionID, c.Path, c.Content)
	})
}

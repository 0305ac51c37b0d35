package app

import (
	"context"
	"fmt"
	"reflect"
)

type GetSession struct {
	SessionID string
}

type ListSessions struct{}

type GetSessionHistory struct {
	SessionID string
}

type ViewShellSession struct {
	SessionID      string
	ShellSessionID string
}

type ViewFileContent struct {
	SessionID string
	Path      string
}

// QueryBus maps each query type to its single handler.
type QueryBus struct {
	handlers map[reflect.Type]HandlerFunc
}

// NewQueryBus creates an empty query bus.
func NewQueryBus() *QueryBus {
	return &QueryBus{handlers: make(map[reflect.Type]HandlerFunc)}
}

// Register binds a handler to the concrete type of sample.
func (b *QueryBus) Register(sample any, fn HandlerFunc) {
	b.handlers[reflect.TypeOf(sample)] = fn
}

// Ask dispatches the query to its handler.
func (b *QueryBus) Ask(ctx context.Context, q any) (Response, error) {
	fn, ok := b.handlers[reflect.TypeOf(q)]
	if !ok {
		return Response{}, fmt.Errorf("no handler registered for query type %T", q)
	}
	return fn(ctx, q), nil
}

// RegisterQueryHandlers binds every query type to the conversation service.
func RegisterQueryHandlers(bus *QueryBus, svc *ConversationService) {
	bus.Register(GetSession{}, func(ctx context.Context, msg any) Response {
		q := msg.(GetSession)
		return svc.GetSession(ctx, q.SessionID)
	})
	bus.Register(ListSessions{}, func(ctx context.Context, msg any) Response {
		return svc.ListSessions(ctx)
	})
	bus.Register(GetSessionHistory{}, func(ctx context.Context, msg any) Response {
		q := msg.(GetSessionHistory)
		return svc.GetSessionHistory(ctx, q.SessionID)
	})
	bus.Register(ViewShellSession{}, func(ctx context.Context, msg any) Response {
		q := msg.(ViewShellSession)
		return svc.ViewShellSession(ctx, q.SessionID, q.ShellSessionID)
	})
	bus.Register(ViewFileContent{}, func(ctx context.Context, msg any) Response {
		q := msg.(ViewFileContent)
		return svc.ViewFileContent(ctx, q.SessionID, q.Path)
	})
}

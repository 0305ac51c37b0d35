package llm

import (
	"context"
	"fmt"
)

// StubProvider returns deterministic responses keyed by the last user
// message. Used when no API key is configured and throughout the tests, so
// the chat flow never depends on a real model.
type StubProvider struct {
	// Responses maps an exact user message to a canned reply.
	Responses map[string]string
}

// NewStubProvider creates a stub with no canned replies.
func NewStubProvider() *StubProvider {
	return &StubProvider{Responses: map[string]string{}}
}

// Generate echoes an acknowledgement of the last user message, or the canned
// reply registered for it.
func (p *StubProvider) Generate(_ context.Context, history []Message) (string, error) {
	var last string
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == "user" {
			last = history[i].Content
			break
		}
	}
	if reply, ok := p.Responses[last]; ok {
		return reply, nil
	}
	return fmt.Sprintf("I understand you said: '%s'. How can I help you with tools like shell commands, file operations, or browser automation?", last), nil
}

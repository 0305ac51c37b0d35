// Package llm defines the text-generation provider interface consumed by the
// chat flow. Providers are interchangeable behind this interface — OpenAI in
// production, a deterministic stub in tests.
package llm

import (
	"context"
)

// Message is one turn of accumulated history handed to the provider.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider generates a response from the accumulated message history.
type Provider interface {
	Generate(ctx context.Context, history []Message) (string, error)
}

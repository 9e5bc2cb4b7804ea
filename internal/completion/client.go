// Package completion wraps the chat-completion backend behind a small
// interface so the scorer can run against Azure OpenAI in production and a
// deterministic stub in tests.
package completion

import (
	"context"
	"errors"
	"fmt"

	"github.com/pitchscoop/pitchscoop-backend/internal/config"
)

// ErrUnavailable wraps any transport or provider failure
var ErrUnavailable = errors.New("completion provider unavailable")

// Message is one chat message
type Message struct {
	Role    string
	Content string
}

// Request is a single chat-completion request. JSONOnly asks the provider to
// constrain output to a JSON object where supported.
type Request struct {
	Messages    []Message
	Temperature float32
	MaxTokens   int
	JSONOnly    bool
}

// Response is the provider's answer
type Response struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
}

// Client sends chat-completion requests. Complete blocks until the provider
// answers or ctx is done; there is no implicit retry.
type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)
	Name() string
}

// NewClient builds a client from provider configuration
func NewClient(cfg config.ProviderConfig) (Client, error) {
	switch cfg.Type {
	case "azure-openai", "openai":
		return NewOpenAIClient(cfg)
	case "stub":
		return NewStubClient(), nil
	default:
		return nil, fmt.Errorf("unknown provider type: %q", cfg.Type)
	}
}

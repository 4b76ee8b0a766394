package llm

import (
	"context"
	"fmt"
)

// Message roles used in chat requests.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Config holds LLM client configuration.
type Config struct {
	APIKey    string // Required: API key for the provider
	BaseURL   string // Optional: custom API endpoint
	Model     string // Model name (e.g., "gpt-4o-mini")
	MaxTokens int    // Response cap; 0 means the client default
}

// Message represents one turn of a chat conversation.
type Message struct {
	Role    string // "system", "user", "assistant"
	Content string
}

// ChatRequest contains the messages for a single completion call.
type ChatRequest struct {
	Messages    []Message
	MaxTokens   int
	Temperature *float64
}

// ChatResponse contains the model's reply.
type ChatResponse struct {
	Content          string
	FinishReason     string
	PromptTokens     int
	CompletionTokens int
}

// ChatClient is a plain (no tool-calling) chat completion client.
type ChatClient interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	Model() string
}

// NewChatClient creates a ChatClient backed by the OpenAI API.
func NewChatClient(cfg Config) (ChatClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	return newOpenAIClient(cfg)
}

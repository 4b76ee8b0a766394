package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"idekassen.app/intake/common/llm"
	"idekassen.app/intake/internal/model"
	"idekassen.app/intake/internal/prompt"
)

var ErrEmptyPRD = errors.New("model returned an empty document")

// PRDService turns an approved suggestion into a requirements document.
// Output is not deterministic; re-running for the same suggestion may
// produce a different document.
type PRDService interface {
	Generate(ctx context.Context, sg *model.Suggestion) (string, error)
}

type prdService struct {
	chat      llm.ChatClient
	maxTokens int
}

func NewPRDService(chat llm.ChatClient, maxTokens int) PRDService {
	return &prdService{
		chat:      chat,
		maxTokens: maxTokens,
	}
}

func (s *prdService) Generate(ctx context.Context, sg *model.Suggestion) (string, error) {
	start := time.Now()

	resp, err := s.chat.Chat(ctx, llm.ChatRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: prompt.PRDSystem},
			{Role: llm.RoleUser, Content: prompt.PRDRequest(sg.Title, sg.Description, sg.Conversation)},
		},
		MaxTokens: s.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("generating prd: %w", err)
	}
	if resp.Content == "" {
		return "", ErrEmptyPRD
	}

	slog.InfoContext(ctx, "prd generated",
		"suggestion_id", sg.ID,
		"duration_ms", time.Since(start).Milliseconds(),
		"prompt_tokens", resp.PromptTokens,
		"completion_tokens", resp.CompletionTokens,
	)

	return resp.Content, nil
}

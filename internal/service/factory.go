package service

import (
	"idekassen.app/intake/common/llm"
	"idekassen.app/intake/core/config"
	"idekassen.app/intake/internal/queue"
	"idekassen.app/intake/internal/store"
)

type Services struct {
	conversations ConversationService
	reviews       ReviewService
	prds          PRDService
	auth          AuthService
}

// NewServices wires every service once. Conversation turns carry per-suggestion
// in-flight state, so the same instance must serve all requests.
func NewServices(
	stores *store.Stores,
	chatClient llm.ChatClient,
	prdClient llm.ChatClient,
	producer queue.Producer,
	cfg config.Config,
) *Services {
	return &Services{
		conversations: NewConversationService(stores.Suggestions(), chatClient, cfg.ChatLLM.MaxTokens),
		reviews:       NewReviewService(stores.Suggestions(), producer),
		prds:          NewPRDService(prdClient, cfg.PRDLLM.MaxTokens),
		auth:          NewAuthService(stores.Users(), stores.Sessions(), cfg.WorkOS),
	}
}

func (s *Services) Conversations() ConversationService { return s.conversations }
func (s *Services) Reviews() ReviewService             { return s.reviews }
func (s *Services) PRDs() PRDService                   { return s.prds }
func (s *Services) Auth() AuthService                  { return s.auth }

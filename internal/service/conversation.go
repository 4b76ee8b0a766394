package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"idekassen.app/intake/common/llm"
	"idekassen.app/intake/common/logger"
	"idekassen.app/intake/internal/model"
	"idekassen.app/intake/internal/prompt"
	"idekassen.app/intake/internal/store"
)

const (
	// MaxRounds caps the number of submitter turns per conversation.
	MaxRounds = 5
	// MinRoundsToComplete is the engagement floor before a suggestion can be
	// handed over for review.
	MinRoundsToComplete = 2

	// attachmentPlaceholder stands in for the message text when a submitter
	// sends files without writing anything.
	attachmentPlaceholder = "Vedhæftede filer til gennemgang"
)

var (
	ErrSuggestionNotFound = errors.New("suggestion not found")
	ErrNotOwner           = errors.New("suggestion belongs to another user")
	ErrEmptyTitle         = errors.New("title and description are required")
	ErrInvalidDepartment  = errors.New("unknown department")
	ErrEmptyTurn          = errors.New("message is empty and has no attachments")
	ErrRoundLimit         = errors.New("conversation round limit reached")
	ErrTooFewRounds       = errors.New("conversation has not reached the minimum number of rounds")
	ErrTurnInFlight       = errors.New("another turn is already in progress for this suggestion")
	ErrEmptyReply         = errors.New("model returned an empty reply")
	ErrConversationClosed = errors.New("conversation is closed for this suggestion")
)

type ConversationService interface {
	// Start creates a suggestion and seeds its conversation with an opening
	// assistant message.
	Start(ctx context.Context, user *model.User, title, description string, department model.Department) (*model.Suggestion, error)
	// SubmitTurn appends one submitter turn and the assistant's reply.
	SubmitTurn(ctx context.Context, userID, suggestionID int64, text string, attachments []model.Attachment) (*model.Suggestion, error)
	// CanComplete reports whether the conversation has enough rounds to be
	// handed over for review.
	CanComplete(conversation []model.Message) bool
	// Complete finalizes the conversation, leaving the suggestion review-ready.
	Complete(ctx context.Context, userID, suggestionID int64) (*model.Suggestion, error)
	Get(ctx context.Context, userID, suggestionID int64) (*model.Suggestion, error)
	ListMine(ctx context.Context, userID int64) ([]model.Suggestion, error)
}

type conversationService struct {
	suggestions store.SuggestionStore
	chat        llm.ChatClient
	maxTokens   int
	inflight    *sync.Map // suggestion id -> struct{}, one turn at a time
}

func NewConversationService(suggestions store.SuggestionStore, chat llm.ChatClient, maxTokens int) ConversationService {
	return &conversationService{
		suggestions: suggestions,
		chat:        chat,
		maxTokens:   maxTokens,
		inflight:    &sync.Map{},
	}
}

func (s *conversationService) Start(ctx context.Context, user *model.User, title, description string, department model.Department) (*model.Suggestion, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" || description == "" {
		return nil, ErrEmptyTitle
	}
	if !department.Valid() {
		return nil, ErrInvalidDepartment
	}

	sg := &model.Suggestion{
		UserID:      user.ID,
		Title:       title,
		Description: description,
		Department:  department,
		Status:      model.StatusPending,
	}
	if err := s.suggestions.Create(ctx, sg); err != nil {
		return nil, fmt.Errorf("creating suggestion: %w", err)
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		SuggestionID: logger.Ptr(sg.ID),
		UserID:       logger.Ptr(user.ID),
	})

	greeting := s.openingMessage(ctx, sg)
	sg.Conversation = []model.Message{{Role: model.MessageRoleAssistant, Content: greeting}}
	if err := s.suggestions.UpdateConversation(ctx, sg.ID, sg.Conversation); err != nil {
		return nil, fmt.Errorf("persisting opening message: %w", err)
	}

	slog.InfoContext(ctx, "suggestion created",
		"department", sg.Department,
		"title", logger.Truncate(sg.Title, 80),
	)

	return sg, nil
}

// openingMessage asks the model for a personalized greeting and falls back to
// a fixed one when the model is unreachable. Start never fails on the model.
func (s *conversationService) openingMessage(ctx context.Context, sg *model.Suggestion) string {
	resp, err := s.chat.Chat(ctx, llm.ChatRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: prompt.Greeting(sg.Title, sg.Description)},
		},
		MaxTokens: s.maxTokens,
	})
	if err != nil || resp.Content == "" {
		slog.WarnContext(ctx, "greeting generation failed, using fallback", "error", err)
		return prompt.GreetingFallback(sg.Title)
	}
	return resp.Content
}

func (s *conversationService) SubmitTurn(ctx context.Context, userID, suggestionID int64, text string, attachments []model.Attachment) (*model.Suggestion, error) {
	if _, loaded := s.inflight.LoadOrStore(suggestionID, struct{}{}); loaded {
		return nil, ErrTurnInFlight
	}
	defer s.inflight.Delete(suggestionID)

	text = strings.TrimSpace(text)
	if text == "" && len(attachments) == 0 {
		return nil, ErrEmptyTurn
	}

	sg, err := s.load(ctx, userID, suggestionID)
	if err != nil {
		return nil, err
	}
	if sg.Status != model.StatusPending || sg.Archived {
		return nil, ErrConversationClosed
	}

	round := sg.Round()
	if round >= MaxRounds {
		return nil, ErrRoundLimit
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		SuggestionID: logger.Ptr(sg.ID),
		UserID:       logger.Ptr(userID),
	})

	if text == "" {
		text = attachmentPlaceholder
	}

	userMsg := model.Message{
		Role:        model.MessageRoleUser,
		Content:     text,
		Attachments: attachments,
	}

	reply, err := s.assistantReply(ctx, sg.Conversation, userMsg, round+1)
	if err != nil {
		// Nothing is persisted on failure; the caller may retry the same turn.
		return nil, err
	}

	sg.Conversation = append(sg.Conversation, userMsg, model.Message{
		Role:    model.MessageRoleAssistant,
		Content: reply,
	})
	if err := s.suggestions.UpdateConversation(ctx, sg.ID, sg.Conversation); err != nil {
		return nil, fmt.Errorf("persisting conversation: %w", err)
	}

	slog.InfoContext(ctx, "conversation turn completed",
		"round", round+1,
		"attachments", len(attachments),
	)

	return sg, nil
}

func (s *conversationService) assistantReply(ctx context.Context, history []model.Message, userMsg model.Message, round int) (string, error) {
	coach := prompt.Coach{Round: round, MaxRounds: MaxRounds}
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: coach.System()})
	for _, m := range history {
		messages = append(messages, llm.Message{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, llm.Message{
		Role:    llm.RoleUser,
		Content: prompt.AnnotateAttachments(userMsg.Content, userMsg.Attachments),
	})

	resp, err := s.chat.Chat(ctx, llm.ChatRequest{
		Messages:  messages,
		MaxTokens: s.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("refinement turn: %w", err)
	}
	if resp.Content == "" {
		return "", ErrEmptyReply
	}
	return resp.Content, nil
}

func (s *conversationService) CanComplete(conversation []model.Message) bool {
	return model.CountRounds(conversation) >= MinRoundsToComplete
}

func (s *conversationService) Complete(ctx context.Context, userID, suggestionID int64) (*model.Suggestion, error) {
	sg, err := s.load(ctx, userID, suggestionID)
	if err != nil {
		return nil, err
	}
	if sg.Status != model.StatusPending || sg.Archived {
		return nil, ErrConversationClosed
	}
	if !s.CanComplete(sg.Conversation) {
		return nil, ErrTooFewRounds
	}

	// The suggestion entered pending at creation; completion only confirms
	// review readiness.
	if err := s.suggestions.UpdateStatus(ctx, sg.ID, model.StatusPending, []model.Status{model.StatusPending}); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrConversationClosed
		}
		return nil, fmt.Errorf("completing conversation: %w", err)
	}

	slog.InfoContext(ctx, "conversation completed",
		"suggestion_id", sg.ID,
		"rounds", sg.Round(),
	)

	return sg, nil
}

func (s *conversationService) Get(ctx context.Context, userID, suggestionID int64) (*model.Suggestion, error) {
	return s.load(ctx, userID, suggestionID)
}

func (s *conversationService) ListMine(ctx context.Context, userID int64) ([]model.Suggestion, error) {
	return s.suggestions.ListByUser(ctx, userID)
}

func (s *conversationService) load(ctx context.Context, userID, suggestionID int64) (*model.Suggestion, error) {
	sg, err := s.suggestions.GetByID(ctx, suggestionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSuggestionNotFound
		}
		return nil, fmt.Errorf("getting suggestion: %w", err)
	}
	if sg.UserID != userID {
		return nil, ErrNotOwner
	}
	return sg, nil
}

package service_test

import (
	"context"

	"idekassen.app/intake/common/llm"
	"idekassen.app/intake/internal/model"
	"idekassen.app/intake/internal/queue"
	"idekassen.app/intake/internal/store"
)

type mockSuggestionStore struct {
	getByIDFn            func(ctx context.Context, id int64) (*model.Suggestion, error)
	createFn             func(ctx context.Context, s *model.Suggestion) error
	listByUserFn         func(ctx context.Context, userID int64) ([]model.Suggestion, error)
	listActiveFn         func(ctx context.Context, filter store.SuggestionFilter) ([]model.Suggestion, error)
	updateConversationFn func(ctx context.Context, id int64, conversation []model.Message) error
	updateStatusFn       func(ctx context.Context, id int64, status model.Status, expect []model.Status) error
	applyDecisionFn      func(ctx context.Context, id int64, d store.DecisionUpdate) (*model.Suggestion, error)
	archiveFn            func(ctx context.Context, id int64) (*model.Suggestion, error)
	updateMetadataFn     func(ctx context.Context, id int64, title, description string, department model.Department) (*model.Suggestion, error)
	setPRDFn             func(ctx context.Context, id int64, prd string) error

	updateConversationCalls int
}

func (m *mockSuggestionStore) GetByID(ctx context.Context, id int64) (*model.Suggestion, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockSuggestionStore) Create(ctx context.Context, s *model.Suggestion) error {
	if m.createFn != nil {
		return m.createFn(ctx, s)
	}
	if s.ID == 0 {
		s.ID = 1
	}
	return nil
}

func (m *mockSuggestionStore) ListByUser(ctx context.Context, userID int64) ([]model.Suggestion, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userID)
	}
	return []model.Suggestion{}, nil
}

func (m *mockSuggestionStore) ListActive(ctx context.Context, filter store.SuggestionFilter) ([]model.Suggestion, error) {
	if m.listActiveFn != nil {
		return m.listActiveFn(ctx, filter)
	}
	return []model.Suggestion{}, nil
}

func (m *mockSuggestionStore) UpdateConversation(ctx context.Context, id int64, conversation []model.Message) error {
	m.updateConversationCalls++
	if m.updateConversationFn != nil {
		return m.updateConversationFn(ctx, id, conversation)
	}
	return nil
}

func (m *mockSuggestionStore) UpdateStatus(ctx context.Context, id int64, status model.Status, expect []model.Status) error {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, id, status, expect)
	}
	return nil
}

func (m *mockSuggestionStore) ApplyDecision(ctx context.Context, id int64, d store.DecisionUpdate) (*model.Suggestion, error) {
	if m.applyDecisionFn != nil {
		return m.applyDecisionFn(ctx, id, d)
	}
	return nil, store.ErrNotFound
}

func (m *mockSuggestionStore) Archive(ctx context.Context, id int64) (*model.Suggestion, error) {
	if m.archiveFn != nil {
		return m.archiveFn(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockSuggestionStore) UpdateMetadata(ctx context.Context, id int64, title, description string, department model.Department) (*model.Suggestion, error) {
	if m.updateMetadataFn != nil {
		return m.updateMetadataFn(ctx, id, title, description, department)
	}
	return nil, store.ErrNotFound
}

func (m *mockSuggestionStore) SetPRD(ctx context.Context, id int64, prd string) error {
	if m.setPRDFn != nil {
		return m.setPRDFn(ctx, id, prd)
	}
	return nil
}

type mockChatClient struct {
	chatFn    func(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error)
	chatCalls int
}

func (m *mockChatClient) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	m.chatCalls++
	if m.chatFn != nil {
		return m.chatFn(ctx, req)
	}
	return &llm.ChatResponse{Content: "ok"}, nil
}

func (m *mockChatClient) Model() string { return "mock" }

type mockProducer struct {
	enqueueFn    func(ctx context.Context, job queue.PRDJob) error
	enqueueCalls int
	lastJob      queue.PRDJob
}

func (m *mockProducer) Enqueue(ctx context.Context, job queue.PRDJob) error {
	m.enqueueCalls++
	m.lastJob = job
	if m.enqueueFn != nil {
		return m.enqueueFn(ctx, job)
	}
	return nil
}

func (m *mockProducer) Close() error { return nil }

package handler_test

import (
	"context"
	"io"

	"idekassen.app/intake/internal/model"
	"idekassen.app/intake/internal/service"
	"idekassen.app/intake/internal/store"
)

type mockAuthService struct {
	getAuthorizationURLFn func(state string) (string, error)
	handleCallbackFn      func(ctx context.Context, code string) (*model.User, *model.Session, error)
	validateSessionFn     func(ctx context.Context, sessionID int64) (*model.User, error)
	logoutFn              func(ctx context.Context, sessionID int64) error
}

func (m *mockAuthService) GetAuthorizationURL(state string) (string, error) {
	if m.getAuthorizationURLFn != nil {
		return m.getAuthorizationURLFn(state)
	}
	return "https://auth.example.com/authorize", nil
}

func (m *mockAuthService) HandleCallback(ctx context.Context, code string) (*model.User, *model.Session, error) {
	if m.handleCallbackFn != nil {
		return m.handleCallbackFn(ctx, code)
	}
	return nil, nil, service.ErrInvalidCode
}

func (m *mockAuthService) ValidateSession(ctx context.Context, sessionID int64) (*model.User, error) {
	if m.validateSessionFn != nil {
		return m.validateSessionFn(ctx, sessionID)
	}
	return nil, service.ErrSessionExpired
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID int64) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, sessionID)
	}
	return nil
}

type mockConversationService struct {
	startFn       func(ctx context.Context, user *model.User, title, description string, department model.Department) (*model.Suggestion, error)
	submitTurnFn  func(ctx context.Context, userID, suggestionID int64, text string, attachments []model.Attachment) (*model.Suggestion, error)
	canCompleteFn func(conversation []model.Message) bool
	completeFn    func(ctx context.Context, userID, suggestionID int64) (*model.Suggestion, error)
	getFn         func(ctx context.Context, userID, suggestionID int64) (*model.Suggestion, error)
	listMineFn    func(ctx context.Context, userID int64) ([]model.Suggestion, error)
}

func (m *mockConversationService) Start(ctx context.Context, user *model.User, title, description string, department model.Department) (*model.Suggestion, error) {
	if m.startFn != nil {
		return m.startFn(ctx, user, title, description, department)
	}
	return nil, service.ErrSuggestionNotFound
}

func (m *mockConversationService) SubmitTurn(ctx context.Context, userID, suggestionID int64, text string, attachments []model.Attachment) (*model.Suggestion, error) {
	if m.submitTurnFn != nil {
		return m.submitTurnFn(ctx, userID, suggestionID, text, attachments)
	}
	return nil, service.ErrSuggestionNotFound
}

func (m *mockConversationService) CanComplete(conversation []model.Message) bool {
	if m.canCompleteFn != nil {
		return m.canCompleteFn(conversation)
	}
	return model.CountRounds(conversation) >= service.MinRoundsToComplete
}

func (m *mockConversationService) Complete(ctx context.Context, userID, suggestionID int64) (*model.Suggestion, error) {
	if m.completeFn != nil {
		return m.completeFn(ctx, userID, suggestionID)
	}
	return nil, service.ErrSuggestionNotFound
}

func (m *mockConversationService) Get(ctx context.Context, userID, suggestionID int64) (*model.Suggestion, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID, suggestionID)
	}
	return nil, service.ErrSuggestionNotFound
}

func (m *mockConversationService) ListMine(ctx context.Context, userID int64) ([]model.Suggestion, error) {
	if m.listMineFn != nil {
		return m.listMineFn(ctx, userID)
	}
	return []model.Suggestion{}, nil
}

type mockReviewService struct {
	listFn      func(ctx context.Context, filter store.SuggestionFilter) (*service.ReviewList, error)
	getFn       func(ctx context.Context, suggestionID int64) (*model.Suggestion, error)
	decideFn    func(ctx context.Context, suggestionID int64, target model.Status, notes *string, reviewer *model.User) (*model.Suggestion, error)
	archiveFn   func(ctx context.Context, suggestionID int64) (*model.Suggestion, error)
	editFn      func(ctx context.Context, suggestionID int64, title, description string, department model.Department) (*model.Suggestion, error)
	retryPRDFn  func(ctx context.Context, suggestionID int64) error
	exportPRDFn func(ctx context.Context, suggestionID int64) (string, string, error)
}

func (m *mockReviewService) List(ctx context.Context, filter store.SuggestionFilter) (*service.ReviewList, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return &service.ReviewList{Pending: []model.Suggestion{}, Reviewed: []model.Suggestion{}}, nil
}

func (m *mockReviewService) Get(ctx context.Context, suggestionID int64) (*model.Suggestion, error) {
	if m.getFn != nil {
		return m.getFn(ctx, suggestionID)
	}
	return nil, service.ErrSuggestionNotFound
}

func (m *mockReviewService) Decide(ctx context.Context, suggestionID int64, target model.Status, notes *string, reviewer *model.User) (*model.Suggestion, error) {
	if m.decideFn != nil {
		return m.decideFn(ctx, suggestionID, target, notes, reviewer)
	}
	return nil, service.ErrSuggestionNotFound
}

func (m *mockReviewService) Archive(ctx context.Context, suggestionID int64) (*model.Suggestion, error) {
	if m.archiveFn != nil {
		return m.archiveFn(ctx, suggestionID)
	}
	return nil, service.ErrSuggestionNotFound
}

func (m *mockReviewService) Edit(ctx context.Context, suggestionID int64, title, description string, department model.Department) (*model.Suggestion, error) {
	if m.editFn != nil {
		return m.editFn(ctx, suggestionID, title, description, department)
	}
	return nil, service.ErrSuggestionNotFound
}

func (m *mockReviewService) RetryPRD(ctx context.Context, suggestionID int64) error {
	if m.retryPRDFn != nil {
		return m.retryPRDFn(ctx, suggestionID)
	}
	return service.ErrSuggestionNotFound
}

func (m *mockReviewService) ExportPRD(ctx context.Context, suggestionID int64) (string, string, error) {
	if m.exportPRDFn != nil {
		return m.exportPRDFn(ctx, suggestionID)
	}
	return "", "", service.ErrNoPRD
}

type mockStorageClient struct {
	uploadFn func(ctx context.Context, name, contentType string, size int64, r io.Reader) (*model.Attachment, error)
}

func (m *mockStorageClient) Upload(ctx context.Context, name, contentType string, size int64, r io.Reader) (*model.Attachment, error) {
	if m.uploadFn != nil {
		return m.uploadFn(ctx, name, contentType, size, r)
	}
	return &model.Attachment{URL: "https://files/signed", Name: name, Type: contentType}, nil
}

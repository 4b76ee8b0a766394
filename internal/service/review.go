package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"idekassen.app/intake/common/logger"
	"idekassen.app/intake/internal/model"
	"idekassen.app/intake/internal/queue"
	"idekassen.app/intake/internal/store"
)

var (
	ErrInvalidFilter      = errors.New("unknown status filter")
	ErrInvalidDecision    = errors.New("invalid decision target")
	ErrArchivePending     = errors.New("pending suggestions cannot be archived")
	ErrSuggestionArchived = errors.New("suggestion is archived")
	ErrNotApproved        = errors.New("suggestion is not approved")
	ErrNoPRD              = errors.New("suggestion has no generated document")
)

// ReviewList partitions non-archived suggestions for the admin view.
type ReviewList struct {
	Pending  []model.Suggestion `json:"pending"`
	Reviewed []model.Suggestion `json:"reviewed"`
}

type ReviewService interface {
	// List returns non-archived suggestions matching filter, newest first,
	// split into pending and reviewed partitions.
	List(ctx context.Context, filter store.SuggestionFilter) (*ReviewList, error)
	Get(ctx context.Context, suggestionID int64) (*model.Suggestion, error)
	// Decide applies an admin decision atomically. Approval enqueues one PRD
	// generation job; a failed enqueue is logged but never reverts the decision.
	Decide(ctx context.Context, suggestionID int64, target model.Status, notes *string, reviewer *model.User) (*model.Suggestion, error)
	Archive(ctx context.Context, suggestionID int64) (*model.Suggestion, error)
	Edit(ctx context.Context, suggestionID int64, title, description string, department model.Department) (*model.Suggestion, error)
	// RetryPRD re-enqueues document generation for an approved suggestion.
	RetryPRD(ctx context.Context, suggestionID int64) error
	// ExportPRD renders the generated document as a downloadable markdown file.
	ExportPRD(ctx context.Context, suggestionID int64) (filename string, content string, err error)
}

type reviewService struct {
	suggestions store.SuggestionStore
	producer    queue.Producer
}

func NewReviewService(suggestions store.SuggestionStore, producer queue.Producer) ReviewService {
	return &reviewService{
		suggestions: suggestions,
		producer:    producer,
	}
}

func (s *reviewService) List(ctx context.Context, filter store.SuggestionFilter) (*ReviewList, error) {
	if filter == "" {
		filter = store.FilterAll
	}
	if !filter.Valid() {
		return nil, ErrInvalidFilter
	}

	suggestions, err := s.suggestions.ListActive(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing suggestions: %w", err)
	}

	list := &ReviewList{
		Pending:  []model.Suggestion{},
		Reviewed: []model.Suggestion{},
	}
	for _, sg := range suggestions {
		if sg.Status == model.StatusPending {
			list.Pending = append(list.Pending, sg)
		} else {
			list.Reviewed = append(list.Reviewed, sg)
		}
	}
	return list, nil
}

func (s *reviewService) Get(ctx context.Context, suggestionID int64) (*model.Suggestion, error) {
	sg, err := s.suggestions.GetByID(ctx, suggestionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSuggestionNotFound
		}
		return nil, fmt.Errorf("getting suggestion: %w", err)
	}
	return sg, nil
}

func (s *reviewService) Decide(ctx context.Context, suggestionID int64, target model.Status, notes *string, reviewer *model.User) (*model.Suggestion, error) {
	if !target.DecisionTarget() {
		return nil, ErrInvalidDecision
	}

	sg, err := s.suggestions.ApplyDecision(ctx, suggestionID, store.DecisionUpdate{
		Status:     target,
		Notes:      notes,
		ReviewedBy: reviewer.ID,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, s.decideError(ctx, suggestionID)
		}
		return nil, fmt.Errorf("applying decision: %w", err)
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		SuggestionID: logger.Ptr(sg.ID),
		UserID:       logger.Ptr(reviewer.ID),
	})

	slog.InfoContext(ctx, "decision applied",
		"status", sg.Status,
		"reviewed_by", reviewer.ID,
	)

	if target == model.StatusApproved {
		if err := s.producer.Enqueue(ctx, queue.PRDJob{SuggestionID: sg.ID}); err != nil {
			// The approval is already durable; the document can be re-triggered.
			slog.ErrorContext(ctx, "failed to enqueue prd generation", "error", err)
		}
	}

	return sg, nil
}

// decideError distinguishes a missing suggestion from an archived one, since
// the guarded UPDATE matches neither.
func (s *reviewService) decideError(ctx context.Context, suggestionID int64) error {
	sg, err := s.suggestions.GetByID(ctx, suggestionID)
	if err != nil {
		return ErrSuggestionNotFound
	}
	if sg.Archived {
		return ErrSuggestionArchived
	}
	return ErrSuggestionNotFound
}

func (s *reviewService) Archive(ctx context.Context, suggestionID int64) (*model.Suggestion, error) {
	sg, err := s.suggestions.Archive(ctx, suggestionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, s.archiveError(ctx, suggestionID)
		}
		return nil, fmt.Errorf("archiving suggestion: %w", err)
	}

	slog.InfoContext(ctx, "suggestion archived", "suggestion_id", sg.ID)
	return sg, nil
}

// archiveError distinguishes a missing suggestion from a pending one, since
// the guarded UPDATE cannot tell them apart.
func (s *reviewService) archiveError(ctx context.Context, suggestionID int64) error {
	sg, err := s.suggestions.GetByID(ctx, suggestionID)
	if err != nil {
		return ErrSuggestionNotFound
	}
	if sg.Status == model.StatusPending {
		return ErrArchivePending
	}
	return ErrSuggestionNotFound
}

func (s *reviewService) Edit(ctx context.Context, suggestionID int64, title, description string, department model.Department) (*model.Suggestion, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" || description == "" {
		return nil, ErrEmptyTitle
	}
	if !department.Valid() {
		return nil, ErrInvalidDepartment
	}

	sg, err := s.suggestions.UpdateMetadata(ctx, suggestionID, title, description, department)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSuggestionNotFound
		}
		return nil, fmt.Errorf("updating metadata: %w", err)
	}
	return sg, nil
}

func (s *reviewService) RetryPRD(ctx context.Context, suggestionID int64) error {
	sg, err := s.Get(ctx, suggestionID)
	if err != nil {
		return err
	}
	if sg.Status != model.StatusApproved {
		return ErrNotApproved
	}

	if err := s.producer.Enqueue(ctx, queue.PRDJob{SuggestionID: sg.ID}); err != nil {
		return fmt.Errorf("enqueueing prd generation: %w", err)
	}
	return nil
}

func (s *reviewService) ExportPRD(ctx context.Context, suggestionID int64) (string, string, error) {
	sg, err := s.Get(ctx, suggestionID)
	if err != nil {
		return "", "", err
	}
	if sg.PRD == nil || *sg.PRD == "" {
		return "", "", ErrNoPRD
	}

	filename := fmt.Sprintf("prd-%d.md", sg.ID)
	content := fmt.Sprintf("# %s\n\n%s\n", sg.Title, *sg.PRD)
	return filename, content, nil
}

package store

import (
	"context"
	"errors"

	"idekassen.app/intake/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// SuggestionFilter selects which suggestions a listing returns.
type SuggestionFilter string

const (
	FilterAll            SuggestionFilter = "all"
	FilterPending        SuggestionFilter = "pending"
	FilterApproved       SuggestionFilter = "approved"
	FilterRejected       SuggestionFilter = "rejected"
	FilterMoreInfoNeeded SuggestionFilter = "more_info_needed"
)

func (f SuggestionFilter) Valid() bool {
	switch f {
	case FilterAll, FilterPending, FilterApproved, FilterRejected, FilterMoreInfoNeeded:
		return true
	}
	return false
}

// DecisionUpdate carries the fields of an admin decision, applied atomically.
type DecisionUpdate struct {
	Status     model.Status
	Notes      *string
	ReviewedBy int64
}

// SuggestionStore defines the contract for suggestion data access.
// The conversation column is always written as a whole value.
type SuggestionStore interface {
	GetByID(ctx context.Context, id int64) (*model.Suggestion, error)
	Create(ctx context.Context, s *model.Suggestion) error
	ListByUser(ctx context.Context, userID int64) ([]model.Suggestion, error)
	// ListActive lists non-archived suggestions matching filter, newest first.
	ListActive(ctx context.Context, filter SuggestionFilter) ([]model.Suggestion, error)
	// UpdateConversation replaces the stored conversation log.
	UpdateConversation(ctx context.Context, id int64, conversation []model.Message) error
	// UpdateStatus sets the status only if the suggestion currently holds one
	// of the expected statuses; returns ErrNotFound otherwise.
	UpdateStatus(ctx context.Context, id int64, status model.Status, expect []model.Status) error
	// ApplyDecision updates status, notes and reviewer together. Archived
	// suggestions are never matched; archival is terminal.
	ApplyDecision(ctx context.Context, id int64, d DecisionUpdate) (*model.Suggestion, error)
	// Archive sets the archived flag; only valid for non-pending suggestions.
	Archive(ctx context.Context, id int64) (*model.Suggestion, error)
	// UpdateMetadata corrects title, description and department.
	UpdateMetadata(ctx context.Context, id int64, title, description string, department model.Department) (*model.Suggestion, error)
	// SetPRD stores the generated document.
	SetPRD(ctx context.Context, id int64, prd string) error
}

// UserStore defines the contract for user data access
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	UpsertByWorkOSID(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id int64) error
}

// SessionStore defines the contract for session data access
type SessionStore interface {
	GetByID(ctx context.Context, id int64) (*model.Session, error)
	GetValid(ctx context.Context, id int64) (*model.Session, error) // checks expiry
	Create(ctx context.Context, session *model.Session) error
	Delete(ctx context.Context, id int64) error
	DeleteByUser(ctx context.Context, userID int64) error
	DeleteExpired(ctx context.Context) error
}

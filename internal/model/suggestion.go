package model

import "time"

// Status is the review state of a suggestion.
type Status string

const (
	// StatusPending is the initial state, both for fresh suggestions and for
	// suggestions handed back from the refinement conversation.
	StatusPending        Status = "pending"
	StatusApproved       Status = "approved"
	StatusRejected       Status = "rejected"
	StatusMoreInfoNeeded Status = "more_info_needed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusMoreInfoNeeded:
		return true
	}
	return false
}

// DecisionTarget reports whether s is a status an admin decision may move a
// suggestion to. Nothing ever transitions back to pending.
func (s Status) DecisionTarget() bool {
	switch s {
	case StatusApproved, StatusRejected, StatusMoreInfoNeeded:
		return true
	}
	return false
}

// Department is the closed set of departments a suggestion belongs to.
type Department string

const (
	DepartmentSalg      Department = "salg"
	DepartmentMarketing Department = "marketing"
	DepartmentIndkoeb   Department = "indkøb"
	DepartmentDesign    Department = "design"
	DepartmentLager     Department = "lager"
)

func (d Department) Valid() bool {
	switch d {
	case DepartmentSalg, DepartmentMarketing, DepartmentIndkoeb, DepartmentDesign, DepartmentLager:
		return true
	}
	return false
}

// Suggestion is a submitted improvement idea together with its refinement
// conversation and review outcome. The conversation is an append-only log;
// it is always read, modified, and written as a whole value.
type Suggestion struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"user_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Department   Department `json:"department"`
	Status       Status     `json:"status"`
	Conversation []Message  `json:"conversation"`
	AdminNotes   *string    `json:"admin_notes,omitempty"`
	PRD          *string    `json:"prd,omitempty"`
	Archived     bool       `json:"archived"`
	ReviewedBy   *int64     `json:"reviewed_by,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Round returns the number of submitter-authored turns in the conversation.
func (s *Suggestion) Round() int {
	return CountRounds(s.Conversation)
}

// CountRounds counts submitter-authored messages in a conversation log.
func CountRounds(conversation []Message) int {
	n := 0
	for _, m := range conversation {
		if m.Role == MessageRoleUser {
			n++
		}
	}
	return n
}

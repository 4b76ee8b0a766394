package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"idekassen.app/intake/common/id"
	"idekassen.app/intake/core/db"
	"idekassen.app/intake/internal/model"
)

const suggestionColumns = `id, user_id, title, description, department, status,
	conversation, admin_notes, prd, archived, reviewed_by, created_at, updated_at`

type suggestionStore struct {
	q db.Querier
}

func newSuggestionStore(q db.Querier) SuggestionStore {
	return &suggestionStore{q: q}
}

func (s *suggestionStore) GetByID(ctx context.Context, suggestionID int64) (*model.Suggestion, error) {
	row := s.q.QueryRow(ctx,
		`SELECT `+suggestionColumns+` FROM suggestions WHERE id = $1`, suggestionID)
	return scanSuggestion(row)
}

func (s *suggestionStore) Create(ctx context.Context, sg *model.Suggestion) error {
	if sg.ID == 0 {
		sg.ID = id.New()
	}
	if sg.Status == "" {
		sg.Status = model.StatusPending
	}
	if sg.Conversation == nil {
		sg.Conversation = []model.Message{}
	}

	conv, err := json.Marshal(sg.Conversation)
	if err != nil {
		return fmt.Errorf("encoding conversation: %w", err)
	}

	row := s.q.QueryRow(ctx, `
		INSERT INTO suggestions (id, user_id, title, description, department, status, conversation)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		sg.ID, sg.UserID, sg.Title, sg.Description, string(sg.Department), string(sg.Status), conv)
	return row.Scan(&sg.CreatedAt, &sg.UpdatedAt)
}

func (s *suggestionStore) ListByUser(ctx context.Context, userID int64) ([]model.Suggestion, error) {
	rows, err := s.q.Query(ctx,
		`SELECT `+suggestionColumns+` FROM suggestions
		 WHERE user_id = $1 AND NOT archived
		 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSuggestions(rows)
}

func (s *suggestionStore) ListActive(ctx context.Context, filter SuggestionFilter) ([]model.Suggestion, error) {
	query := `SELECT ` + suggestionColumns + ` FROM suggestions WHERE NOT archived`
	args := []any{}
	if filter != FilterAll {
		query += ` AND status = $1`
		args = append(args, string(filter))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSuggestions(rows)
}

func (s *suggestionStore) UpdateConversation(ctx context.Context, suggestionID int64, conversation []model.Message) error {
	if conversation == nil {
		conversation = []model.Message{}
	}
	conv, err := json.Marshal(conversation)
	if err != nil {
		return fmt.Errorf("encoding conversation: %w", err)
	}

	tag, err := s.q.Exec(ctx,
		`UPDATE suggestions SET conversation = $2, updated_at = now() WHERE id = $1`,
		suggestionID, conv)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *suggestionStore) UpdateStatus(ctx context.Context, suggestionID int64, status model.Status, expect []model.Status) error {
	expected := make([]string, len(expect))
	for i, st := range expect {
		expected[i] = string(st)
	}

	tag, err := s.q.Exec(ctx,
		`UPDATE suggestions SET status = $2, updated_at = now()
		 WHERE id = $1 AND status = ANY($3)`,
		suggestionID, string(status), expected)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *suggestionStore) ApplyDecision(ctx context.Context, suggestionID int64, d DecisionUpdate) (*model.Suggestion, error) {
	row := s.q.QueryRow(ctx,
		`UPDATE suggestions
		 SET status = $2, admin_notes = $3, reviewed_by = $4, updated_at = now()
		 WHERE id = $1 AND NOT archived
		 RETURNING `+suggestionColumns,
		suggestionID, string(d.Status), d.Notes, d.ReviewedBy)
	return scanSuggestion(row)
}

func (s *suggestionStore) Archive(ctx context.Context, suggestionID int64) (*model.Suggestion, error) {
	row := s.q.QueryRow(ctx,
		`UPDATE suggestions SET archived = true, updated_at = now()
		 WHERE id = $1 AND status <> 'pending'
		 RETURNING `+suggestionColumns,
		suggestionID)
	return scanSuggestion(row)
}

func (s *suggestionStore) UpdateMetadata(ctx context.Context, suggestionID int64, title, description string, department model.Department) (*model.Suggestion, error) {
	row := s.q.QueryRow(ctx,
		`UPDATE suggestions
		 SET title = $2, description = $3, department = $4, updated_at = now()
		 WHERE id = $1
		 RETURNING `+suggestionColumns,
		suggestionID, title, description, string(department))
	return scanSuggestion(row)
}

func (s *suggestionStore) SetPRD(ctx context.Context, suggestionID int64, prd string) error {
	tag, err := s.q.Exec(ctx,
		`UPDATE suggestions SET prd = $2, updated_at = now() WHERE id = $1`,
		suggestionID, prd)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanSuggestion(row pgx.Row) (*model.Suggestion, error) {
	var (
		sg         model.Suggestion
		department string
		status     string
		conv       []byte
		createdAt  time.Time
		updatedAt  time.Time
	)

	err := row.Scan(&sg.ID, &sg.UserID, &sg.Title, &sg.Description, &department,
		&status, &conv, &sg.AdminNotes, &sg.PRD, &sg.Archived, &sg.ReviewedBy,
		&createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	sg.Department = model.Department(department)
	sg.Status = model.Status(status)
	sg.CreatedAt = createdAt
	sg.UpdatedAt = updatedAt

	if err := json.Unmarshal(conv, &sg.Conversation); err != nil {
		return nil, fmt.Errorf("decoding conversation: %w", err)
	}
	if sg.Conversation == nil {
		sg.Conversation = []model.Message{}
	}

	return &sg, nil
}

func scanSuggestions(rows pgx.Rows) ([]model.Suggestion, error) {
	result := []model.Suggestion{}
	for rows.Next() {
		sg, err := scanSuggestion(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *sg)
	}
	return result, rows.Err()
}

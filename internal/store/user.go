package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"idekassen.app/intake/core/db"
	"idekassen.app/intake/internal/model"
)

const userColumns = `id, name, email, role, workos_id, avatar_url, created_at, updated_at`

type userStore struct {
	q db.Querier
}

func newUserStore(q db.Querier) UserStore {
	return &userStore{q: q}
}

func (s *userStore) GetByID(ctx context.Context, userID int64) (*model.User, error) {
	row := s.q.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	return scanUser(row)
}

func (s *userStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	row := s.q.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (s *userStore) Create(ctx context.Context, user *model.User) error {
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	row := s.q.QueryRow(ctx, `
		INSERT INTO users (id, name, email, role, workos_id, avatar_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		user.ID, user.Name, user.Email, user.Role, user.WorkOSID, user.AvatarURL)
	return row.Scan(&user.CreatedAt, &user.UpdatedAt)
}

// UpsertByWorkOSID inserts the user or refreshes name/email/avatar on conflict.
// The role is never touched on conflict; admin grants are managed directly.
func (s *userStore) UpsertByWorkOSID(ctx context.Context, user *model.User) error {
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	row := s.q.QueryRow(ctx, `
		INSERT INTO users (id, name, email, role, workos_id, avatar_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (workos_id) DO UPDATE
		SET name = EXCLUDED.name, email = EXCLUDED.email,
		    avatar_url = EXCLUDED.avatar_url, updated_at = now()
		RETURNING `+userColumns,
		user.ID, user.Name, user.Email, user.Role, user.WorkOSID, user.AvatarURL)

	updated, err := scanUser(row)
	if err != nil {
		return err
	}
	*user = *updated
	return nil
}

func (s *userStore) Update(ctx context.Context, user *model.User) error {
	row := s.q.QueryRow(ctx, `
		UPDATE users SET name = $2, email = $3, role = $4, avatar_url = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		user.ID, user.Name, user.Email, user.Role, user.AvatarURL)

	updated, err := scanUser(row)
	if err != nil {
		return err
	}
	*user = *updated
	return nil
}

func (s *userStore) Delete(ctx context.Context, userID int64) error {
	_, err := s.q.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	return err
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.WorkOSID, &u.AvatarURL,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

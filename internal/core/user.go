package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/edvin/keyhub/internal/model"
	"github.com/edvin/keyhub/internal/platform"
)

type UserService struct {
	db DB
}

func NewUserService(db DB) *UserService {
	return &UserService{db: db}
}

const userColumns = `id, email, name, avatar_url, provider, subject, created_at, updated_at, last_login`

func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	if s.db == nil {
		return nil, ErrStoreUnavailable
	}

	var u model.User
	err := s.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Email, &u.Name, &u.AvatarURL, &u.Provider, &u.Subject, &u.CreatedAt, &u.UpdatedAt, &u.LastLogin)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return &u, nil
}

// EnsureUser provisions a user record for an OAuth identity on first login
// and bumps last_login on every subsequent one. Idempotent: concurrent
// logins for the same identity converge on a single row.
func (s *UserService) EnsureUser(ctx context.Context, provider, subject, email string, name, avatarURL *string) (*model.User, error) {
	if s.db == nil {
		return nil, ErrStoreUnavailable
	}

	now := time.Now()
	var u model.User
	err := s.db.QueryRow(ctx,
		`INSERT INTO users (id, email, name, avatar_url, provider, subject, created_at, updated_at, last_login)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $7, $7)
		 ON CONFLICT (provider, subject) DO UPDATE
		   SET email = EXCLUDED.email, name = EXCLUDED.name, avatar_url = EXCLUDED.avatar_url,
		       updated_at = EXCLUDED.updated_at, last_login = EXCLUDED.last_login
		 RETURNING `+userColumns,
		platform.NewID(), email, name, avatarURL, provider, subject, now,
	).Scan(&u.ID, &u.Email, &u.Name, &u.AvatarURL, &u.Provider, &u.Subject, &u.CreatedAt, &u.UpdatedAt, &u.LastLogin)
	if err != nil {
		return nil, fmt.Errorf("ensure user: %w", err)
	}
	return &u, nil
}

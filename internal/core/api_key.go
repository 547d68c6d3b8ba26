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

// APIKeyService issues, validates, and manages API keys. The store is the
// sole arbiter of key uniqueness; no application-level check precedes
// insertion.
type APIKeyService struct {
	db DB
}

// NewAPIKeyService creates a new APIKeyService. db may be nil when the
// backing store is not configured.
func NewAPIKeyService(db DB) *APIKeyService {
	return &APIKeyService{db: db}
}

const apiKeyColumns = `id, name, type, key, usage, monthly_limit, created_at, updated_at`

// Create generates a new key string and inserts a record. The returned record
// carries the plaintext key; it is retrievable from storage afterwards, no
// reveal-once semantics are enforced.
func (s *APIKeyService) Create(ctx context.Context, name, keyType string, monthlyLimit *int) (*model.APIKey, error) {
	if s.db == nil {
		return nil, ErrStoreUnavailable
	}

	now := time.Now()
	key := &model.APIKey{
		ID:           platform.NewID(),
		Name:         name,
		Type:         keyType,
		Key:          fmt.Sprintf("tvly-%s-%s", keyType, platform.NewKeyToken()),
		Usage:        0,
		MonthlyLimit: monthlyLimit,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO api_keys (id, name, type, key, usage, monthly_limit, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		key.ID, key.Name, key.Type, key.Key, key.Usage, key.MonthlyLimit, key.CreatedAt, key.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert api key: %w", err)
	}

	return key, nil
}

// List retrieves all API keys ordered by creation time, newest first.
func (s *APIKeyService) List(ctx context.Context) ([]model.APIKey, error) {
	if s.db == nil {
		return nil, ErrStoreUnavailable
	}

	rows, err := s.db.Query(ctx,
		`SELECT `+apiKeyColumns+` FROM api_keys ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	var keys []model.APIKey
	for rows.Next() {
		var k model.APIKey
		if err := rows.Scan(&k.ID, &k.Name, &k.Type, &k.Key, &k.Usage, &k.MonthlyLimit, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate api keys: %w", err)
	}
	return keys, nil
}

// GetByID retrieves an API key by its ID.
func (s *APIKeyService) GetByID(ctx context.Context, id string) (*model.APIKey, error) {
	if s.db == nil {
		return nil, ErrStoreUnavailable
	}

	var k model.APIKey
	err := s.db.QueryRow(ctx,
		`SELECT `+apiKeyColumns+` FROM api_keys WHERE id = $1`, id,
	).Scan(&k.ID, &k.Name, &k.Type, &k.Key, &k.Usage, &k.MonthlyLimit, &k.CreatedAt, &k.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get api key %s: %w", id, err)
	}
	return &k, nil
}

// Validate looks up a presented key by exact string match and returns its
// metadata. A key with no matching record yields ErrInvalidKey. Usage and
// monthly_limit are not consulted.
func (s *APIKeyService) Validate(ctx context.Context, key string) (*model.KeyInfo, error) {
	if s.db == nil {
		return nil, ErrStoreUnavailable
	}

	var info model.KeyInfo
	err := s.db.QueryRow(ctx,
		`SELECT id, name, type FROM api_keys WHERE key = $1`, key,
	).Scan(&info.ID, &info.Name, &info.Type)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInvalidKey
	}
	if err != nil {
		return nil, fmt.Errorf("validate api key: %w", err)
	}
	return &info, nil
}

// Update rewrites the mutable fields of a key record. The key string and ID
// never change.
func (s *APIKeyService) Update(ctx context.Context, id, name, keyType string, monthlyLimit *int) (*model.APIKey, error) {
	if s.db == nil {
		return nil, ErrStoreUnavailable
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE api_keys SET name = $1, type = $2, monthly_limit = $3, updated_at = now() WHERE id = $4`,
		name, keyType, monthlyLimit, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update api key %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return s.GetByID(ctx, id)
}

// Delete removes a key record permanently. Deleting an ID that matches no
// record yields ErrNotFound.
func (s *APIKeyService) Delete(ctx context.Context, id string) error {
	if s.db == nil {
		return ErrStoreUnavailable
	}

	tag, err := s.db.Exec(ctx, `DELETE FROM api_keys WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete api key %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

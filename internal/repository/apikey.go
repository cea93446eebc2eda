package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"pageguard/internal/domain"
)

// APIKeyRepo persists API keys in SQLite. Its LookupUsernameByHash method
// backs the authentication middleware's X-API-Key path.
type APIKeyRepo struct {
	db *sql.DB
}

// NewAPIKeyRepo creates a new APIKeyRepo.
func NewAPIKeyRepo(db *sql.DB) *APIKeyRepo {
	return &APIKeyRepo{db: db}
}

// Create stores a new API key. A missing ID is filled with a fresh UUID.
func (r *APIKeyRepo) Create(ctx context.Context, key *domain.APIKey) error {
	if key.ID == "" {
		key.ID = uuid.NewString()
	}
	if key.CreatedAt.IsZero() {
		key.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO api_keys (id, username, name, key_prefix, key_hash, expires_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		key.ID, key.Username, key.Name, key.KeyPrefix, key.KeyHash, key.ExpiresAt, key.CreatedAt,
	)
	return mapDBError(err, key.Username)
}

// LookupUsernameByHash resolves a key hash to its owner, skipping expired keys.
func (r *APIKeyRepo) LookupUsernameByHash(ctx context.Context, keyHash string) (string, error) {
	var username string
	err := r.db.QueryRowContext(ctx,
		`SELECT username FROM api_keys
		 WHERE key_hash = ? AND (expires_at IS NULL OR expires_at > ?)`,
		keyHash, time.Now().UTC(),
	).Scan(&username)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrNotFound("api key not found")
	}
	if err != nil {
		return "", err
	}
	return username, nil
}

// ListByUsername returns a user's API keys, newest first.
func (r *APIKeyRepo) ListByUsername(ctx context.Context, username string) ([]domain.APIKey, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, username, name, key_prefix, key_hash, expires_at, created_at
		 FROM api_keys WHERE username = ? ORDER BY created_at DESC, id`,
		username,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []domain.APIKey
	for rows.Next() {
		var k domain.APIKey
		if err := rows.Scan(&k.ID, &k.Username, &k.Name, &k.KeyPrefix, &k.KeyHash, &k.ExpiresAt, &k.CreatedAt); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Delete removes a key by ID, scoped to its owner.
func (r *APIKeyRepo) Delete(ctx context.Context, username, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM api_keys WHERE username = ? AND id = ?`, username, id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound("api key %q does not exist", id)
	}
	return nil
}

// DeleteExpired removes all expired keys and returns how many were removed.
func (r *APIKeyRepo) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM api_keys WHERE expires_at IS NOT NULL AND expires_at <= ?`,
		time.Now().UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

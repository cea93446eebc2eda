package domain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// APIKey is a long-lived credential tied to a user. Only the SHA-256 hash of
// the raw key is stored; the raw value is shown once at creation.
type APIKey struct {
	ID        string
	Username  string
	Name      string
	KeyPrefix string // first characters of the raw key, for display
	KeyHash   string
	ExpiresAt *time.Time // nil means the key does not expire
	CreatedAt time.Time
}

// Expired reports whether the key is past its expiry at the given instant.
func (k *APIKey) Expired(now time.Time) bool {
	return k.ExpiresAt != nil && now.After(*k.ExpiresAt)
}

// HashAPIKey returns the hex SHA-256 digest under which a raw key is stored
// and looked up.
func HashAPIKey(rawKey string) string {
	sum := sha256.Sum256([]byte(rawKey))
	return hex.EncodeToString(sum[:])
}

// APIKeyRepository persists API keys.
type APIKeyRepository interface {
	Create(ctx context.Context, key *APIKey) error
	// LookupUsernameByHash resolves a key hash to its owner, skipping expired
	// keys. A miss is a NotFoundError.
	LookupUsernameByHash(ctx context.Context, keyHash string) (string, error)
	ListByUsername(ctx context.Context, username string) ([]APIKey, error)
	Delete(ctx context.Context, username, id string) error
	// DeleteExpired removes all expired keys and returns the number removed.
	DeleteExpired(ctx context.Context) (int64, error)
}

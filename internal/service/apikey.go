package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"pageguard/internal/domain"
)

// APIKeyService manages long-lived API key credentials.
type APIKeyService struct {
	repo  domain.APIKeyRepository
	audit domain.AuditRepository
}

// NewAPIKeyService creates a new APIKeyService.
func NewAPIKeyService(repo domain.APIKeyRepository, audit domain.AuditRepository) *APIKeyService {
	return &APIKeyService{repo: repo, audit: audit}
}

// Create generates a key for the given user and returns the raw value (shown
// once) alongside the stored metadata.
func (s *APIKeyService) Create(ctx context.Context, actor, username, name string, expiresAt *time.Time) (string, *domain.APIKey, error) {
	if name == "" {
		return "", nil, domain.ErrValidation("api key name is required")
	}
	if expiresAt != nil && !expiresAt.After(time.Now()) {
		return "", nil, domain.ErrValidation("expiry must be in the future")
	}

	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", nil, fmt.Errorf("generate key: %w", err)
	}
	rawKey := hex.EncodeToString(rawBytes)

	key := &domain.APIKey{
		Username:  username,
		Name:      name,
		KeyPrefix: rawKey[:8],
		KeyHash:   domain.HashAPIKey(rawKey),
		ExpiresAt: expiresAt,
	}
	if err := s.repo.Create(ctx, key); err != nil {
		return "", nil, err
	}

	s.logAudit(ctx, actor, domain.ActionCreateAPIKey, username)
	return rawKey, key, nil
}

// List returns a user's API keys without raw key values.
func (s *APIKeyService) List(ctx context.Context, username string) ([]domain.APIKey, error) {
	return s.repo.ListByUsername(ctx, username)
}

// Delete removes one of a user's API keys by ID.
func (s *APIKeyService) Delete(ctx context.Context, actor, username, id string) error {
	if err := s.repo.Delete(ctx, username, id); err != nil {
		return err
	}
	s.logAudit(ctx, actor, domain.ActionDeleteAPIKey, username)
	return nil
}

// CleanupExpired removes all expired keys and logs the result. Intended to run
// from a scheduler.
func (s *APIKeyService) CleanupExpired(ctx context.Context) {
	removed, err := s.repo.DeleteExpired(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "api key cleanup failed", "error", err)
		return
	}
	if removed > 0 {
		slog.InfoContext(ctx, "expired api keys removed", "removed", removed)
	}
}

func (s *APIKeyService) logAudit(ctx context.Context, actor, action, target string) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Insert(ctx, &domain.AuditEntry{
		Principal: actor,
		Action:    action,
		Path:      target,
		Status:    domain.AuditAllowed,
	})
}

package service

import (
	"context"
	"log/slog"
	"time"

	"pageguard/internal/domain"
)

// AuditService exposes audit-log queries and retention.
type AuditService struct {
	repo domain.AuditRepository
}

// NewAuditService creates a new AuditService.
func NewAuditService(repo domain.AuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

// List returns a filtered page of audit entries.
func (s *AuditService) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, int64, error) {
	return s.repo.List(ctx, filter)
}

// Prune deletes audit entries older than the retention window and logs the
// result. Intended to run from a scheduler.
func (s *AuditService) Prune(ctx context.Context, retention time.Duration) {
	cutoff := time.Now().UTC().Add(-retention)
	removed, err := s.repo.PruneBefore(ctx, cutoff)
	if err != nil {
		slog.ErrorContext(ctx, "audit prune failed", "error", err)
		return
	}
	if removed > 0 {
		slog.InfoContext(ctx, "audit entries pruned", "removed", removed, "cutoff", cutoff)
	}
}

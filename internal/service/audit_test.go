package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pageguard/internal/domain"
	"pageguard/internal/testutil"
)

func TestAuditService_Prune(t *testing.T) {
	repo := &testutil.MockAuditRepo{}
	svc := NewAuditService(repo)
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, &domain.AuditEntry{
		Principal: "staff1",
		Action:    domain.ActionStaffAccess,
		Status:    domain.AuditAllowed,
		CreatedAt: time.Now().UTC().Add(-72 * time.Hour),
	}))
	require.NoError(t, repo.Insert(ctx, &domain.AuditEntry{
		Principal: "staff1",
		Action:    domain.ActionStaffAccess,
		Status:    domain.AuditAllowed,
		CreatedAt: time.Now().UTC(),
	}))

	svc.Prune(ctx, 24*time.Hour)

	entries, total, err := svc.List(ctx, domain.AuditFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, entries, 1)
}

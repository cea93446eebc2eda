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

func TestAPIKeyService_CreateReturnsRawKeyOnce(t *testing.T) {
	repo := &testutil.MockAPIKeyRepo{}
	audit := &testutil.MockAuditRepo{}
	svc := NewAPIKeyService(repo, audit)

	raw, key, err := svc.Create(context.Background(), "alice", "alice", "laptop", nil)
	require.NoError(t, err)
	assert.Len(t, raw, 64)
	assert.Equal(t, raw[:8], key.KeyPrefix)
	assert.Equal(t, domain.HashAPIKey(raw), key.KeyHash)
	assert.NotEqual(t, raw, key.KeyHash)

	assert.True(t, audit.HasAction(domain.ActionCreateAPIKey))
}

func TestAPIKeyService_CreateValidation(t *testing.T) {
	svc := NewAPIKeyService(&testutil.MockAPIKeyRepo{}, nil)

	_, _, err := svc.Create(context.Background(), "alice", "alice", "", nil)
	var validation *domain.ValidationError
	assert.ErrorAs(t, err, &validation)

	past := time.Now().Add(-time.Minute)
	_, _, err = svc.Create(context.Background(), "alice", "alice", "laptop", &past)
	assert.ErrorAs(t, err, &validation)
}

func TestAPIKeyService_DeleteAudits(t *testing.T) {
	repo := &testutil.MockAPIKeyRepo{}
	audit := &testutil.MockAuditRepo{}
	svc := NewAPIKeyService(repo, audit)
	ctx := context.Background()

	_, key, err := svc.Create(ctx, "alice", "alice", "laptop", nil)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "alice", "alice", key.ID))
	assert.True(t, audit.HasAction(domain.ActionDeleteAPIKey))

	var notFound *domain.NotFoundError
	assert.ErrorAs(t, svc.Delete(ctx, "alice", "alice", key.ID), &notFound)
}

func TestAPIKeyService_CleanupExpired(t *testing.T) {
	repo := &testutil.MockAPIKeyRepo{}
	svc := NewAPIKeyService(repo, nil)
	ctx := context.Background()

	soon := time.Now().Add(50 * time.Millisecond)
	_, _, err := svc.Create(ctx, "alice", "alice", "short-lived", &soon)
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)
	svc.CleanupExpired(ctx)
	assert.Empty(t, repo.Keys)
}

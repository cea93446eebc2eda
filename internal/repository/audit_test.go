package repository

import (
	"context"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internaldb "pageguard/internal/db"
	"pageguard/internal/domain"
)

func setupAuditRepo(t *testing.T) *AuditLogRepo {
	t.Helper()
	writeDB, _ := internaldb.OpenTestSQLite(t)
	return NewAuditLogRepo(writeDB)
}

func TestAuditLogRepo_InsertAndList(t *testing.T) {
	repo := setupAuditRepo(t)
	ctx := context.Background()

	entry := &domain.AuditEntry{
		Principal: "staff1",
		Action:    domain.ActionStaffAccess,
		Path:      "/users/other",
		Status:    domain.AuditAllowed,
	}
	require.NoError(t, repo.Insert(ctx, entry))
	assert.NotEmpty(t, entry.ID)

	entries, total, err := repo.List(ctx, domain.AuditFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, entries, 1)
	assert.Equal(t, "staff1", entries[0].Principal)
	assert.Equal(t, domain.ActionStaffAccess, entries[0].Action)
	assert.Equal(t, "/users/other", entries[0].Path)
	assert.Equal(t, domain.AuditAllowed, entries[0].Status)
}

func TestAuditLogRepo_StaffAccessRecordsEntry(t *testing.T) {
	repo := setupAuditRepo(t)
	ctx := context.Background()

	repo.StaffAccess(ctx, "staff1", "/users/alice")

	entries, total, err := repo.List(ctx, domain.AuditFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ActionStaffAccess, entries[0].Action)
	assert.Equal(t, "/users/alice", entries[0].Path)
}

func TestAuditLogRepo_ListFilters(t *testing.T) {
	repo := setupAuditRepo(t)
	ctx := context.Background()

	seed := []domain.AuditEntry{
		{Principal: "staff1", Action: domain.ActionStaffAccess, Status: domain.AuditAllowed},
		{Principal: "staff1", Action: domain.ActionCreateUser, Status: domain.AuditAllowed},
		{Principal: "root", Action: domain.ActionDeleteUser, Status: domain.AuditAllowed},
	}
	for i := range seed {
		require.NoError(t, repo.Insert(ctx, &seed[i]))
	}

	principal := "staff1"
	entries, total, err := repo.List(ctx, domain.AuditFilter{Principal: &principal})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, entries, 2)

	action := domain.ActionDeleteUser
	entries, total, err = repo.List(ctx, domain.AuditFilter{Action: &action})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, entries, 1)
	assert.Equal(t, "root", entries[0].Principal)
}

func TestAuditLogRepo_PruneBefore(t *testing.T) {
	repo := setupAuditRepo(t)
	ctx := context.Background()

	old := &domain.AuditEntry{
		Principal: "staff1",
		Action:    domain.ActionStaffAccess,
		Status:    domain.AuditAllowed,
		CreatedAt: time.Now().UTC().Add(-48 * time.Hour),
	}
	recent := &domain.AuditEntry{
		Principal: "staff1",
		Action:    domain.ActionStaffAccess,
		Status:    domain.AuditAllowed,
	}
	require.NoError(t, repo.Insert(ctx, old))
	require.NoError(t, repo.Insert(ctx, recent))

	removed, err := repo.PruneBefore(ctx, time.Now().UTC().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	entries, total, err := repo.List(ctx, domain.AuditFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, entries, 1)
	assert.Equal(t, recent.ID, entries[0].ID)
}

package domain

import (
	"context"
	"time"
)

// Audit entry statuses.
const (
	AuditAllowed = "ALLOWED"
	AuditDenied  = "DENIED"
)

// Audit entry actions.
const (
	ActionStaffAccess    = "STAFF_ACCESS"
	ActionCreateUser     = "CREATE_USER"
	ActionDeleteUser     = "DELETE_USER"
	ActionSetStaff       = "SET_STAFF"
	ActionUnsetStaff     = "UNSET_STAFF"
	ActionSetSuperuser   = "SET_SUPERUSER"
	ActionUnsetSuperuser = "UNSET_SUPERUSER"
	ActionCreateAPIKey   = "CREATE_API_KEY"
	ActionDeleteAPIKey   = "DELETE_API_KEY"
)

// AuditEntry is a single audit log record.
type AuditEntry struct {
	ID        string
	Principal string
	Action    string
	Path      string
	Status    string
	CreatedAt time.Time
}

// AuditFilter narrows audit listings. Nil fields match everything.
type AuditFilter struct {
	Principal *string
	Action    *string
	Page      PageRequest
}

// AuditRepository persists and queries audit log entries.
type AuditRepository interface {
	Insert(ctx context.Context, e *AuditEntry) error
	List(ctx context.Context, filter AuditFilter) ([]AuditEntry, int64, error)
	// PruneBefore deletes entries created before the cutoff and returns the
	// number removed.
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

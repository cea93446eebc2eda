package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"pageguard/internal/domain"
)

// AuditLogRepo persists audit log entries in SQLite. Its StaffAccess method
// satisfies the authz.AuditRecorder interface, so owner-or-staff policies can
// write durable audit entries instead of log lines.
type AuditLogRepo struct {
	db *sql.DB
}

// NewAuditLogRepo creates a new AuditLogRepo.
func NewAuditLogRepo(db *sql.DB) *AuditLogRepo {
	return &AuditLogRepo{db: db}
}

// Insert stores an audit entry. A missing ID is filled with a fresh UUID.
func (r *AuditLogRepo) Insert(ctx context.Context, e *domain.AuditEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_log (id, principal, action, path, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Principal, e.Action, e.Path, e.Status, e.CreatedAt,
	)
	return err
}

// StaffAccess implements authz.AuditRecorder. Recording is best-effort: an
// insert failure must not turn an allowed request into an error.
func (r *AuditLogRepo) StaffAccess(ctx context.Context, principal, path string) {
	_ = r.Insert(ctx, &domain.AuditEntry{
		Principal: principal,
		Action:    domain.ActionStaffAccess,
		Path:      path,
		Status:    domain.AuditAllowed,
	})
}

// List returns a filtered page of audit entries, newest first, plus the total
// count of matching rows.
func (r *AuditLogRepo) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, int64, error) {
	where := ` WHERE (? IS NULL OR principal = ?) AND (? IS NULL OR action = ?)`

	var principal, action interface{}
	if filter.Principal != nil {
		principal = *filter.Principal
	}
	if filter.Action != nil {
		action = *filter.Action
	}

	var total int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM audit_log`+where,
		principal, principal, action, action,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, principal, action, path, status, created_at FROM audit_log`+where+
			` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		principal, principal, action, action,
		filter.Page.Limit(), filter.Page.Offset(),
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		if err := rows.Scan(&e.ID, &e.Principal, &e.Action, &e.Path, &e.Status, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}

// PruneBefore deletes entries created before the cutoff and returns how many
// were removed.
func (r *AuditLogRepo) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM audit_log WHERE created_at < ?`, cutoff,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

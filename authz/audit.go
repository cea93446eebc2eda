package authz

import (
	"context"
	"log/slog"
)

// AuditRecorder receives the audit side effect of OwnerOrStaff: a staff
// principal was allowed onto a page they do not own. Implementations may log,
// persist, or forward the event; the policy calls StaffAccess exactly once per
// such allowed request.
type AuditRecorder interface {
	StaffAccess(ctx context.Context, principal, path string)
}

// LogRecorder is the default AuditRecorder. It writes a structured log line
// for each staff access.
type LogRecorder struct {
	// Logger for audit lines. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// StaffAccess implements AuditRecorder.
func (r LogRecorder) StaffAccess(ctx context.Context, principal, path string) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "staff access to another user's page",
		"principal", principal,
		"path", path,
	)
}

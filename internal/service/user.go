// Package service provides the application services of the user directory
// server: user management and audit-log access.
package service

import (
	"context"
	"regexp"
	"strings"

	"pageguard/internal/domain"
)

// usernamePattern matches the identifiers accepted in page URLs.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]{1,150}$`)

// UserService provides user management operations. Mutations are written to
// the audit log under the name of the acting principal.
type UserService struct {
	repo  domain.UserRepository
	audit domain.AuditRepository
}

// NewUserService creates a new UserService.
func NewUserService(repo domain.UserRepository, audit domain.AuditRepository) *UserService {
	return &UserService{repo: repo, audit: audit}
}

// Create validates and persists a new user.
func (s *UserService) Create(ctx context.Context, actor string, u *domain.User) (*domain.User, error) {
	if u.Username == "" {
		return nil, domain.ErrValidation("username is required")
	}
	if !usernamePattern.MatchString(u.Username) {
		return nil, domain.ErrValidation("username %q contains invalid characters", u.Username)
	}
	if u.Email != "" && !strings.Contains(u.Email, "@") {
		return nil, domain.ErrValidation("email %q is not a valid address", u.Email)
	}
	// A superuser is always staff, matching the usual admin-site convention.
	if u.Superuser {
		u.Staff = true
	}

	result, err := s.repo.Create(ctx, u)
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, actor, domain.ActionCreateUser, result.Username)
	return result, nil
}

// GetByUsername returns a user by username.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.repo.GetByUsername(ctx, username)
}

// List returns a paginated list of users.
func (s *UserService) List(ctx context.Context, page domain.PageRequest) ([]domain.User, int64, error) {
	return s.repo.List(ctx, page)
}

// Delete removes a user by username.
func (s *UserService) Delete(ctx context.Context, actor, username string) error {
	if err := s.repo.Delete(ctx, username); err != nil {
		return err
	}
	s.logAudit(ctx, actor, domain.ActionDeleteUser, username)
	return nil
}

// SetStaff updates the staff flag of a user.
func (s *UserService) SetStaff(ctx context.Context, actor, username string, staff bool) error {
	if err := s.repo.SetStaff(ctx, username, staff); err != nil {
		return err
	}
	action := domain.ActionSetStaff
	if !staff {
		action = domain.ActionUnsetStaff
	}
	s.logAudit(ctx, actor, action, username)
	return nil
}

// SetSuperuser updates the superuser flag of a user. Granting superuser also
// grants staff.
func (s *UserService) SetSuperuser(ctx context.Context, actor, username string, superuser bool) error {
	if err := s.repo.SetSuperuser(ctx, username, superuser); err != nil {
		return err
	}
	if superuser {
		if err := s.repo.SetStaff(ctx, username, true); err != nil {
			return err
		}
	}
	action := domain.ActionSetSuperuser
	if !superuser {
		action = domain.ActionUnsetSuperuser
	}
	s.logAudit(ctx, actor, action, username)
	return nil
}

func (s *UserService) logAudit(ctx context.Context, actor, action, target string) {
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

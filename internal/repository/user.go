// Package repository provides SQLite-backed implementations of the domain
// repository interfaces.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"pageguard/internal/domain"
)

// UserRepo persists user records in SQLite. Its Exists method satisfies the
// authz.Directory interface, so the repo can back owner policies directly.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create inserts a new user and returns it with ID and CreatedAt populated.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, email, is_staff, is_superuser) VALUES (?, ?, ?, ?)`,
		u.Username, u.Email, boolToInt(u.Staff), boolToInt(u.Superuser),
	)
	if err != nil {
		return nil, mapDBError(err, u.Username)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.getByID(ctx, id)
}

// GetByUsername returns the user with the given username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, username, email, is_staff, is_superuser, created_at FROM users WHERE username = ?`,
		username,
	)
	return scanUser(row, username)
}

// Exists reports whether a user with the given username is registered.
// Implements authz.Directory.
func (r *UserRepo) Exists(ctx context.Context, username string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM users WHERE username = ?`, username,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// List returns a page of users ordered by username, plus the total count.
func (r *UserRepo) List(ctx context.Context, page domain.PageRequest) ([]domain.User, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, username, email, is_staff, is_superuser, created_at
		 FROM users ORDER BY username LIMIT ? OFFSET ?`,
		page.Limit(), page.Offset(),
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		var staff, superuser int
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &staff, &superuser, &u.CreatedAt); err != nil {
			return nil, 0, err
		}
		u.Staff = staff != 0
		u.Superuser = superuser != 0
		users = append(users, u)
	}
	return users, total, rows.Err()
}

// Delete removes a user by username.
func (r *UserRepo) Delete(ctx context.Context, username string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE username = ?`, username)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound("user %q does not exist", username)
	}
	return nil
}

// SetStaff updates the staff flag of a user.
func (r *UserRepo) SetStaff(ctx context.Context, username string, staff bool) error {
	return r.setFlag(ctx, username, "is_staff", staff)
}

// SetSuperuser updates the superuser flag of a user.
func (r *UserRepo) SetSuperuser(ctx context.Context, username string, superuser bool) error {
	return r.setFlag(ctx, username, "is_superuser", superuser)
}

func (r *UserRepo) setFlag(ctx context.Context, username, column string, value bool) error {
	// column is one of the fixed names above, never caller input.
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET `+column+` = ? WHERE username = ?`,
		boolToInt(value), username,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound("user %q does not exist", username)
	}
	return nil
}

func (r *UserRepo) getByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, username, email, is_staff, is_superuser, created_at FROM users WHERE id = ?`,
		id,
	)
	return scanUser(row, "")
}

func scanUser(row *sql.Row, username string) (*domain.User, error) {
	var u domain.User
	var staff, superuser int
	err := row.Scan(&u.ID, &u.Username, &u.Email, &staff, &superuser, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound("user %q does not exist", username)
	}
	if err != nil {
		return nil, err
	}
	u.Staff = staff != 0
	u.Superuser = superuser != 0
	return &u, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// mapDBError converts SQLite constraint violations into domain errors.
func mapDBError(err error, username string) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return domain.ErrConflict("user %q already exists", username)
	}
	return err
}

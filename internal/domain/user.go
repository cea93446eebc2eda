package domain

import (
	"context"
	"time"
)

// User is a registered account in the directory. Username is the stable
// identifier referenced by page URLs and tokens.
type User struct {
	ID        int64
	Username  string
	Email     string
	Staff     bool
	Superuser bool
	CreatedAt time.Time
}

// UserRepository persists user records.
type UserRepository interface {
	Create(ctx context.Context, u *User) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Exists(ctx context.Context, username string) (bool, error)
	List(ctx context.Context, page PageRequest) ([]User, int64, error)
	Delete(ctx context.Context, username string) error
	SetStaff(ctx context.Context, username string, staff bool) error
	SetSuperuser(ctx context.Context, username string, superuser bool) error
}

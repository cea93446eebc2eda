// Package testutil provides shared mock implementations of domain interfaces
// for use in tests across the codebase. This follows the Go convention of a
// shared test utility package (like net/http/httptest).
package testutil

import (
	"context"
	"strconv"
	"time"

	"pageguard/internal/domain"
)

// === Audit Repository Mock ===

// MockAuditRepo implements domain.AuditRepository for testing.
type MockAuditRepo struct {
	InsertFn func(ctx context.Context, e *domain.AuditEntry) error
	Entries  []*domain.AuditEntry // collected entries for assertions
}

// Insert implements the interface method for testing.
func (m *MockAuditRepo) Insert(ctx context.Context, e *domain.AuditEntry) error {
	if m.InsertFn != nil {
		if err := m.InsertFn(ctx, e); err != nil {
			return err
		}
	}
	m.Entries = append(m.Entries, e)
	return nil
}

// List implements the interface method for testing.
func (m *MockAuditRepo) List(_ context.Context, _ domain.AuditFilter) ([]domain.AuditEntry, int64, error) {
	entries := make([]domain.AuditEntry, len(m.Entries))
	for i, e := range m.Entries {
		entries[i] = *e
	}
	return entries, int64(len(entries)), nil
}

// PruneBefore implements the interface method for testing.
func (m *MockAuditRepo) PruneBefore(_ context.Context, cutoff time.Time) (int64, error) {
	var kept []*domain.AuditEntry
	var removed int64
	for _, e := range m.Entries {
		if e.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	m.Entries = kept
	return removed, nil
}

// LastEntry returns the last collected audit entry, or nil if none.
func (m *MockAuditRepo) LastEntry() *domain.AuditEntry {
	if len(m.Entries) == 0 {
		return nil
	}
	return m.Entries[len(m.Entries)-1]
}

// HasAction returns true if any collected entry has the given action.
func (m *MockAuditRepo) HasAction(action string) bool {
	for _, e := range m.Entries {
		if e.Action == action {
			return true
		}
	}
	return false
}

var _ domain.AuditRepository = (*MockAuditRepo)(nil)

// === User Repository Mock ===

// MockUserRepo implements domain.UserRepository in memory for testing.
type MockUserRepo struct {
	Users  map[string]*domain.User
	nextID int64
}

// NewMockUserRepo creates an empty MockUserRepo.
func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{Users: map[string]*domain.User{}}
}

// Create implements the interface method for testing.
func (m *MockUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	if _, exists := m.Users[u.Username]; exists {
		return nil, domain.ErrConflict("user %q already exists", u.Username)
	}
	m.nextID++
	created := *u
	created.ID = m.nextID
	created.CreatedAt = time.Now().UTC()
	m.Users[u.Username] = &created
	return &created, nil
}

// GetByUsername implements the interface method for testing.
func (m *MockUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	if u, ok := m.Users[username]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, domain.ErrNotFound("user %q does not exist", username)
}

// Exists implements the interface method for testing.
func (m *MockUserRepo) Exists(_ context.Context, username string) (bool, error) {
	_, ok := m.Users[username]
	return ok, nil
}

// List implements the interface method for testing.
func (m *MockUserRepo) List(_ context.Context, _ domain.PageRequest) ([]domain.User, int64, error) {
	users := make([]domain.User, 0, len(m.Users))
	for _, u := range m.Users {
		users = append(users, *u)
	}
	return users, int64(len(users)), nil
}

// Delete implements the interface method for testing.
func (m *MockUserRepo) Delete(_ context.Context, username string) error {
	if _, ok := m.Users[username]; !ok {
		return domain.ErrNotFound("user %q does not exist", username)
	}
	delete(m.Users, username)
	return nil
}

// SetStaff implements the interface method for testing.
func (m *MockUserRepo) SetStaff(_ context.Context, username string, staff bool) error {
	u, ok := m.Users[username]
	if !ok {
		return domain.ErrNotFound("user %q does not exist", username)
	}
	u.Staff = staff
	return nil
}

// SetSuperuser implements the interface method for testing.
func (m *MockUserRepo) SetSuperuser(_ context.Context, username string, superuser bool) error {
	u, ok := m.Users[username]
	if !ok {
		return domain.ErrNotFound("user %q does not exist", username)
	}
	u.Superuser = superuser
	return nil
}

var _ domain.UserRepository = (*MockUserRepo)(nil)

// === API Key Repository Mock ===

// MockAPIKeyRepo implements domain.APIKeyRepository in memory for testing.
type MockAPIKeyRepo struct {
	Keys   []*domain.APIKey
	nextID int
}

// Create implements the interface method for testing.
func (m *MockAPIKeyRepo) Create(_ context.Context, key *domain.APIKey) error {
	m.nextID++
	if key.ID == "" {
		key.ID = "key-" + strconv.Itoa(m.nextID)
	}
	if key.CreatedAt.IsZero() {
		key.CreatedAt = time.Now().UTC()
	}
	stored := *key
	m.Keys = append(m.Keys, &stored)
	return nil
}

// LookupUsernameByHash implements the interface method for testing.
func (m *MockAPIKeyRepo) LookupUsernameByHash(_ context.Context, keyHash string) (string, error) {
	now := time.Now()
	for _, k := range m.Keys {
		if k.KeyHash == keyHash && !k.Expired(now) {
			return k.Username, nil
		}
	}
	return "", domain.ErrNotFound("api key not found")
}

// ListByUsername implements the interface method for testing.
func (m *MockAPIKeyRepo) ListByUsername(_ context.Context, username string) ([]domain.APIKey, error) {
	var keys []domain.APIKey
	for _, k := range m.Keys {
		if k.Username == username {
			keys = append(keys, *k)
		}
	}
	return keys, nil
}

// Delete implements the interface method for testing.
func (m *MockAPIKeyRepo) Delete(_ context.Context, username, id string) error {
	for i, k := range m.Keys {
		if k.Username == username && k.ID == id {
			m.Keys = append(m.Keys[:i], m.Keys[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound("api key %q does not exist", id)
}

// DeleteExpired implements the interface method for testing.
func (m *MockAPIKeyRepo) DeleteExpired(_ context.Context) (int64, error) {
	now := time.Now()
	var kept []*domain.APIKey
	var removed int64
	for _, k := range m.Keys {
		if k.Expired(now) {
			removed++
			continue
		}
		kept = append(kept, k)
	}
	m.Keys = kept
	return removed, nil
}

var _ domain.APIKeyRepository = (*MockAPIKeyRepo)(nil)

package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pageguard/authz"
)

type errorDirectory struct{}

func (errorDirectory) Exists(context.Context, string) (bool, error) {
	return false, errors.New("boom")
}

type capturedAudit struct {
	entries [][2]string
}

func (c *capturedAudit) StaffAccess(_ context.Context, principal, path string) {
	c.entries = append(c.entries, [2]string{principal, path})
}

// newGuardedRouter builds a chi router with an owner-or-staff guarded profile
// route and an owner-only guarded settings route.
func newGuardedRouter(dir authz.Directory, rec authz.AuditRecorder, p authz.Principal) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(WithPrincipal(req.Context(), p)))
		})
	})
	r.Route("/users/{username}", func(r chi.Router) {
		r.With(Guard(authz.OwnerOrStaff(dir, authz.WithAuditRecorder(rec)))).
			Get("/", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
		r.With(Guard(authz.OwnerOnly(dir))).
			Get("/settings", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
	})
	return r
}

func doGet(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestGuard_OwnerAllowed(t *testing.T) {
	dir := authz.NewStaticDirectory("alice")
	h := newGuardedRouter(dir, &capturedAudit{}, authz.Principal{Identifier: "alice", Authenticated: true})

	rr := doGet(t, h, "/users/alice/")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = doGet(t, h, "/users/alice/settings")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestGuard_UnknownOwner404(t *testing.T) {
	dir := authz.NewStaticDirectory("alice")
	h := newGuardedRouter(dir, &capturedAudit{}, authz.Anonymous())

	rr := doGet(t, h, "/users/nobody/")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "nobody")

	rr = doGet(t, h, "/users/nobody/settings")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGuard_NonOwner403(t *testing.T) {
	dir := authz.NewStaticDirectory("alice", "bob")
	h := newGuardedRouter(dir, &capturedAudit{}, authz.Principal{Identifier: "alice", Authenticated: true})

	rr := doGet(t, h, "/users/bob/settings")
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Body.String(), "not the owner")
}

func TestGuard_StaffAllowedAndAudited(t *testing.T) {
	dir := authz.NewStaticDirectory("alice", "other")
	rec := &capturedAudit{}
	staff := authz.Principal{Identifier: "staff1", Staff: true, Authenticated: true}
	h := newGuardedRouter(dir, rec, staff)

	rr := doGet(t, h, "/users/other/")
	assert.Equal(t, http.StatusOK, rr.Code)

	require.Len(t, rec.entries, 1)
	assert.Equal(t, "staff1", rec.entries[0][0])
	assert.Equal(t, "/users/other/", rec.entries[0][1])

	// Staff does not help on the owner-only settings route.
	rr = doGet(t, h, "/users/other/settings")
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Len(t, rec.entries, 1)
}

func TestGuard_StaffOnlyRoute(t *testing.T) {
	r := chi.NewRouter()
	staff := authz.Principal{Identifier: "staff1", Staff: true, Authenticated: true}
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(WithPrincipal(req.Context(), staff)))
		})
	})
	r.With(Guard(authz.StaffOnly())).Get("/admin/users", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.With(Guard(authz.SuperuserOnly())).Delete("/admin/users/{username}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	rr := doGet(t, r, "/admin/users")
	assert.Equal(t, http.StatusOK, rr.Code)

	req := httptest.NewRequest(http.MethodDelete, "/admin/users/alice", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "not a superuser")
}

func TestGuard_DirectoryError500(t *testing.T) {
	h := newGuardedRouter(errorDirectory{}, &capturedAudit{}, authz.Anonymous())

	rr := doGet(t, h, "/users/alice/")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestGuard_AnonymousOnStaffRoute403(t *testing.T) {
	r := chi.NewRouter()
	r.With(Guard(authz.StaffOnly())).Get("/admin/users", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rr := doGet(t, r, "/admin/users")
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

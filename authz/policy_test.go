package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingAudit collects StaffAccess calls for assertions.
type recordingAudit struct {
	entries []([2]string)
}

func (r *recordingAudit) StaffAccess(_ context.Context, principal, path string) {
	r.entries = append(r.entries, [2]string{principal, path})
}

// failingDirectory always returns the configured error.
type failingDirectory struct {
	err error
}

func (d failingDirectory) Exists(context.Context, string) (bool, error) {
	return false, d.err
}

var ctx = context.Background()

func ownerRequest(p Principal, owner string) Request {
	return Request{
		Principal: p,
		Params:    map[string]string{"username": owner},
		Path:      "/users/" + owner,
	}
}

func TestStaffOnly(t *testing.T) {
	policy := StaffOnly()

	cases := []struct {
		name      string
		principal Principal
		want      Effect
	}{
		{"staff user", Principal{Identifier: "staff1", Staff: true, Authenticated: true}, EffectAllow},
		{"regular user", Principal{Identifier: "alice", Authenticated: true}, EffectForbidden},
		{"superuser without staff flag", Principal{Identifier: "root", Superuser: true, Authenticated: true}, EffectForbidden},
		{"anonymous", Anonymous(), EffectForbidden},
		{"unauthenticated staff flags", Principal{Identifier: "ghost", Staff: true}, EffectForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			verdict, err := policy.Evaluate(ctx, Request{Principal: tc.principal})
			require.NoError(t, err)
			assert.Equal(t, tc.want, verdict.Effect)
			if tc.want == EffectForbidden {
				assert.Equal(t, "not a staff user", verdict.Reason)
			}
		})
	}
}

func TestSuperuserOnly(t *testing.T) {
	policy := SuperuserOnly()

	cases := []struct {
		name      string
		principal Principal
		want      Effect
	}{
		{"superuser", Principal{Identifier: "root", Superuser: true, Authenticated: true}, EffectAllow},
		{"staff without superuser flag", Principal{Identifier: "staff1", Staff: true, Authenticated: true}, EffectForbidden},
		{"regular user", Principal{Identifier: "alice", Authenticated: true}, EffectForbidden},
		{"anonymous", Anonymous(), EffectForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			verdict, err := policy.Evaluate(ctx, Request{Principal: tc.principal})
			require.NoError(t, err)
			assert.Equal(t, tc.want, verdict.Effect)
			if tc.want == EffectForbidden {
				assert.Equal(t, "not a superuser", verdict.Reason)
			}
		})
	}
}

func TestOwnerOnly_OwnerAllowed(t *testing.T) {
	dir := NewStaticDirectory("alice", "bob")
	policy := OwnerOnly(dir)

	alice := Principal{Identifier: "alice", Authenticated: true}

	verdict, err := policy.Evaluate(ctx, ownerRequest(alice, "alice"))
	require.NoError(t, err)
	assert.True(t, verdict.Allowed())
}

func TestOwnerOnly_NonOwnerForbidden(t *testing.T) {
	dir := NewStaticDirectory("alice", "bob")
	policy := OwnerOnly(dir)

	alice := Principal{Identifier: "alice", Authenticated: true}

	verdict, err := policy.Evaluate(ctx, ownerRequest(alice, "bob"))
	require.NoError(t, err)
	assert.Equal(t, EffectForbidden, verdict.Effect)
	assert.Equal(t, "not the owner", verdict.Reason)
}

func TestOwnerOnly_StaffStillForbidden(t *testing.T) {
	// Staff status grants nothing under OwnerOnly.
	dir := NewStaticDirectory("alice")
	policy := OwnerOnly(dir)

	staff := Principal{Identifier: "staff1", Staff: true, Authenticated: true}

	verdict, err := policy.Evaluate(ctx, ownerRequest(staff, "alice"))
	require.NoError(t, err)
	assert.Equal(t, EffectForbidden, verdict.Effect)
}

func TestOwnerPolicies_UnknownOwnerNotFound(t *testing.T) {
	dir := NewStaticDirectory("alice")

	principals := []Principal{
		{Identifier: "alice", Authenticated: true},
		{Identifier: "staff1", Staff: true, Authenticated: true},
		{Identifier: "root", Superuser: true, Authenticated: true},
		Anonymous(),
	}

	for _, policy := range []Policy{OwnerOnly(dir), OwnerOrStaff(dir, WithAuditRecorder(&recordingAudit{}))} {
		for _, p := range principals {
			verdict, err := policy.Evaluate(ctx, ownerRequest(p, "nobody"))
			require.NoError(t, err)
			assert.Equal(t, EffectNotFound, verdict.Effect)
			assert.Contains(t, verdict.Reason, `"nobody"`)
		}
	}
}

func TestOwnerOrStaff_OwnerAllowedWithoutAudit(t *testing.T) {
	dir := NewStaticDirectory("alice")
	rec := &recordingAudit{}
	policy := OwnerOrStaff(dir, WithAuditRecorder(rec))

	alice := Principal{Identifier: "alice", Staff: true, Authenticated: true}

	verdict, err := policy.Evaluate(ctx, ownerRequest(alice, "alice"))
	require.NoError(t, err)
	assert.True(t, verdict.Allowed())
	// Owners are not audited, even when they are also staff.
	assert.Empty(t, rec.entries)
}

func TestOwnerOrStaff_StaffAllowedAndAuditedOnce(t *testing.T) {
	dir := NewStaticDirectory("alice", "other")
	rec := &recordingAudit{}
	policy := OwnerOrStaff(dir, WithAuditRecorder(rec))

	staff := Principal{Identifier: "staff1", Staff: true, Authenticated: true}

	verdict, err := policy.Evaluate(ctx, ownerRequest(staff, "other"))
	require.NoError(t, err)
	assert.True(t, verdict.Allowed())

	require.Len(t, rec.entries, 1)
	assert.Equal(t, "staff1", rec.entries[0][0])
	assert.Equal(t, "/users/other", rec.entries[0][1])
}

func TestOwnerOrStaff_NonStaffForbiddenWithoutAudit(t *testing.T) {
	dir := NewStaticDirectory("alice", "bob")
	rec := &recordingAudit{}
	policy := OwnerOrStaff(dir, WithAuditRecorder(rec))

	alice := Principal{Identifier: "alice", Authenticated: true}

	verdict, err := policy.Evaluate(ctx, ownerRequest(alice, "bob"))
	require.NoError(t, err)
	assert.Equal(t, EffectForbidden, verdict.Effect)
	assert.Equal(t, "not the owner nor a staff user", verdict.Reason)
	assert.Empty(t, rec.entries)
}

func TestOwnerPolicies_CustomLookupKey(t *testing.T) {
	dir := NewStaticDirectory("alice")
	policy := OwnerOnly(dir, WithLookupKey("user"))

	alice := Principal{Identifier: "alice", Authenticated: true}

	// The configured key is read; the default key is ignored.
	verdict, err := policy.Evaluate(ctx, Request{
		Principal: alice,
		Params:    map[string]string{"user": "alice", "username": "bob"},
		Path:      "/profiles/alice",
	})
	require.NoError(t, err)
	assert.True(t, verdict.Allowed())

	verdict, err = policy.Evaluate(ctx, Request{
		Principal: alice,
		Params:    map[string]string{"username": "alice"},
		Path:      "/profiles/alice",
	})
	require.NoError(t, err)
	assert.Equal(t, EffectNotFound, verdict.Effect)
}

func TestOwnerPolicies_DirectoryErrorPropagates(t *testing.T) {
	lookupErr := errors.New("directory unavailable")

	for _, policy := range []Policy{
		OwnerOnly(failingDirectory{err: lookupErr}),
		OwnerOrStaff(failingDirectory{err: lookupErr}, WithAuditRecorder(&recordingAudit{})),
	} {
		alice := Principal{Identifier: "alice", Authenticated: true}
		_, err := policy.Evaluate(ctx, ownerRequest(alice, "alice"))
		assert.ErrorIs(t, err, lookupErr)
	}
}

func TestOwnerPolicies_MissingParamNotFound(t *testing.T) {
	dir := NewStaticDirectory("alice")
	policy := OwnerOnly(dir)

	verdict, err := policy.Evaluate(ctx, Request{
		Principal: Principal{Identifier: "alice", Authenticated: true},
		Params:    map[string]string{},
		Path:      "/users/",
	})
	require.NoError(t, err)
	assert.Equal(t, EffectNotFound, verdict.Effect)
}

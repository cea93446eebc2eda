// Package authz provides per-request access-control policies for resources
// owned by a user: staff-only, superuser-only, owner-only, and owner-or-staff.
//
// Each policy is a stateless Policy value; all decisions flow through its
// Evaluate method, which returns a Verdict instead of raising an error. The
// caller maps verdicts to transport responses (403 for DenyForbidden, 404 for
// DenyNotFound).
//
// Owner-based policies consult a Directory to decide whether the referenced
// owner exists at all. That check runs before any authorization comparison, so
// an unknown owner always yields DenyNotFound, even for anonymous principals.
//
//	dir := authz.NewStaticDirectory("alice", "bob")
//	policy := authz.OwnerOrStaff(dir)
//
//	verdict, err := policy.Evaluate(ctx, authz.Request{
//		Principal: authz.Principal{Identifier: "alice", Authenticated: true},
//		Params:    map[string]string{"username": "bob"},
//		Path:      "/users/bob",
//	})
//
// When a staff principal is allowed onto a page they do not own, OwnerOrStaff
// records the access through an AuditRecorder exactly once per allowed request.
package authz

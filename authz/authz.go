package authz

import (
	"context"
	"fmt"
)

// DefaultLookupKey is the request parameter owner-based policies read when no
// override is configured via WithLookupKey.
const DefaultLookupKey = "username"

// Effect classifies the outcome of a policy evaluation.
type Effect string

const (
	// EffectAllow permits the request.
	EffectAllow Effect = "ALLOW"
	// EffectForbidden denies the request for a known principal or resource
	// (maps to HTTP 403 in a web caller).
	EffectForbidden Effect = "DENY_FORBIDDEN"
	// EffectNotFound denies the request because the referenced owner does not
	// exist (maps to HTTP 404 in a web caller).
	EffectNotFound Effect = "DENY_NOT_FOUND"
)

// Verdict is the result of a single policy evaluation. Verdicts are returned,
// never panicked; directory lookup failures are surfaced as a separate error.
type Verdict struct {
	Effect Effect
	Reason string // human-readable explanation, empty on Allow
}

// Allowed reports whether the verdict permits the request.
func (v Verdict) Allowed() bool { return v.Effect == EffectAllow }

// Allow returns a permitting verdict.
func Allow() Verdict { return Verdict{Effect: EffectAllow} }

// Forbidden returns a DenyForbidden verdict with a formatted reason.
func Forbidden(format string, args ...any) Verdict {
	return Verdict{Effect: EffectForbidden, Reason: fmt.Sprintf(format, args...)}
}

// NotFound returns a DenyNotFound verdict with a formatted reason.
func NotFound(format string, args ...any) Verdict {
	return Verdict{Effect: EffectNotFound, Reason: fmt.Sprintf(format, args...)}
}

// Principal is the acting entity for a request, built by the caller from
// session or token state before evaluation. Immutable for the duration of a
// check.
type Principal struct {
	Identifier    string // unique, stable identifier ("" for anonymous)
	Staff         bool
	Superuser     bool
	Authenticated bool // false for anonymous principals
}

// Anonymous returns the unauthenticated principal.
func Anonymous() Principal { return Principal{} }

// Request carries everything a policy needs for one evaluation: the acting
// principal, the URL parameters the owner reference is extracted from, and the
// request path (recorded by the audit side effect).
type Request struct {
	Principal Principal
	Params    map[string]string
	Path      string
}

// OwnerReference identifies the declared owner of the requested resource,
// resolved from Request.Params using the policy's lookup key.
type OwnerReference struct {
	Identifier string
	Path       string
}

// Policy evaluates an access-control rule for a single request. Policies hold
// no per-request state and are safe for concurrent use. The returned error is
// a Directory lookup failure passed through unchanged; it never encodes a
// deny decision.
type Policy interface {
	Evaluate(ctx context.Context, req Request) (Verdict, error)
}

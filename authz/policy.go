package authz

import "context"

// StaffOnly returns a policy that allows authenticated staff principals and
// denies everyone else with DenyForbidden.
func StaffOnly() Policy { return staffOnly{} }

type staffOnly struct{}

func (staffOnly) Evaluate(_ context.Context, req Request) (Verdict, error) {
	p := req.Principal
	if p.Authenticated && p.Staff {
		return Allow(), nil
	}
	return Forbidden("not a staff user"), nil
}

// SuperuserOnly returns a policy that allows authenticated superusers and
// denies everyone else with DenyForbidden.
func SuperuserOnly() Policy { return superuserOnly{} }

type superuserOnly struct{}

func (superuserOnly) Evaluate(_ context.Context, req Request) (Verdict, error) {
	p := req.Principal
	if p.Authenticated && p.Superuser {
		return Allow(), nil
	}
	return Forbidden("not a superuser"), nil
}

// Option configures an owner-based policy at construction time.
type Option func(*ownerPolicy)

// WithLookupKey overrides which request parameter the owner identifier is read
// from. The default is DefaultLookupKey ("username").
func WithLookupKey(key string) Option {
	return func(p *ownerPolicy) {
		if key != "" {
			p.lookupKey = key
		}
	}
}

// WithAuditRecorder sets the recorder OwnerOrStaff notifies when a staff
// principal accesses a page they do not own. Ignored by OwnerOnly.
func WithAuditRecorder(rec AuditRecorder) Option {
	return func(p *ownerPolicy) {
		if rec != nil {
			p.audit = rec
		}
	}
}

// OwnerOnly returns a policy that allows only the owner of the requested page.
// An unknown owner yields DenyNotFound before any authorization comparison.
func OwnerOnly(dir Directory, opts ...Option) Policy {
	return newOwnerPolicy(dir, false, opts)
}

// OwnerOrStaff returns a policy that allows the owner of the requested page or
// any staff principal. Staff access to a page the principal does not own is
// reported to the configured AuditRecorder. An unknown owner yields
// DenyNotFound before any authorization comparison.
func OwnerOrStaff(dir Directory, opts ...Option) Policy {
	return newOwnerPolicy(dir, true, opts)
}

type ownerPolicy struct {
	dir        Directory
	lookupKey  string
	allowStaff bool
	audit      AuditRecorder
}

func newOwnerPolicy(dir Directory, allowStaff bool, opts []Option) *ownerPolicy {
	p := &ownerPolicy{
		dir:        dir,
		lookupKey:  DefaultLookupKey,
		allowStaff: allowStaff,
		audit:      LogRecorder{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// OwnerRef resolves the owner reference for a request using the policy's
// configured lookup key.
func (p *ownerPolicy) OwnerRef(req Request) OwnerReference {
	return OwnerReference{
		Identifier: req.Params[p.lookupKey],
		Path:       req.Path,
	}
}

func (p *ownerPolicy) Evaluate(ctx context.Context, req Request) (Verdict, error) {
	ref := p.OwnerRef(req)

	// The existence check comes first and fires even for anonymous
	// principals: an unknown owner must never leak a permission decision.
	ok, err := p.dir.Exists(ctx, ref.Identifier)
	if err != nil {
		return Verdict{}, err
	}
	if !ok {
		return NotFound("user %q does not exist", ref.Identifier), nil
	}

	if req.Principal.Identifier == ref.Identifier {
		return Allow(), nil
	}

	if !p.allowStaff {
		return Forbidden("not the owner"), nil
	}

	if req.Principal.Staff {
		p.audit.StaffAccess(ctx, req.Principal.Identifier, ref.Path)
		return Allow(), nil
	}

	return Forbidden("not the owner nor a staff user"), nil
}

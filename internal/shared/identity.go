package shared

import "context"

// Identity describes the authenticated actor of a request. Email is the
// stable identifier used for role assignments and audit records.
type Identity struct {
	ID    string
	Email string
}

// IdentityResolver reports the acting identity for a request context.
// Session issuance itself belongs to the external identity provider; this
// only reads what the session layer established.
type IdentityResolver interface {
	CurrentIdentity(ctx context.Context) (Identity, bool)
}

// SessionIdentityResolver resolves the identity from the session stored in
// the request context.
type SessionIdentityResolver struct{}

// CurrentIdentity returns the identity bound to the context session, or
// false when the request is unauthenticated.
func (SessionIdentityResolver) CurrentIdentity(ctx context.Context) (Identity, bool) {
	sess := SessionFromContext(ctx)
	if sess == nil || sess.UserEmail() == "" {
		return Identity{}, false
	}
	return Identity{ID: sess.ID, Email: sess.UserEmail()}, true
}

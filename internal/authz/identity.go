package authz

import "github.com/classware/classman-backend/internal/model"

// IdentityState is the outcome of credential resolution for one request.
type IdentityState string

const (
	// StateAuthenticated means a valid token resolved to an active user.
	StateAuthenticated IdentityState = "authenticated"
	// StateAnonymous means no credential was presented.
	StateAnonymous IdentityState = "anonymous"
	// StateRejected means a credential was presented but failed
	// verification or resolution. Soft-auth endpoints may proceed as
	// anonymous; hard-auth endpoints must fail. The distinction is kept
	// explicit so a rejected token is never silently mistaken for no token.
	StateRejected IdentityState = "rejected"
)

// Identity is the three-valued result attached to a request after the gate
// runs. User is non-nil only when State is StateAuthenticated.
type Identity struct {
	State IdentityState
	User  *model.User
}

// Authenticated reports whether a live user is attached.
func (id Identity) Authenticated() bool {
	return id.State == StateAuthenticated && id.User != nil
}

// AuthenticatedIdentity wraps a resolved user.
func AuthenticatedIdentity(u *model.User) Identity {
	return Identity{State: StateAuthenticated, User: u}
}

// AnonymousIdentity is the no-credential result.
func AnonymousIdentity() Identity {
	return Identity{State: StateAnonymous}
}

// RejectedIdentity is the bad-credential result.
func RejectedIdentity() Identity {
	return Identity{State: StateRejected}
}

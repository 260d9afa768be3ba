package auth

import (
	"slices"
	"time"
)

// AuthMethod indicates how the caller was identified.
type AuthMethod string

const (
	AuthMethodNone      AuthMethod = "none"
	AuthMethodJWT       AuthMethod = "jwt"
	AuthMethodAnonymous AuthMethod = "anonymous"
)

// Identity is the caller of a memoized function.
type Identity struct {
	// Principal is the unique identifier (e.g., user ID, email).
	Principal string

	// TenantID is the tenant this identity belongs to.
	TenantID string

	// Roles are the roles assigned to this identity.
	Roles []string

	// Method indicates how the identity was established.
	Method AuthMethod

	// Claims contains the raw claims from the token, if any.
	Claims map[string]any

	// ExpiresAt is when this identity expires. Zero means never.
	ExpiresAt time.Time
}

// HasRole checks if the identity has a specific role.
func (id *Identity) HasRole(role string) bool {
	return slices.Contains(id.Roles, role)
}

// IsExpired checks if the identity has expired.
func (id *Identity) IsExpired() bool {
	if id.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(id.ExpiresAt)
}

// IsAnonymous returns true if this is an anonymous identity.
func (id *Identity) IsAnonymous() bool {
	return id.Method == AuthMethodAnonymous || id.Principal == ""
}

// AnonymousIdentity creates a default anonymous identity.
func AnonymousIdentity() *Identity {
	return &Identity{
		Principal: "anonymous",
		Method:    AuthMethodAnonymous,
	}
}

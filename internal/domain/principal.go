package domain

// Principal is the caller a request runs on behalf of. Membership relations
// are not loaded onto the principal; scope predicates resolve them in the
// store so that list queries never fetch rows just to drop them.
type Principal struct {
	ID        int64
	Role      Role
	Anonymous bool
}

// Anonymous returns the principal used for unauthenticated requests.
func AnonymousPrincipal() Principal {
	return Principal{Role: RoleGuest, Anonymous: true}
}

func (p Principal) IsAdmin() bool {
	return !p.Anonymous && p.Role == RoleAdmin
}

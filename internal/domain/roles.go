package domain

import (
	"fmt"
	"strings"
)

// Role is the global user role. Values are ordered so that access checks can
// compare roles directly instead of keeping a separate rank table.
type Role int

const (
	RoleGuest Role = iota
	RoleViewer
	RoleDeveloper
	RoleManager
	RoleAdmin
)

var roleNames = map[Role]string{
	RoleGuest:     "guest",
	RoleViewer:    "viewer",
	RoleDeveloper: "developer",
	RoleManager:   "manager",
	RoleAdmin:     "admin",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "guest"
}

// AtLeast reports whether r grants everything min grants.
func (r Role) AtLeast(min Role) bool {
	return r >= min
}

// ParseRole maps a stored role string to a Role. Unknown values are rejected
// rather than silently downgraded so that bad rows surface early.
func ParseRole(s string) (Role, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	for role, name := range roleNames {
		if name == normalized {
			return role, nil
		}
	}
	// legacy rows may store "contributor" for developer
	if normalized == "contributor" {
		return RoleDeveloper, nil
	}
	return RoleGuest, ValidationError{Field: "role", Msg: fmt.Sprintf("unknown role %q", s)}
}

// ProjectRole is the per-project membership role.
type ProjectRole string

const (
	ProjectRoleOwner  ProjectRole = "owner"
	ProjectRoleMember ProjectRole = "member"
	ProjectRoleViewer ProjectRole = "viewer"
)

func ParseProjectRole(s string) (ProjectRole, error) {
	switch ProjectRole(strings.ToLower(strings.TrimSpace(s))) {
	case ProjectRoleOwner:
		return ProjectRoleOwner, nil
	case ProjectRoleMember:
		return ProjectRoleMember, nil
	case ProjectRoleViewer:
		return ProjectRoleViewer, nil
	}
	return "", ValidationError{Field: "role", Msg: fmt.Sprintf("unknown project role %q", s)}
}

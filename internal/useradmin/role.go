package useradmin

import (
	"fmt"
	"strings"
)

// Role is the privilege level a user holds within one company. The set is
// ordered: employee < admin < super_admin.
type Role string

const (
	RoleEmployee   Role = "employee"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

var roleLevels = map[Role]int{
	RoleEmployee:   1,
	RoleAdmin:      2,
	RoleSuperAdmin: 3,
}

// ParseRole normalizes and validates a role string.
func ParseRole(raw string) (Role, error) {
	role := Role(strings.TrimSpace(strings.ToLower(raw)))
	if _, ok := roleLevels[role]; !ok {
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, raw)
	}
	return role, nil
}

// Level returns the numeric privilege level; zero for unknown roles.
func (r Role) Level() int {
	return roleLevels[r]
}

// AtLeast reports whether r carries at least the privilege of other.
func (r Role) AtLeast(other Role) bool {
	return r.Level() >= other.Level()
}

// Assignable reports whether the role may be granted through the admin
// operation set. The super_admin role is never assignable here.
func (r Role) Assignable() bool {
	return r == RoleAdmin || r == RoleEmployee
}

func (r Role) String() string { return string(r) }

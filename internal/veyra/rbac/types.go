// Package rbac enforces the closed role hierarchy (owner > admin > user >
// restricted) gating the /users… routes: a caller may only assign a role
// strictly below their own, owners may never be removed, and every mutation
// appends an audit record.
package rbac

import "time"

// Role is the closed, ordered set of access levels.
type Role string

const (
	RoleOwner      Role = "owner"
	RoleAdmin      Role = "admin"
	RoleUser       Role = "user"
	RoleRestricted Role = "restricted"
)

// levels assigns each Role its strict ordering weight (§6: owner(4) >
// admin(3) > user(2) > restricted(1)).
var levels = map[Role]int{
	RoleOwner:      4,
	RoleAdmin:      3,
	RoleUser:       2,
	RoleRestricted: 1,
}

// Level returns r's ordering weight, or 0 if r is not one of the closed set.
func (r Role) Level() int {
	return levels[r]
}

// Valid reports whether r belongs to the closed role set.
func (r Role) Valid() bool {
	_, ok := levels[r]
	return ok
}

// User is one managed identity and its current role.
type User struct {
	ID        string
	ContactID string
	Role      Role
	CreatedAt time.Time
}

// AuditRecord is appended on every mutation this package performs.
type AuditRecord struct {
	ID          int64
	Action      string
	Target      string
	PerformedBy string
	OldRole     Role
	NewRole     Role
	Reason      string
	CreatedAt   time.Time
}

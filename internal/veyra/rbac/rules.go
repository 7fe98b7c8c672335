package rbac

import "errors"

// ErrForbidden is returned when a caller's role does not authorize the
// requested mutation.
var ErrForbidden = errors.New("rbac: forbidden")

// ErrOwnerNotRemovable is returned by DeleteUser/SetRole attempts against an
// owner account.
var ErrOwnerNotRemovable = errors.New("rbac: owner accounts cannot be removed")

// ErrInvalidRole is returned when a role string is outside the closed set.
var ErrInvalidRole = errors.New("rbac: invalid role")

// ErrNotFound is returned when a target user ID has no managed user.
var ErrNotFound = errors.New("rbac: user not found")

// authorizeAssign is the pure decision at the heart of every mutation: a
// caller may only assign (or already hold, when creating) a role strictly
// below their own level.
func authorizeAssign(performer, target Role) error {
	if !performer.Valid() || !target.Valid() {
		return ErrInvalidRole
	}
	if target.Level() >= performer.Level() {
		return ErrForbidden
	}
	return nil
}

package rbac

import (
	"context"
	"errors"
	"fmt"
)

// Service wraps a Store with the authorization rules and audit trail the
// /users… routes need; handlers never talk to Store directly.
type Service struct {
	store Store
}

// New builds a Service over store.
func New(store Store) *Service {
	return &Service{store: store}
}

// auditDenied records a refused mutation attempt. Per §7's error taxonomy
// ("Authorization … Audit the attempt"), an RBAC refusal is audited even
// though nothing was actually mutated.
func (s *Service) auditDenied(ctx context.Context, action, target, performedBy string, attemptedRole Role, reason string) {
	_ = s.store.AppendAudit(ctx, AuditRecord{
		Action:      action + "_denied",
		Target:      target,
		PerformedBy: performedBy,
		NewRole:     attemptedRole,
		Reason:      reason,
	})
}

// CreateUser creates a new user with the given role, provided performer's
// role is strictly above it.
func (s *Service) CreateUser(ctx context.Context, performer User, newUser User, reason string) error {
	if err := authorizeAssign(performer.Role, newUser.Role); err != nil {
		s.auditDenied(ctx, "create_user", newUser.ID, performer.ID, newUser.Role, reason)
		return err
	}
	if err := s.store.CreateUser(ctx, newUser); err != nil {
		return fmt.Errorf("rbac: create user: %w", err)
	}
	return s.store.AppendAudit(ctx, AuditRecord{
		Action:      "create_user",
		Target:      newUser.ID,
		PerformedBy: performer.ID,
		NewRole:     newUser.Role,
		Reason:      reason,
	})
}

// SetRole changes target's role, provided performer's role is strictly
// above the requested new role, and target is not an owner.
func (s *Service) SetRole(ctx context.Context, performer User, targetID string, newRole Role, reason string) error {
	target, ok, err := s.store.GetUser(ctx, targetID)
	if err != nil {
		return fmt.Errorf("rbac: get user: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, targetID)
	}
	if target.Role == RoleOwner {
		s.auditDenied(ctx, "set_role", targetID, performer.ID, newRole, reason)
		return ErrOwnerNotRemovable
	}
	if err := authorizeAssign(performer.Role, newRole); err != nil {
		s.auditDenied(ctx, "set_role", targetID, performer.ID, newRole, reason)
		return err
	}

	if err := s.store.SetRole(ctx, targetID, newRole); err != nil {
		return fmt.Errorf("rbac: set role: %w", err)
	}
	return s.store.AppendAudit(ctx, AuditRecord{
		Action:      "set_role",
		Target:      targetID,
		PerformedBy: performer.ID,
		OldRole:     target.Role,
		NewRole:     newRole,
		Reason:      reason,
	})
}

// DeleteUser removes target, provided it is not an owner and performer
// outranks it.
func (s *Service) DeleteUser(ctx context.Context, performer User, targetID string, reason string) error {
	target, ok, err := s.store.GetUser(ctx, targetID)
	if err != nil {
		return fmt.Errorf("rbac: get user: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, targetID)
	}
	if target.Role == RoleOwner {
		s.auditDenied(ctx, "delete_user", targetID, performer.ID, "", reason)
		return ErrOwnerNotRemovable
	}
	if target.Role.Level() >= performer.Role.Level() {
		s.auditDenied(ctx, "delete_user", targetID, performer.ID, "", reason)
		return ErrForbidden
	}

	if err := s.store.DeleteUser(ctx, targetID); err != nil {
		return fmt.Errorf("rbac: delete user: %w", err)
	}
	return s.store.AppendAudit(ctx, AuditRecord{
		Action:      "delete_user",
		Target:      targetID,
		PerformedBy: performer.ID,
		OldRole:     target.Role,
		Reason:      reason,
	})
}

// GetUser returns a single user by ID.
func (s *Service) GetUser(ctx context.Context, id string) (User, bool, error) {
	return s.store.GetUser(ctx, id)
}

// ListUsers returns every managed user.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.store.ListUsers(ctx)
}

// IsForbidden reports whether err is (or wraps) ErrForbidden or
// ErrOwnerNotRemovable — the two refusal kinds a server maps to HTTP 403.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden) || errors.Is(err, ErrOwnerNotRemovable)
}

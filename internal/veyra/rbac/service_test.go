package rbac_test

import (
	"context"
	"testing"

	"github.com/veyra-ai/veyra/internal/veyra/rbac"
)

func TestCreateUser_OwnerAddsAdminScenario(t *testing.T) {
	// S6: owner (level 4) adds a user with role admin (3) — succeeds.
	store := rbac.NewMemStore()
	svc := rbac.New(store)
	owner := rbac.User{ID: "owner1", Role: rbac.RoleOwner}

	err := svc.CreateUser(context.Background(), owner, rbac.User{ID: "u2", Role: rbac.RoleAdmin}, "onboarding")
	if err != nil {
		t.Fatalf("expected owner to add admin, got %v", err)
	}

	got, ok, err := svc.GetUser(context.Background(), "u2")
	if err != nil || !ok {
		t.Fatalf("GetUser: ok=%v err=%v", ok, err)
	}
	if got.Role != rbac.RoleAdmin {
		t.Errorf("expected admin role, got %q", got.Role)
	}
}

func TestCreateUser_UserAddingAdminFailsAndAudits(t *testing.T) {
	// S6: user (2) attempts to add admin (3) — fails with 403, audit
	// records the attempt's refusal.
	store := rbac.NewMemStore()
	svc := rbac.New(store)
	caller := rbac.User{ID: "u1", Role: rbac.RoleUser}

	err := svc.CreateUser(context.Background(), caller, rbac.User{ID: "u2", Role: rbac.RoleAdmin}, "trying to escalate")
	if !rbac.IsForbidden(err) {
		t.Fatalf("expected forbidden error, got %v", err)
	}

	audits := store.Audits()
	if len(audits) != 1 {
		t.Fatalf("expected exactly one audit entry for the refused attempt, got %d", len(audits))
	}
	if audits[0].Action != "create_user_denied" {
		t.Errorf("expected a denied-action audit entry, got %q", audits[0].Action)
	}
	if audits[0].PerformedBy != "u1" {
		t.Errorf("expected audit to name the caller, got %q", audits[0].PerformedBy)
	}

	_, ok, _ := svc.GetUser(context.Background(), "u2")
	if ok {
		t.Error("expected the refused user not to have been created")
	}
}

func TestSetRole_CannotPromoteToOwnLevelOrAbove(t *testing.T) {
	store := rbac.NewMemStore()
	svc := rbac.New(store)
	admin := rbac.User{ID: "admin1", Role: rbac.RoleAdmin}
	store.CreateUser(context.Background(), rbac.User{ID: "u1", Role: rbac.RoleUser})

	err := svc.SetRole(context.Background(), admin, "u1", rbac.RoleAdmin, "promote")
	if !rbac.IsForbidden(err) {
		t.Errorf("expected forbidden when assigning a role equal to the caller's own, got %v", err)
	}
}

func TestSetRole_OwnerIsNotRemovableOrDemotable(t *testing.T) {
	store := rbac.NewMemStore()
	svc := rbac.New(store)
	store.CreateUser(context.Background(), rbac.User{ID: "owner1", Role: rbac.RoleOwner})
	otherOwner := rbac.User{ID: "owner2", Role: rbac.RoleOwner}

	if err := svc.SetRole(context.Background(), otherOwner, "owner1", rbac.RoleUser, "demote"); err == nil {
		t.Error("expected demoting an owner to fail")
	}
	if err := svc.DeleteUser(context.Background(), otherOwner, "owner1", "remove"); err == nil {
		t.Error("expected deleting an owner to fail")
	}
}

func TestDeleteUser_CanOnlyRemoveStrictlyLowerRole(t *testing.T) {
	store := rbac.NewMemStore()
	svc := rbac.New(store)
	store.CreateUser(context.Background(), rbac.User{ID: "admin2", Role: rbac.RoleAdmin})
	admin1 := rbac.User{ID: "admin1", Role: rbac.RoleAdmin}

	if err := svc.DeleteUser(context.Background(), admin1, "admin2", "cleanup"); !rbac.IsForbidden(err) {
		t.Errorf("expected peer-level delete to be forbidden, got %v", err)
	}
}

func TestRoleLevel_Ordering(t *testing.T) {
	if rbac.RoleOwner.Level() <= rbac.RoleAdmin.Level() {
		t.Error("expected owner to outrank admin")
	}
	if rbac.RoleAdmin.Level() <= rbac.RoleUser.Level() {
		t.Error("expected admin to outrank user")
	}
	if rbac.RoleUser.Level() <= rbac.RoleRestricted.Level() {
		t.Error("expected user to outrank restricted")
	}
	if rbac.Role("bogus").Level() != 0 {
		t.Error("expected an unknown role to have level 0")
	}
}

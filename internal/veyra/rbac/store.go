package rbac

import "context"

// Store persists users and the audit trail. A concrete SQLite-backed
// implementation lives in internal/veyra/store.
type Store interface {
	CreateUser(ctx context.Context, u User) error
	GetUser(ctx context.Context, id string) (User, bool, error)
	ListUsers(ctx context.Context) ([]User, error)
	SetRole(ctx context.Context, id string, role Role) error
	DeleteUser(ctx context.Context, id string) error
	AppendAudit(ctx context.Context, rec AuditRecord) error
}

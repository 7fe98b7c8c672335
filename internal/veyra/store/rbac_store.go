package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/veyra-ai/veyra/internal/veyra/rbac"
)

// CreateUser implements rbac.Store.
func (s *Store) CreateUser(ctx context.Context, u rbac.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, contact_id, role, created_at) VALUES (?, ?, ?, ?)`,
		u.ID, u.ContactID, string(u.Role), u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("store: create user: %w", err)
	}
	return nil
}

// GetUser implements rbac.Store.
func (s *Store) GetUser(ctx context.Context, id string) (rbac.User, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, contact_id, role, created_at FROM users WHERE id = ?`, id)

	var u rbac.User
	var role string
	err := row.Scan(&u.ID, &u.ContactID, &role, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return rbac.User{}, false, nil
	}
	if err != nil {
		return rbac.User{}, false, fmt.Errorf("store: get user: %w", err)
	}
	u.Role = rbac.Role(role)
	return u, true, nil
}

// ListUsers implements rbac.Store.
func (s *Store) ListUsers(ctx context.Context) ([]rbac.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, contact_id, role, created_at FROM users ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("store: list users: %w", err)
	}
	defer rows.Close()

	var out []rbac.User
	for rows.Next() {
		var u rbac.User
		var role string
		if err := rows.Scan(&u.ID, &u.ContactID, &role, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan user: %w", err)
		}
		u.Role = rbac.Role(role)
		out = append(out, u)
	}
	return out, rows.Err()
}

// SetRole implements rbac.Store.
func (s *Store) SetRole(ctx context.Context, id string, role rbac.Role) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET role = ? WHERE id = ?`, string(role), id)
	if err != nil {
		return fmt.Errorf("store: set role: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store: user %q not found", id)
	}
	return nil
}

// DeleteUser implements rbac.Store.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store: user %q not found", id)
	}
	return nil
}

// AppendAudit implements rbac.Store.
func (s *Store) AppendAudit(ctx context.Context, rec rbac.AuditRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_log (ts, action, target, performed_by, old_role, new_role, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.CreatedAt, rec.Action, rec.Target, rec.PerformedBy,
		nullableString(string(rec.OldRole)), nullableString(string(rec.NewRole)), nullableString(rec.Reason),
	)
	if err != nil {
		return fmt.Errorf("store: append audit: %w", err)
	}
	return nil
}

func nullableString(v string) sql.NullString {
	if v == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/veyra-ai/veyra/internal/veyra/settings"
)

// Get implements settings.Store.
func (s *Store) Get(ctx context.Context, namespace, key string) (settings.Setting, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT value, data_type, updated_at FROM settings WHERE namespace = ? AND key = ?`, namespace, key)

	st := settings.Setting{Namespace: namespace, Key: key}
	var dataType string
	err := row.Scan(&st.Value, &dataType, &st.UpdatedAt)
	if err == sql.ErrNoRows {
		return settings.Setting{}, settings.ErrNotFound
	}
	if err != nil {
		return settings.Setting{}, fmt.Errorf("store: get setting: %w", err)
	}
	st.DataType = settings.DataType(dataType)
	return st, nil
}

// Put implements settings.Store.
func (s *Store) Put(ctx context.Context, st settings.Setting) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (namespace, key, value, data_type, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (namespace, key) DO UPDATE SET
		  value = excluded.value, data_type = excluded.data_type, updated_at = excluded.updated_at`,
		st.Namespace, st.Key, st.Value, string(st.DataType), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("store: put setting: %w", err)
	}
	return nil
}

// Delete implements settings.Store.
func (s *Store) Delete(ctx context.Context, namespace, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM settings WHERE namespace = ? AND key = ?`, namespace, key)
	if err != nil {
		return fmt.Errorf("store: delete setting: %w", err)
	}
	return nil
}

// List implements settings.Store.
func (s *Store) List(ctx context.Context, namespace string) ([]settings.Setting, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, value, data_type, updated_at FROM settings WHERE namespace = ? ORDER BY key`, namespace)
	if err != nil {
		return nil, fmt.Errorf("store: list settings: %w", err)
	}
	defer rows.Close()

	var out []settings.Setting
	for rows.Next() {
		st := settings.Setting{Namespace: namespace}
		var dataType string
		if err := rows.Scan(&st.Key, &st.Value, &dataType, &st.UpdatedAt); err != nil {
			return nil, fmt.Errorf("store: scan setting: %w", err)
		}
		st.DataType = settings.DataType(dataType)
		out = append(out, st)
	}
	return out, rows.Err()
}

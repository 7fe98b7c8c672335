package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/veyra-ai/veyra/internal/veyra/skills/updatewatch"
)

// AppendHistory implements updatewatch.HistoryStore.
func (s *Store) AppendHistory(ctx context.Context, rec updatewatch.UpdateRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO update_history (ts, from_version, to_version, result, error_message)
		VALUES (?, ?, ?, ?, ?)`,
		rec.Timestamp, rec.FromVersion, rec.ToVersion, rec.Result, nullableString(rec.ErrorMessage),
	)
	if err != nil {
		return fmt.Errorf("store: append update history: %w", err)
	}
	return nil
}

// SavePending implements updatewatch.PendingStore. pending_releases is a
// single-row table (id=1): saving replaces whatever was cached before.
func (s *Store) SavePending(ctx context.Context, release updatewatch.Release) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pending_releases (id, version, notes, url, cached_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
		  version = excluded.version, notes = excluded.notes, url = excluded.url, cached_at = excluded.cached_at`,
		release.Version, nullableString(release.Notes), nullableString(release.URL), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("store: save pending release: %w", err)
	}
	return nil
}

// LoadPending implements updatewatch.PendingStore.
func (s *Store) LoadPending(ctx context.Context) (updatewatch.Release, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT version, notes, url FROM pending_releases WHERE id = 1`)

	var release updatewatch.Release
	var notes, url sql.NullString
	err := row.Scan(&release.Version, &notes, &url)
	if err == sql.ErrNoRows {
		return updatewatch.Release{}, false, nil
	}
	if err != nil {
		return updatewatch.Release{}, false, fmt.Errorf("store: load pending release: %w", err)
	}
	release.Notes = notes.String
	release.URL = url.String
	return release, true, nil
}

// ClearPending implements updatewatch.PendingStore.
func (s *Store) ClearPending(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM pending_releases WHERE id = 1`)
	if err != nil {
		return fmt.Errorf("store: clear pending release: %w", err)
	}
	return nil
}

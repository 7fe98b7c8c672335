package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/veyra-ai/veyra/internal/veyra/health"
)

// Record implements health.AuditStore.
func (s *Store) Record(ctx context.Context, action health.HealingAction) error {
	detailsJSON, err := json.Marshal(action.Details)
	if err != nil {
		return fmt.Errorf("store: marshal healing action details: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO healing_actions (ts, action_type, trigger, result, details_json)
		VALUES (?, ?, ?, ?, ?)`,
		action.Timestamp, action.ActionType, action.Trigger, string(action.Result), string(detailsJSON),
	)
	if err != nil {
		return fmt.Errorf("store: record healing action: %w", err)
	}
	return nil
}

// LastRun implements health.AuditStore: it returns the timestamp of the
// most recent *successful* run of actionType, matching the healer's
// cooldown-tracks-last-success semantics.
func (s *Store) LastRun(ctx context.Context, actionType string) (time.Time, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT ts FROM healing_actions
		WHERE action_type = ? AND result = ?
		ORDER BY ts DESC LIMIT 1`, actionType, string(health.ResultSuccess))

	var ts time.Time
	err := row.Scan(&ts)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("store: last run: %w", err)
	}
	return ts, true, nil
}

// SaveSnapshot implements health.SnapshotStore.
func (s *Store) SaveSnapshot(ctx context.Context, snap health.Snapshot) error {
	metricsJSON, err := json.Marshal(snap.Metrics)
	if err != nil {
		return fmt.Errorf("store: marshal snapshot metrics: %w", err)
	}
	anomaliesJSON, err := json.Marshal(snap.ToMapping()["anomalies"])
	if err != nil {
		return fmt.Errorf("store: marshal snapshot anomalies: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (ts, metrics_json, anomalies_json, collection_time_ms)
		VALUES (?, ?, ?, ?)`,
		snap.Timestamp, string(metricsJSON), string(anomaliesJSON), snap.CollectionTimeMs,
	)
	if err != nil {
		return fmt.Errorf("store: save snapshot: %w", err)
	}
	return nil
}

// SnapshotsSince implements health.SnapshotStore. Anomalies are not
// reconstructed from storage — they are analysis output, recomputed fresh
// against the baseline each time, never replayed from a prior run.
func (s *Store) SnapshotsSince(ctx context.Context, since time.Time) ([]health.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ts, metrics_json, collection_time_ms FROM snapshots
		WHERE ts >= ? ORDER BY ts ASC`, since)
	if err != nil {
		return nil, fmt.Errorf("store: query snapshots: %w", err)
	}
	defer rows.Close()

	var out []health.Snapshot
	for rows.Next() {
		var snap health.Snapshot
		var metricsJSON string
		if err := rows.Scan(&snap.Timestamp, &metricsJSON, &snap.CollectionTimeMs); err != nil {
			return nil, fmt.Errorf("store: scan snapshot: %w", err)
		}
		if err := json.Unmarshal([]byte(metricsJSON), &snap.Metrics); err != nil {
			return nil, fmt.Errorf("store: unmarshal snapshot metrics: %w", err)
		}
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate snapshots: %w", err)
	}
	return out, nil
}

// Vacuum implements health.DatabaseCompactor by running SQLite's own
// storage compaction/analyze pass over the whole database file.
func (s *Store) Vacuum(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "VACUUM"); err != nil {
		return fmt.Errorf("store: vacuum: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "ANALYZE"); err != nil {
		return fmt.Errorf("store: analyze: %w", err)
	}
	return nil
}

// SaveDailyReport implements health.SnapshotStore.
func (s *Store) SaveDailyReport(ctx context.Context, report health.DailyReport) error {
	deductionsJSON, err := json.Marshal(report.Deductions)
	if err != nil {
		return fmt.Errorf("store: marshal daily report deductions: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO daily_reports (date, score, deductions_json, snapshot_count, generated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (date) DO UPDATE SET
		  score = excluded.score, deductions_json = excluded.deductions_json,
		  snapshot_count = excluded.snapshot_count, generated_at = excluded.generated_at`,
		report.Date.Format("2006-01-02"), report.Score, string(deductionsJSON), report.SnapshotCount, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("store: save daily report: %w", err)
	}
	return nil
}

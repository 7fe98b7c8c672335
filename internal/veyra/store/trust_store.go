package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/veyra-ai/veyra/internal/veyra/trust"
)

// GetTypeTrust implements trust.Store.
func (s *Store) GetTypeTrust(ctx context.Context, userID string, rt trust.ReplyType) (trust.Score, error) {
	return s.readScore(ctx, "trust_type_scores", "reply_type", userID, string(rt))
}

// GetContactTrust implements trust.Store.
func (s *Store) GetContactTrust(ctx context.Context, userID, contact string) (trust.Score, error) {
	return s.readScore(ctx, "trust_contact_scores", "contact", userID, contact)
}

func (s *Store) readScore(ctx context.Context, table, keyColumn, userID, key string) (trust.Score, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(
		`SELECT value, approvals, rejections, edits, total_interactions
		 FROM %s WHERE user_id = ? AND %s = ?`, table, keyColumn), userID, key)

	var score trust.Score
	err := row.Scan(&score.Value, &score.Approvals, &score.Rejections, &score.Edits, &score.TotalInteractions)
	if err == sql.ErrNoRows {
		return trust.Score{}, nil
	}
	if err != nil {
		return trust.Score{}, fmt.Errorf("store: read %s: %w", table, err)
	}
	return score, nil
}

// ApplyTypeOutcome implements trust.Store.
func (s *Store) ApplyTypeOutcome(ctx context.Context, userID string, rt trust.ReplyType, outcome trust.Outcome) (trust.Score, error) {
	return s.applyOutcome(ctx, "trust_type_scores", "reply_type", userID, string(rt), outcome, trust.Ceiling(rt))
}

// ApplyContactOutcome implements trust.Store.
func (s *Store) ApplyContactOutcome(ctx context.Context, userID, contact string, outcome trust.Outcome) (trust.Score, error) {
	return s.applyOutcome(ctx, "trust_contact_scores", "contact", userID, contact, outcome, trust.GlobalCap)
}

func (s *Store) applyOutcome(ctx context.Context, table, keyColumn, userID, key string, outcome trust.Outcome, ceiling float64) (trust.Score, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return trust.Score{}, fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, fmt.Sprintf(
		`SELECT value, approvals, rejections, edits, total_interactions
		 FROM %s WHERE user_id = ? AND %s = ?`, table, keyColumn), userID, key)

	var current trust.Score
	err = row.Scan(&current.Value, &current.Approvals, &current.Rejections, &current.Edits, &current.TotalInteractions)
	if err != nil && err != sql.ErrNoRows {
		return trust.Score{}, fmt.Errorf("store: read %s for update: %w", table, err)
	}

	next, err := trust.ApplyOutcome(current, outcome, ceiling)
	if err != nil {
		return trust.Score{}, err
	}

	_, err = tx.ExecContext(ctx, fmt.Sprintf(
		`INSERT INTO %s (user_id, %s, value, approvals, rejections, edits, total_interactions, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, %s) DO UPDATE SET
		   value = excluded.value, approvals = excluded.approvals,
		   rejections = excluded.rejections, edits = excluded.edits,
		   total_interactions = excluded.total_interactions, updated_at = excluded.updated_at`,
		table, keyColumn, keyColumn),
		userID, key, next.Value, next.Approvals, next.Rejections, next.Edits, next.TotalInteractions, time.Now(),
	)
	if err != nil {
		return trust.Score{}, fmt.Errorf("store: upsert %s: %w", table, err)
	}

	if err := tx.Commit(); err != nil {
		return trust.Score{}, fmt.Errorf("store: commit %s: %w", table, err)
	}
	return next, nil
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/veyra-ai/veyra/internal/veyra/action"
	"github.com/veyra-ai/veyra/internal/veyra/trust"
)

// GetPolicy implements action.Store.
func (s *Store) GetPolicy(ctx context.Context, userID, domain, act string) (action.Policy, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT mode, trust_score FROM action_policies
		WHERE user_id = ? AND domain = ? AND action = ?`, userID, domain, act)

	p := action.Policy{UserID: userID, Domain: domain, Action: act}
	var mode string
	err := row.Scan(&mode, &p.TrustScore)
	if err == sql.ErrNoRows {
		return action.Policy{}, false, nil
	}
	if err != nil {
		return action.Policy{}, false, fmt.Errorf("store: get policy: %w", err)
	}
	p.Mode = action.Mode(mode)
	return p, true, nil
}

// PutPolicy implements action.Store.
func (s *Store) PutPolicy(ctx context.Context, p action.Policy) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO action_policies (user_id, domain, action, mode, trust_score, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, domain, action) DO UPDATE SET
		  mode = excluded.mode, trust_score = excluded.trust_score, updated_at = excluded.updated_at`,
		p.UserID, p.Domain, p.Action, string(p.Mode), p.TrustScore, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("store: put policy: %w", err)
	}
	return nil
}

// RecordOutcome implements action.Store: it upserts the policy's trust
// score, creating the row in ModeAsk with trust 0 first if absent, matching
// the no-policy default decision the action package itself falls back to.
func (s *Store) RecordOutcome(ctx context.Context, userID, domain, act string, outcome trust.Outcome) (action.Policy, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return action.Policy{}, fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT mode, trust_score FROM action_policies
		WHERE user_id = ? AND domain = ? AND action = ?`, userID, domain, act)

	current := action.Policy{UserID: userID, Domain: domain, Action: act, Mode: action.ModeAsk}
	var mode string
	err = row.Scan(&mode, &current.TrustScore)
	if err != nil && err != sql.ErrNoRows {
		return action.Policy{}, fmt.Errorf("store: read policy for update: %w", err)
	}
	if err == nil {
		current.Mode = action.Mode(mode)
	}

	next, err := action.ApplyOutcome(current, outcome)
	if err != nil {
		return action.Policy{}, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO action_policies (user_id, domain, action, mode, trust_score, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, domain, action) DO UPDATE SET
		  trust_score = excluded.trust_score, updated_at = excluded.updated_at`,
		userID, domain, act, string(next.Mode), next.TrustScore, time.Now(),
	)
	if err != nil {
		return action.Policy{}, fmt.Errorf("store: upsert policy outcome: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return action.Policy{}, fmt.Errorf("store: commit policy outcome: %w", err)
	}
	return next, nil
}

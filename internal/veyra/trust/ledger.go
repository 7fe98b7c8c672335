package trust

import "context"

// DefaultThreshold is the auto-send confidence/trust bar used when callers
// don't supply their own.
const DefaultThreshold = 0.85

// Ledger is the trust evaluation surface consumed by the action controller
// and the skills that draft replies. It wraps a Store with the pure
// arithmetic defined by the fixed ceiling and delta tables.
type Ledger struct {
	store Store
}

// NewLedger wraps store in a Ledger.
func NewLedger(store Store) *Ledger {
	return &Ledger{store: store}
}

// GetTypeTrust returns the current by-reply-type score for userID.
func (l *Ledger) GetTypeTrust(ctx context.Context, userID string, rt ReplyType) (Score, error) {
	return l.store.GetTypeTrust(ctx, userID, rt)
}

// GetContactTrust returns the current by-contact score for userID.
func (l *Ledger) GetContactTrust(ctx context.Context, userID, contact string) (Score, error) {
	return l.store.GetContactTrust(ctx, userID, contact)
}

// GetEffectiveTrust is the minimum of the two ledgers and the reply type's
// own ceiling — the weakest of the three bounds governs.
func (l *Ledger) GetEffectiveTrust(ctx context.Context, userID, contact string, rt ReplyType) (float64, error) {
	typeScore, err := l.store.GetTypeTrust(ctx, userID, rt)
	if err != nil {
		return 0, err
	}
	contactScore, err := l.store.GetContactTrust(ctx, userID, contact)
	if err != nil {
		return 0, err
	}
	return min3(typeScore.Value, contactScore.Value, Ceiling(rt)), nil
}

// ShouldAutoSend reports whether a drafted reply may be sent without human
// review: both the effective trust and the model's own confidence must clear
// threshold.
func (l *Ledger) ShouldAutoSend(ctx context.Context, userID, contact string, rt ReplyType, confidence, threshold float64) (bool, error) {
	effective, err := l.GetEffectiveTrust(ctx, userID, contact, rt)
	if err != nil {
		return false, err
	}
	return effective >= threshold && confidence >= threshold, nil
}

// RecordFeedback folds outcome into both ledgers and returns the updated
// scores. The two updates happen independently; a failure on one does not
// roll back the other, matching the two-ledger design (they are separate
// rows, not one transaction spanning both tables).
func (l *Ledger) RecordFeedback(ctx context.Context, userID, contact string, rt ReplyType, outcome Outcome) (newType, newContact Score, err error) {
	if _, err := Delta(outcome); err != nil {
		return Score{}, Score{}, err
	}

	newType, err = l.store.ApplyTypeOutcome(ctx, userID, rt, outcome)
	if err != nil {
		return Score{}, Score{}, err
	}
	newContact, err = l.store.ApplyContactOutcome(ctx, userID, contact, outcome)
	if err != nil {
		return Score{}, Score{}, err
	}
	return newType, newContact, nil
}

func min3(a, b, c float64) float64 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

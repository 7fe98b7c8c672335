package trust

import "context"

// Store persists the two independent ledgers. A concrete implementation
// (backed by SQLite) lives alongside the rest of the persistence layer;
// Store is declared here, next to its consumer.
type Store interface {
	// GetTypeTrust returns the current score for (userID, rt), or the zero
	// Score if no row exists yet.
	GetTypeTrust(ctx context.Context, userID string, rt ReplyType) (Score, error)

	// GetContactTrust returns the current score for (userID, contact), or the
	// zero Score if no row exists yet.
	GetContactTrust(ctx context.Context, userID, contact string) (Score, error)

	// ApplyTypeOutcome folds outcome into the (userID, rt) row inside a
	// single transaction and returns the updated Score.
	ApplyTypeOutcome(ctx context.Context, userID string, rt ReplyType, outcome Outcome) (Score, error)

	// ApplyContactOutcome folds outcome into the (userID, contact) row inside
	// a single transaction and returns the updated Score.
	ApplyContactOutcome(ctx context.Context, userID, contact string, outcome Outcome) (Score, error)
}

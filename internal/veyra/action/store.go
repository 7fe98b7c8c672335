package action

import (
	"context"

	"github.com/veyra-ai/veyra/internal/veyra/trust"
)

// Store persists policies keyed by (userID, domain, action). A concrete
// SQLite-backed implementation lives in internal/veyra/store.
type Store interface {
	// GetPolicy returns the policy for the triple, or ok=false if none
	// exists yet.
	GetPolicy(ctx context.Context, userID, domain, action string) (p Policy, ok bool, err error)

	// PutPolicy upserts p in full (used by RBAC-driven policy configuration).
	PutPolicy(ctx context.Context, p Policy) error

	// RecordOutcome upserts the policy's trust score after folding in
	// outcome's fixed delta, creating the row with trust=0 first if absent.
	RecordOutcome(ctx context.Context, userID, domain, action string, outcome trust.Outcome) (Policy, error)
}

package action

import (
	"context"

	"github.com/veyra-ai/veyra/internal/veyra/trust"
)

// Controller is the action-gating entry point: given (user, domain, action),
// it looks up the stored policy and evaluates it, falling back to the
// safest decision when none exists.
type Controller struct {
	store Store
}

// NewController wraps store in a Controller.
func NewController(store Store) *Controller {
	return &Controller{store: store}
}

// Decide looks up the policy for (userID, domain, action) and evaluates it.
func (c *Controller) Decide(ctx context.Context, userID, domain, action string) (Decision, error) {
	p, ok, err := c.store.GetPolicy(ctx, userID, domain, action)
	if err != nil {
		return Decision{}, err
	}
	if !ok {
		return noPolicyDecision(), nil
	}
	return Evaluate(p), nil
}

// RecordOutcome folds outcome into the policy's trust score.
func (c *Controller) RecordOutcome(ctx context.Context, userID, domain, action string, outcome trust.Outcome) (Policy, error) {
	return c.store.RecordOutcome(ctx, userID, domain, action, outcome)
}

// SetPolicy installs or replaces the policy for (userID, domain, action).
func (c *Controller) SetPolicy(ctx context.Context, p Policy) error {
	return c.store.PutPolicy(ctx, p)
}

package action

import (
	"context"
	"sync"

	"github.com/veyra-ai/veyra/internal/veyra/trust"
)

// MemStore is an in-memory Store, safe for concurrent use.
type MemStore struct {
	mu       sync.Mutex
	policies map[string]Policy
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{policies: make(map[string]Policy)}
}

func policyKey(userID, domain, action string) string {
	return userID + "\x00" + domain + "\x00" + action
}

func (m *MemStore) GetPolicy(ctx context.Context, userID, domain, action string) (Policy, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.policies[policyKey(userID, domain, action)]
	return p, ok, nil
}

func (m *MemStore) PutPolicy(ctx context.Context, p Policy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.policies[policyKey(p.UserID, p.Domain, p.Action)] = p
	return nil
}

func (m *MemStore) RecordOutcome(ctx context.Context, userID, domain, action string, outcome trust.Outcome) (Policy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := policyKey(userID, domain, action)
	p, ok := m.policies[key]
	if !ok {
		p = Policy{UserID: userID, Domain: domain, Action: action, Mode: ModeAsk}
	}
	next, err := ApplyOutcome(p, outcome)
	if err != nil {
		return Policy{}, err
	}
	m.policies[key] = next
	return next, nil
}

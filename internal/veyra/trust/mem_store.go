package trust

import (
	"context"
	"sync"
)

// MemStore is an in-memory Store, safe for concurrent use. It backs the
// ledger's own tests and is reused by other packages that need a trust
// dependency without a database.
type MemStore struct {
	mu        sync.Mutex
	byType    map[string]Score
	byContact map[string]Score
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		byType:    make(map[string]Score),
		byContact: make(map[string]Score),
	}
}

func typeKey(userID string, rt ReplyType) string {
	return userID + "\x00" + string(rt)
}

func contactKey(userID, contact string) string {
	return userID + "\x00" + contact
}

func (m *MemStore) GetTypeTrust(ctx context.Context, userID string, rt ReplyType) (Score, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byType[typeKey(userID, rt)], nil
}

func (m *MemStore) GetContactTrust(ctx context.Context, userID, contact string) (Score, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byContact[contactKey(userID, contact)], nil
}

func (m *MemStore) ApplyTypeOutcome(ctx context.Context, userID string, rt ReplyType, outcome Outcome) (Score, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := typeKey(userID, rt)
	next, err := ApplyOutcome(m.byType[key], outcome, Ceiling(rt))
	if err != nil {
		return Score{}, err
	}
	m.byType[key] = next
	return next, nil
}

func (m *MemStore) ApplyContactOutcome(ctx context.Context, userID, contact string, outcome Outcome) (Score, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := contactKey(userID, contact)
	next, err := ApplyOutcome(m.byContact[key], outcome, GlobalCap)
	if err != nil {
		return Score{}, err
	}
	m.byContact[key] = next
	return next, nil
}

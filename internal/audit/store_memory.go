package audit

import (
	"context"
	"sync"
)

type InMemoryStore struct {
	mu      sync.RWMutex
	changes map[string][]StatusChange
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{changes: make(map[string][]StatusChange)}
}

func (s *InMemoryStore) Append(_ context.Context, change StatusChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changes[change.UserID] = append(s.changes[change.UserID], change)
	return nil
}

func (s *InMemoryStore) ListByUser(_ context.Context, userID string) ([]StatusChange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]StatusChange{}, s.changes[userID]...), nil
}

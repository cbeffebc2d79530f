package otp

import (
	"context"
	"sync"

	"docgate/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu         sync.RWMutex
	challenges map[string]Challenge
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{challenges: make(map[string]Challenge)}
}

func (s *InMemoryStore) Put(_ context.Context, userID string, challenge Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges[userID] = challenge
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, userID string) (*Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	challenge, ok := s.challenges[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &challenge, nil
}

func (s *InMemoryStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.challenges, userID)
	return nil
}

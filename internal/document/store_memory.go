package document

import (
	"context"
	"sort"
	"sync"
	"time"

	"docgate/pkg/platform/sentinel"
)

// InMemoryStore is the default store for development and tests.
type InMemoryStore struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{docs: make(map[string]*Document)}
}

func (s *InMemoryStore) Create(_ context.Context, doc *Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *doc
	s.docs[clone.ID] = &clone
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *doc
	return &clone, nil
}

func (s *InMemoryStore) ListByUser(_ context.Context, userID string) ([]*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Document
	for _, doc := range s.docs {
		if doc.UserID == userID {
			clone := *doc
			out = append(out, &clone)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *InMemoryStore) ListAll(_ context.Context) ([]*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Document, 0, len(s.docs))
	for _, doc := range s.docs {
		clone := *doc
		out = append(out, &clone)
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *InMemoryStore) UpdateVerification(_ context.Context, id string, status VerificationStatus, result VerificationResult, updatedAt time.Time) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	doc.VerificationStatus = status
	doc.VerificationResult = result
	doc.UpdatedAt = updatedAt
	clone := *doc
	return &clone, nil
}

func (s *InMemoryStore) ApplyReview(_ context.Context, id string, status VerificationStatus, review AdminReview, updatedAt time.Time) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	doc.VerificationStatus = status
	doc.AdminReview = review
	doc.UpdatedAt = updatedAt
	clone := *doc
	return &clone, nil
}

func (s *InMemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

func sortNewestFirst(docs []*Document) {
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].UploadDate.After(docs[j].UploadDate)
	})
}

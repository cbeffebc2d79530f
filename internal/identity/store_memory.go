package identity

import (
	"context"
	"sort"
	"sync"

	"docgate/pkg/platform/sentinel"
)

// InMemoryStore is the default store for development and tests. Uniqueness
// checks mirror the postgres implementation: email is matched lowercased,
// phone on cleaned digits.
type InMemoryStore struct {
	mu      sync.RWMutex
	users   map[string]*User // keyed by ID
	byEmail map[string]string
	byPhone map[string]string // cleaned digits -> ID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		users:   make(map[string]*User),
		byEmail: make(map[string]string),
		byPhone: make(map[string]string),
	}
}

func (s *InMemoryStore) Create(_ context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := NormalizeEmail(user.Email)
	if _, exists := s.byEmail[email]; exists {
		return sentinel.ErrDuplicateEmail
	}
	digits := PhoneDigits(user.PhoneNumber)
	if digits != "" {
		if _, exists := s.byPhone[digits]; exists {
			return sentinel.ErrDuplicatePhone
		}
	}

	clone := cloneUser(user)
	clone.Email = email
	s.users[clone.ID] = clone
	s.byEmail[email] = clone.ID
	if digits != "" {
		s.byPhone[digits] = clone.ID
	}
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneUser(user), nil
}

func (s *InMemoryStore) FindByEmail(_ context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[NormalizeEmail(email)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneUser(s.users[id]), nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, cloneUser(u))
	}
	sortByCreated(out)
	return out, nil
}

func (s *InMemoryStore) ListByStatus(_ context.Context, status Status) ([]*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*User
	for _, u := range s.users {
		if u.Status == status {
			out = append(out, cloneUser(u))
		}
	}
	sortByCreated(out)
	return out, nil
}

func (s *InMemoryStore) UpdateStatus(_ context.Context, id string, status Status, rejectionReason string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	user.Status = status
	user.RejectionReason = rejectionReason
	return cloneUser(user), nil
}

func (s *InMemoryStore) AppendResult(_ context.Context, id string, record ResultRecord) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	user.Results = append(user.Results, record)
	return cloneUser(user), nil
}

func cloneUser(u *User) *User {
	clone := *u
	clone.Results = append([]ResultRecord(nil), u.Results...)
	return &clone
}

func sortByCreated(users []*User) {
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
}

// InMemoryAdminStore keeps direct admin accounts in memory.
type InMemoryAdminStore struct {
	mu     sync.RWMutex
	admins map[string]*Admin // keyed by lowercased email
}

func NewInMemoryAdminStore() *InMemoryAdminStore {
	return &InMemoryAdminStore{admins: make(map[string]*Admin)}
}

func (s *InMemoryAdminStore) Create(_ context.Context, admin *Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := NormalizeEmail(admin.Email)
	if _, exists := s.admins[email]; exists {
		return sentinel.ErrDuplicateEmail
	}
	clone := *admin
	clone.Email = email
	s.admins[email] = &clone
	return nil
}

func (s *InMemoryAdminStore) FindByEmail(_ context.Context, email string) (*Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	admin, ok := s.admins[NormalizeEmail(email)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *admin
	return &clone, nil
}

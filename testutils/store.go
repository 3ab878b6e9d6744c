package testutils

import (
	"context"
	"slices"
	"sync"

	"callward/store"
)

// InMemoryStore is a map-backed Store for tests.
type InMemoryStore struct {
	mu    sync.RWMutex
	lists map[store.List]map[string]struct{}

	errToReturn error
	putCalls    int
}

var _ store.Store = (*InMemoryStore)(nil)

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{lists: make(map[store.List]map[string]struct{})}
}

// SetError makes every subsequent call fail with err.
func (s *InMemoryStore) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errToReturn = err
}

// PutCalls returns how many times Put has been invoked.
func (s *InMemoryStore) PutCalls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.putCalls
}

func (s *InMemoryStore) Contains(ctx context.Context, list store.List, value string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.errToReturn != nil {
		return false, s.errToReturn
	}
	_, ok := s.lists[list][value]
	return ok, nil
}

func (s *InMemoryStore) Put(ctx context.Context, list store.List, value string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putCalls++
	if s.errToReturn != nil {
		return false, s.errToReturn
	}
	if s.lists[list] == nil {
		s.lists[list] = make(map[string]struct{})
	}
	if _, ok := s.lists[list][value]; ok {
		return false, nil
	}
	s.lists[list][value] = struct{}{}
	return true, nil
}

func (s *InMemoryStore) Delete(ctx context.Context, list store.List, value string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.errToReturn != nil {
		return false, s.errToReturn
	}
	if _, ok := s.lists[list][value]; !ok {
		return false, nil
	}
	delete(s.lists[list], value)
	return true, nil
}

func (s *InMemoryStore) Entries(ctx context.Context, list store.List) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.errToReturn != nil {
		return nil, s.errToReturn
	}
	var entries []string
	for v := range s.lists[list] {
		entries = append(entries, v)
	}
	slices.Sort(entries)
	return entries, nil
}

func (s *InMemoryStore) Close() error { return nil }

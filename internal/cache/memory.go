package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]Entry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore creates an empty in-process store. A zero ttl uses DefaultTTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		entries: make(map[string]Entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns a copy of the entry under key, removing it if it has expired.
func (s *MemoryStore) Get(_ context.Context, key string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	if entry.Expired(s.now(), s.ttl) {
		delete(s.entries, key)
		return nil, nil
	}
	return &entry, nil
}

// Set stores a copy of entry under key.
func (s *MemoryStore) Set(_ context.Context, key string, entry *Entry) error {
	if entry == nil {
		return &Error{Key: key, Message: "nil entry"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = *entry
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

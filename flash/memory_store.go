package flash

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	messages []string
	expires  time.Time
}

// MemoryStore keeps flash messages in process. Suitable for a single instance.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Add(_ context.Context, token, key, msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictExpired()

	k := token + ":" + key
	e := s.entries[k]
	e.messages = append(e.messages, msg)
	e.expires = s.now().Add(messageTTL)
	s.entries[k] = e
	return nil
}

func (s *MemoryStore) Pop(_ context.Context, token, key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := token + ":" + key
	e, ok := s.entries[k]
	delete(s.entries, k)
	if !ok || s.now().After(e.expires) {
		return nil, nil
	}
	return e.messages, nil
}

func (s *MemoryStore) evictExpired() {
	now := s.now()
	for k, e := range s.entries {
		if now.After(e.expires) {
			delete(s.entries, k)
		}
	}
}

// ABOUTME: In-memory Store used by tests and by the memory-only store mode.
// ABOUTME: Safe for concurrent use; can be switched into a failing mode to simulate an unavailable backend.
package kvstore

import (
	"context"
	"errors"
	"sync"
)

// errInjected is returned by a MemoryStore whose failure mode is enabled.
var errInjected = errors.New("injected failure")

// MemoryStore keeps values in a map.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
	writes map[string]int
	fail   bool
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string]string),
		writes: make(map[string]int),
	}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, unavailable("get", key, err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fail {
		return "", false, unavailable("get", key, errInjected)
	}
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return unavailable("set", key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return unavailable("set", key, errInjected)
	}
	s.values[key] = value
	s.writes[key]++
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// SetFailing makes every subsequent Get and Set fail until turned off.
func (s *MemoryStore) SetFailing(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = fail
}

// Writes reports how many successful Sets a key has received.
func (s *MemoryStore) Writes(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes[key]
}

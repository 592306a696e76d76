package cache

import (
	"context"
	"sync"
	"time"
)

// sweepInterval bounds how often a write scans the whole map for expired entries.
const sweepInterval = time.Minute

type entry struct {
	value     string
	expiresAt time.Time
}

// MemoryStore keeps the same contract as RedisStore inside one process. It is used when no
// redis address is configured, so a single instance still honours logout and idempotency.
type MemoryStore struct {
	mu        sync.Mutex
	entries   map[string]entry
	now       func() time.Time
	lastSweep time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

func (s *MemoryStore) get(key string) (string, bool) {
	e, ok := s.entries[key]
	if !ok {
		return "", false
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, key)
		return "", false
	}

	return e.value, true
}

// sweep drops expired entries that are never read again. Callers hold mu.
func (s *MemoryStore) sweep() {
	now := s.now()
	if now.Sub(s.lastSweep) < sweepInterval {
		return
	}
	s.lastSweep = now

	for key, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, key)
		}
	}
}

func (s *MemoryStore) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if tokenID == "" {
		return ErrEmptyKey
	}
	if ttl <= 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep()
	s.entries[revokedPrefix+tokenID] = entry{value: "1", expiresAt: s.now().Add(ttl)}

	return nil
}

func (s *MemoryStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.get(revokedPrefix + tokenID)

	return ok, nil
}

func (s *MemoryStore) Reserve(_ context.Context, key, value string, ttl time.Duration) (string, bool, error) {
	if key == "" {
		return "", false, ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep()
	if existing, ok := s.get(idempotencyPrefix + key); ok {
		return existing, false, nil
	}
	s.entries[idempotencyPrefix+key] = entry{value: value, expiresAt: s.now().Add(ttl)}

	return value, true, nil
}

func (s *MemoryStore) Complete(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[idempotencyPrefix+key] = entry{value: value, expiresAt: s.now().Add(ttl)}

	return nil
}

func (s *MemoryStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, idempotencyPrefix+key)

	return nil
}

package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a process-local Store for development and tests.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]Session
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session), now: time.Now}
}

func (m *MemoryStore) Save(_ context.Context, s *Session, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := *s
	rec.ExpiresAt = m.now().Add(ttl)
	m.sessions[s.Key] = rec
	s.ExpiresAt = rec.ExpiresAt
	return nil
}

func (m *MemoryStore) Get(_ context.Context, key string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.sessions[key]
	if !ok {
		return nil, ErrNotFound
	}
	if !m.now().Before(rec.ExpiresAt) {
		delete(m.sessions, key)
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (m *MemoryStore) Touch(_ context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.sessions[key]
	if !ok || !m.now().Before(rec.ExpiresAt) {
		return ErrNotFound
	}
	rec.ExpiresAt = m.now().Add(ttl)
	m.sessions[key] = rec
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, key)
	return nil
}

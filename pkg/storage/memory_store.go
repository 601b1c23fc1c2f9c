package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/polisai/archwise/pkg/domain"
)

// MemorySessionStore is an in-memory implementation of SessionStore.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
	now      func() time.Time
}

// NewMemorySessionStore creates a new MemorySessionStore.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]*domain.Session),
		now:      time.Now,
	}
}

// Create stores a new session with a random id.
func (s *MemorySessionStore) Create(_ context.Context, problem domain.ProblemDescription, cfg domain.ProjectConfig) (*domain.Session, error) {
	now := s.now().UTC()
	session := &domain.Session{
		ID:        uuid.New().String(),
		Problem:   problem,
		Config:    cfg,
		CreatedAt: now,
		UpdatedAt: now,
	}
	session = session.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return session.Clone(), nil
}

// Get returns a copy of the session.
func (s *MemorySessionStore) Get(_ context.Context, id string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	return session.Clone(), nil
}

// Update applies fn to a working copy and stores it when fn succeeds.
func (s *MemorySessionStore) Update(_ context.Context, id string, fn func(*domain.Session) error) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}

	working := current.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	working.ID = current.ID
	working.CreatedAt = current.CreatedAt
	working.UpdatedAt = s.now().UTC()

	s.sessions[id] = working
	return working.Clone(), nil
}

// Delete removes the session.
func (s *MemorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	delete(s.sessions, id)
	return nil
}

// Len returns the number of live sessions.
func (s *MemorySessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// StartCleanup runs a ticker that removes sessions idle for longer than ttl.
// It stops when ctx is done.
func (s *MemorySessionStore) StartCleanup(ctx context.Context, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.cleanup(ttl)
			}
		}
	}()
}

func (s *MemorySessionStore) cleanup(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, session := range s.sessions {
		if now.Sub(session.UpdatedAt) > ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Close is a no-op for memory store.
func (s *MemorySessionStore) Close() error {
	return nil
}

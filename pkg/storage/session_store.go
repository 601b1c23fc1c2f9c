// Package storage keeps wizard sessions. Sessions are ephemeral: they live in
// memory for a bounded idle time and are never persisted.
package storage

import (
	"context"
	"time"

	"github.com/polisai/archwise/pkg/domain"
)

// SessionStore exposes operations on wizard sessions. Implementations return
// copies, so callers may modify what they get without affecting the store.
type SessionStore interface {
	Create(ctx context.Context, problem domain.ProblemDescription, cfg domain.ProjectConfig) (*domain.Session, error)
	Get(ctx context.Context, id string) (*domain.Session, error)
	// Update applies fn to the stored session under the store lock. If fn
	// returns an error the session is left untouched.
	Update(ctx context.Context, id string, fn func(*domain.Session) error) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
	StartCleanup(ctx context.Context, interval, ttl time.Duration)
	Close() error
}

// Package session keeps server-side login sessions keyed by an opaque id.
package session

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("session not found")

type Session struct {
	Key       string    `json:"key"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Keys lists the populated fields, as shown in authentication diagnostics.
func (s *Session) Keys() []string {
	if s == nil {
		return []string{}
	}
	return []string{"user_id", "username", "role"}
}

// Store maps a session key to its record. Implementations drop records once
// their ttl passes; Touch restarts the ttl.
type Store interface {
	Save(ctx context.Context, s *Session, ttl time.Duration) error
	Get(ctx context.Context, key string) (*Session, error)
	Touch(ctx context.Context, key string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

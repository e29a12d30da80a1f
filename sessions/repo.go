package sessions

import (
	"context"
	"time"
)

// Store keeps pending authorizations and sessions.
// Implementations must be safe for concurrent use.
type Store interface {
	PutPending(ctx context.Context, p *Pending, ttl time.Duration) error
	// GetPending returns nil, nil when the record is absent or has outlived its ttl.
	GetPending(ctx context.Context, id string) (*Pending, error)
	// DeletePending reports whether this call removed the record. Only one caller can win.
	DeletePending(ctx context.Context, id string) (bool, error)

	PutSession(ctx context.Context, s *Session, ttl time.Duration) error
	// GetSession returns nil, nil when the session is absent or expired.
	GetSession(ctx context.Context, id string) (*Session, error)
	// UpdateSession applies fn to the stored session as a single read-modify-write.
	// It returns errors.ErrNotFound when the session is gone.
	UpdateSession(ctx context.Context, id string, fn func(*Session) error) error
	DeleteSession(ctx context.Context, id string) error
	// FindSession returns the first session matching match, or nil.
	FindSession(ctx context.Context, match func(*Session) bool) (*Session, error)
}

package sessions

import (
	"context"
	"errors"
	"sync"
	"time"

	bfferrors "github.com/jrsteele09/go-oidc-bff/internal/errors"
	"github.com/rs/zerolog/log"
)

type pendingEntry struct {
	pending   Pending
	expiresAt time.Time
}

type sessionEntry struct {
	session   *Session
	expiresAt time.Time
}

// InMemoryStore is a thread-safe in-memory implementation of Store.
// Expired records are invisible on read and removed by Sweep.
type InMemoryStore struct {
	mu       sync.RWMutex
	pending  map[string]pendingEntry
	sessions map[string]sessionEntry
}

var _ Store = (*InMemoryStore)(nil)

// NewInMemoryStore creates an empty store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		pending:  make(map[string]pendingEntry),
		sessions: make(map[string]sessionEntry),
	}
}

func (r *InMemoryStore) PutPending(_ context.Context, p *Pending, ttl time.Duration) error {
	if p == nil {
		return errors.New("pending cannot be nil")
	}
	if p.ID == "" {
		return errors.New("pending id cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending[p.ID] = pendingEntry{pending: *p, expiresAt: NowTimeFunc().Add(ttl)}
	return nil
}

func (r *InMemoryStore) GetPending(_ context.Context, id string) (*Pending, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.pending[id]
	if !ok || !NowTimeFunc().Before(e.expiresAt) {
		return nil, nil
	}
	p := e.pending
	return &p, nil
}

func (r *InMemoryStore) DeletePending(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.pending[id]
	if !ok {
		return false, nil
	}
	delete(r.pending, id)
	return NowTimeFunc().Before(e.expiresAt), nil
}

func (r *InMemoryStore) PutSession(_ context.Context, s *Session, ttl time.Duration) error {
	if s == nil {
		return errors.New("session cannot be nil")
	}
	if s.ID == "" {
		return errors.New("session id cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = sessionEntry{session: s.Clone(), expiresAt: NowTimeFunc().Add(ttl)}
	return nil
}

func (r *InMemoryStore) GetSession(_ context.Context, id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.sessions[id]
	if !ok || !NowTimeFunc().Before(e.expiresAt) {
		return nil, nil
	}
	return e.session.Clone(), nil
}

func (r *InMemoryStore) UpdateSession(_ context.Context, id string, fn func(*Session) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok || !NowTimeFunc().Before(e.expiresAt) {
		return bfferrors.Wrapf(bfferrors.ErrNotFound, "session %s", id)
	}
	updated := e.session.Clone()
	if err := fn(updated); err != nil {
		return err
	}
	updated.ID = id
	e.session = updated
	r.sessions[id] = e
	return nil
}

func (r *InMemoryStore) DeleteSession(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

func (r *InMemoryStore) FindSession(_ context.Context, match func(*Session) bool) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := NowTimeFunc()
	for _, e := range r.sessions {
		if !now.Before(e.expiresAt) {
			continue
		}
		if c := e.session.Clone(); match(c) {
			return c, nil
		}
	}
	return nil, nil
}

// Sweep removes every expired record and returns how many were evicted.
func (r *InMemoryStore) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := NowTimeFunc()
	evicted := 0
	for id, e := range r.pending {
		if !now.Before(e.expiresAt) {
			delete(r.pending, id)
			evicted++
		}
	}
	for id, e := range r.sessions {
		if !now.Before(e.expiresAt) {
			delete(r.sessions, id)
			evicted++
		}
	}
	return evicted
}

// StartSweeper runs Sweep every interval until ctx is cancelled.
func (r *InMemoryStore) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := r.Sweep(); n > 0 {
					log.Debug().Int("evicted", n).Msg("swept expired session records")
				}
			}
		}
	}()
}

// Len returns the number of records held, expired or not.
func (r *InMemoryStore) Len() (pending, sessions int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pending), len(r.sessions)
}

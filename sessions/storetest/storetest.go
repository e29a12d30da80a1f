// Package storetest holds behaviour checks shared by every sessions.Store implementation.
package storetest

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/go-oidc-bff/internal/errors"
	"github.com/jrsteele09/go-oidc-bff/sessions"
	"github.com/stretchr/testify/require"
)

// Run exercises store behaviour that does not depend on the passage of time.
func Run(t *testing.T, newStore func(t *testing.T) sessions.Store) {
	ctx := context.Background()

	t.Run("pending round trip", func(t *testing.T) {
		store := newStore(t)
		p := &sessions.Pending{ID: "p1", CodeVerifier: "v1", State: "s1", CreatedAt: time.Unix(100, 0).UTC()}
		require.NoError(t, store.PutPending(ctx, p, time.Minute))

		got, err := store.GetPending(ctx, "p1")
		require.NoError(t, err)
		require.Equal(t, p.CodeVerifier, got.CodeVerifier)
		require.Equal(t, p.State, got.State)
		require.True(t, p.CreatedAt.Equal(got.CreatedAt))

		missing, err := store.GetPending(ctx, "nope")
		require.NoError(t, err)
		require.Nil(t, missing)
	})

	t.Run("pending is single use", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.PutPending(ctx, &sessions.Pending{ID: "p1", State: "s"}, time.Minute))

		var wins atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				removed, err := store.DeletePending(ctx, "p1")
				if err != nil {
					t.Error(err)
					return
				}
				if removed {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()
		require.Equal(t, int32(1), wins.Load())

		got, err := store.GetPending(ctx, "p1")
		require.NoError(t, err)
		require.Nil(t, got)
	})

	t.Run("session round trip", func(t *testing.T) {
		store := newStore(t)
		s := &sessions.Session{
			ID:        "s1",
			Claims:    map[string]any{"sub": "u1", "email": "a@example.com"},
			Tokens:    sessions.TokenSet{AccessToken: "at", RefreshToken: "rt"},
			CSRFToken: "csrf",
		}
		require.NoError(t, store.PutSession(ctx, s, time.Hour))

		got, err := store.GetSession(ctx, "s1")
		require.NoError(t, err)
		require.Equal(t, "u1", got.Subject())
		require.Equal(t, "at", got.Tokens.AccessToken)
		require.Equal(t, "csrf", got.CSRFToken)

		got.Claims["sub"] = "mutated"
		again, err := store.GetSession(ctx, "s1")
		require.NoError(t, err)
		require.Equal(t, "u1", again.Subject())
	})

	t.Run("update session", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.PutSession(ctx, &sessions.Session{ID: "s1", Tokens: sessions.TokenSet{AccessToken: "old"}}, time.Hour))

		err := store.UpdateSession(ctx, "s1", func(s *sessions.Session) error {
			s.Tokens.AccessToken = "new"
			return nil
		})
		require.NoError(t, err)

		got, err := store.GetSession(ctx, "s1")
		require.NoError(t, err)
		require.Equal(t, "new", got.Tokens.AccessToken)

		err = store.UpdateSession(ctx, "missing", func(*sessions.Session) error { return nil })
		require.True(t, errors.Is(err, errors.ErrNotFound))
	})

	t.Run("update session fn error leaves record", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.PutSession(ctx, &sessions.Session{ID: "s1", Tokens: sessions.TokenSet{AccessToken: "old"}}, time.Hour))

		err := store.UpdateSession(ctx, "s1", func(s *sessions.Session) error {
			s.Tokens.AccessToken = "half-written"
			return errors.ErrInternal
		})
		require.ErrorIs(t, err, errors.ErrInternal)

		got, err := store.GetSession(ctx, "s1")
		require.NoError(t, err)
		require.Equal(t, "old", got.Tokens.AccessToken)
	})

	t.Run("delete and find session", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.PutSession(ctx, &sessions.Session{ID: "s1", Claims: map[string]any{"sub": "alice"}}, time.Hour))
		require.NoError(t, store.PutSession(ctx, &sessions.Session{ID: "s2", Claims: map[string]any{"sub": "bob"}}, time.Hour))

		found, err := store.FindSession(ctx, func(s *sessions.Session) bool { return s.Subject() == "bob" })
		require.NoError(t, err)
		require.Equal(t, "s2", found.ID)

		require.NoError(t, store.DeleteSession(ctx, "s2"))
		require.NoError(t, store.DeleteSession(ctx, "s2"))

		found, err = store.FindSession(ctx, func(s *sessions.Session) bool { return s.Subject() == "bob" })
		require.NoError(t, err)
		require.Nil(t, found)

		got, err := store.GetSession(ctx, "s2")
		require.NoError(t, err)
		require.Nil(t, got)
	})
}

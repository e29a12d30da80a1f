// Package redisstore keeps pending authorizations and sessions in Redis so that
// several gateway instances can share them.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bfferrors "github.com/jrsteele09/go-oidc-bff/internal/errors"
	"github.com/jrsteele09/go-oidc-bff/sessions"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	pendingKeyPart = "pending:"
	sessionKeyPart = "session:"

	// updateRetries bounds optimistic retries when a watched session changes underneath us.
	updateRetries = 5
	scanCount     = 100
)

// Options configures the Redis connection.
type Options struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// Store implements sessions.Store on Redis. Record lifetime is delegated to key expiry.
type Store struct {
	client    redis.UniversalClient
	keyPrefix string
}

var _ sessions.Store = (*Store)(nil)

// New connects to Redis and checks the connection.
func New(ctx context.Context, opts Options) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}
	return NewWithClient(client, opts.KeyPrefix), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client redis.UniversalClient, keyPrefix string) *Store {
	return &Store{client: client, keyPrefix: keyPrefix}
}

// Health checks Redis connectivity.
func (s *Store) Health(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}

// Close closes the Redis client connection.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) pendingKey(id string) string { return s.keyPrefix + pendingKeyPart + id }
func (s *Store) sessionKey(id string) string { return s.keyPrefix + sessionKeyPart + id }

func (s *Store) PutPending(ctx context.Context, p *sessions.Pending, ttl time.Duration) error {
	if p == nil || p.ID == "" {
		return errors.New("pending id cannot be empty")
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal pending: %w", err)
	}
	return s.client.Set(ctx, s.pendingKey(p.ID), data, ttl).Err()
}

func (s *Store) GetPending(ctx context.Context, id string) (*sessions.Pending, error) {
	data, err := s.client.Get(ctx, s.pendingKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get pending: %w", err)
	}
	var p sessions.Pending
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pending: %w", err)
	}
	return &p, nil
}

// DeletePending relies on DEL returning the number of keys removed, which is atomic in Redis.
func (s *Store) DeletePending(ctx context.Context, id string) (bool, error) {
	n, err := s.client.Del(ctx, s.pendingKey(id)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to delete pending: %w", err)
	}
	return n == 1, nil
}

func (s *Store) PutSession(ctx context.Context, sess *sessions.Session, ttl time.Duration) error {
	if sess == nil || sess.ID == "" {
		return errors.New("session id cannot be empty")
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return s.client.Set(ctx, s.sessionKey(sess.ID), data, ttl).Err()
}

func (s *Store) GetSession(ctx context.Context, id string) (*sessions.Session, error) {
	return s.getSession(ctx, s.client, s.sessionKey(id))
}

func (s *Store) getSession(ctx context.Context, c redis.Cmdable, key string) (*sessions.Session, error) {
	data, err := c.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	var sess sessions.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &sess, nil
}

// UpdateSession runs fn inside WATCH/MULTI so a concurrent writer forces a retry instead of a lost update.
func (s *Store) UpdateSession(ctx context.Context, id string, fn func(*sessions.Session) error) error {
	key := s.sessionKey(id)
	txf := func(tx *redis.Tx) error {
		sess, err := s.getSession(ctx, tx, key)
		if err != nil {
			return err
		}
		if sess == nil {
			return bfferrors.Wrapf(bfferrors.ErrNotFound, "session %s", id)
		}
		if err := fn(sess); err != nil {
			return err
		}
		sess.ID = id
		data, err := json.Marshal(sess)
		if err != nil {
			return fmt.Errorf("failed to marshal session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, redis.KeepTTL)
			return nil
		})
		return err
	}

	for i := 0; i < updateRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			log.Debug().Str("session", id).Int("attempt", i+1).Msg("session changed during update, retrying")
			continue
		}
		return err
	}
	return fmt.Errorf("session %s: too many concurrent updates", id)
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// FindSession scans every session key. It is linear in the number of sessions.
func (s *Store) FindSession(ctx context.Context, match func(*sessions.Session) bool) (*sessions.Session, error) {
	iter := s.client.Scan(ctx, 0, s.keyPrefix+sessionKeyPart+"*", scanCount).Iterator()
	for iter.Next(ctx) {
		sess, err := s.getSession(ctx, s.client, iter.Val())
		if err != nil {
			return nil, err
		}
		// expired between SCAN and GET
		if sess == nil {
			continue
		}
		if match(sess) {
			return sess, nil
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan sessions: %w", err)
	}
	return nil, nil
}

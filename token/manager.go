// Package token keeps a session's access token usable by refreshing it shortly before it expires.
package token

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/jrsteele09/go-oidc-bff/instrumentation"
	"github.com/jrsteele09/go-oidc-bff/provider"
	"github.com/jrsteele09/go-oidc-bff/sessions"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// DefaultRefreshSkew is how long before expiry a token is considered due for refresh.
const DefaultRefreshSkew = 300 * time.Second

const refreshTimeout = 30 * time.Second

type Manager struct {
	provider *provider.Client
	store    sessions.Store
	metrics  *instrumentation.Metrics
	skew     time.Duration
	nowFunc  func() time.Time
	group    singleflight.Group
}

type ManagerOption func(*Manager)

func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

func WithRefreshSkew(skew time.Duration) ManagerOption {
	return func(m *Manager) {
		m.skew = skew
	}
}

func WithMetrics(metrics *instrumentation.Metrics) ManagerOption {
	return func(m *Manager) {
		m.metrics = metrics
	}
}

func NewManager(p *provider.Client, store sessions.Store, opts ...ManagerOption) *Manager {
	m := &Manager{
		provider: p,
		store:    store,
		skew:     DefaultRefreshSkew,
		nowFunc:  time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NeedsRefresh reports whether t has a refresh token and an access token within skew of expiry.
// A token set without a known expiry is always due.
func (m *Manager) NeedsRefresh(t sessions.TokenSet) bool {
	if t.RefreshToken == "" {
		return false
	}
	if !t.HasExpiry() {
		return true
	}
	return !m.nowFunc().Before(t.ExpiresAt.Add(-m.skew))
}

type outcome struct {
	result Result
	tokens sessions.TokenSet
}

// EnsureFresh refreshes sess's tokens when they are due. It never returns an error:
// a failed refresh leaves sess untouched and is reported as RefreshFailed.
// Concurrent calls for the same session share a single refresh.
func (m *Manager) EnsureFresh(ctx context.Context, sess *sessions.Session) Result {
	if sess == nil || !m.NeedsRefresh(sess.Tokens) {
		return Unchanged
	}

	v, _, _ := m.group.Do(sess.ID, func() (interface{}, error) {
		// The refresh is shared, so it must outlive the caller that started it.
		refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()
		return m.refresh(refreshCtx, sess), nil
	})
	out := v.(outcome)
	if out.result == Refreshed {
		sess.Tokens = out.tokens
	}
	m.metrics.RecordRefresh(ctx, out.result.String())
	return out.result
}

func (m *Manager) refresh(ctx context.Context, sess *sessions.Session) outcome {
	// A request that finished just before us may already have stored fresh tokens.
	if stored, err := m.store.GetSession(ctx, sess.ID); err == nil && stored != nil && !m.NeedsRefresh(stored.Tokens) {
		return outcome{result: Refreshed, tokens: stored.Tokens}
	}

	cfg, err := m.provider.OAuth2Config(ctx, "")
	if err != nil {
		log.Warn().Err(err).Str("sub", sess.Subject()).Msg("token refresh skipped, provider configuration unavailable")
		return outcome{result: RefreshFailed}
	}

	now := m.nowFunc()
	tk, err := cfg.TokenSource(m.provider.Context(ctx), &oauth2.Token{RefreshToken: sess.Tokens.RefreshToken}).Token()
	if err != nil {
		log.Warn().Err(provider.ClassifyTokenError(err)).Str("sub", sess.Subject()).Msg("token refresh failed, keeping existing tokens")
		return outcome{result: RefreshFailed}
	}

	merged := Merge(sess.Tokens, tk, now)
	err = m.store.UpdateSession(ctx, sess.ID, func(s *sessions.Session) error {
		s.Tokens = merged
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("sub", sess.Subject()).Msg("refreshed tokens could not be stored")
	}
	log.Debug().Str("sub", sess.Subject()).Time("expires_at", merged.ExpiresAt).Msg("access token refreshed")
	return outcome{result: Refreshed, tokens: merged}
}

// Merge overlays the fields returned by a token endpoint onto prev.
// Fields the provider did not return keep their previous values.
func Merge(prev sessions.TokenSet, tk *oauth2.Token, now time.Time) sessions.TokenSet {
	merged := prev
	if tk.AccessToken != "" {
		merged.AccessToken = tk.AccessToken
	}
	if tk.RefreshToken != "" {
		merged.RefreshToken = tk.RefreshToken
	}
	if tk.TokenType != "" {
		merged.TokenType = tk.TokenType
	}
	if idToken, ok := tk.Extra("id_token").(string); ok && idToken != "" {
		merged.IDToken = idToken
	}
	if scope, ok := tk.Extra("scope").(string); ok && scope != "" {
		merged.Scope = scope
	}
	if expiresIn, ok := ExpiresIn(tk); ok {
		merged.ExpiresAt = now.Add(expiresIn)
	}
	return merged
}

// ExpiresIn reads expires_in from a token response.
func ExpiresIn(tk *oauth2.Token) (time.Duration, bool) {
	var seconds float64
	switch v := tk.Extra("expires_in").(type) {
	case float64:
		seconds = v
	case int:
		seconds = float64(v)
	case int64:
		seconds = float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		seconds = f
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		seconds = f
	default:
		if tk.ExpiresIn > 0 {
			return time.Duration(tk.ExpiresIn) * time.Second, true
		}
		return 0, false
	}
	return time.Duration(seconds * float64(time.Second)), true
}

package sessions

import (
	"maps"
	"time"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Pending is the server-side half of an authorization request that has been
// started but not yet completed. It is consumed exactly once by the callback.
type Pending struct {
	ID           string    `json:"id"`
	CodeVerifier string    `json:"code_verifier"`
	State        string    `json:"state"` // sealed state exactly as sent to the provider
	CreatedAt    time.Time `json:"created_at"`
}

// TokenSet holds the provider tokens for one session. It never leaves the server.
type TokenSet struct {
	AccessToken  string    `json:"access_token,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	IDToken      string    `json:"id_token,omitempty"`
	Scope        string    `json:"scope,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitempty"` // zero when the provider gave no expires_in
}

// HasExpiry reports whether the provider told us when the access token expires.
func (t TokenSet) HasExpiry() bool {
	return !t.ExpiresAt.IsZero()
}

// Session is an authenticated browser session.
type Session struct {
	ID        string         `json:"id"`
	Claims    map[string]any `json:"claims"`
	Tokens    TokenSet       `json:"tokens"`
	CSRFToken string         `json:"csrf_token"`
	CreatedAt time.Time      `json:"created_at"`
}

// Clone returns a copy that shares nothing mutable with s.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Claims = maps.Clone(s.Claims)
	return &c
}

// Subject returns the "sub" claim when present.
func (s *Session) Subject() string {
	sub, _ := s.Claims["sub"].(string)
	return sub
}

package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-oidc-bff/cookie"
	"github.com/jrsteele09/go-oidc-bff/internal/errors"
	"github.com/jrsteele09/go-oidc-bff/oauthmodel"
	"github.com/jrsteele09/go-oidc-bff/sessions"
	"github.com/rs/zerolog"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeySession stores the *sessions.Session resolved by RequireSession
const ContextKeySession ContextKey = "session"

const csrfHeader = "X-CSRF-Token"

// SessionFromContext returns the session placed in the context by RequireSession.
func SessionFromContext(ctx context.Context) *sessions.Session {
	sess, _ := ctx.Value(ContextKeySession).(*sessions.Session)
	return sess
}

// RequireSession resolves the sid cookie to a stored session.
// Missing, tampered, expired and unknown cookies all answer 401.
func (s *Server) RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := s.sessionFromRequest(r)
		if sess == nil {
			writeJSONError(w, http.StatusUnauthorized, oauthmodel.ErrorCodeUnauthenticated, "Authentication required")
			return
		}
		ctx := context.WithValue(r.Context(), ContextKeySession, sess)
		next(w, r.WithContext(ctx))
	}
}

func (s *Server) sessionFromRequest(r *http.Request) *sessions.Session {
	c, err := r.Cookie(cookie.NameSession)
	if err != nil || c.Value == "" {
		return nil
	}
	id, err := s.auth.OpenSessionID(c.Value)
	if err != nil {
		zerolog.Ctx(r.Context()).Debug().Err(err).Msg("rejected session cookie")
		return nil
	}
	sess, err := s.store.GetSession(r.Context(), id)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("session lookup failed")
		return nil
	}
	return sess
}

// RequireCSRF checks X-CSRF-Token against the session's secret on state changing methods.
// It must run after RequireSession.
func (s *Server) RequireCSRF(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !isMutating(r.Method) {
			next(w, r)
			return
		}
		err := s.auth.VerifyCSRF(SessionFromContext(r.Context()), r.Header.Get(csrfHeader))
		switch {
		case err == nil:
			next(w, r)
		case errors.Is(err, errors.ErrUnauthenticated):
			writeJSONError(w, http.StatusUnauthorized, oauthmodel.ErrorCodeUnauthenticated, "Authentication required")
		default:
			writeJSONError(w, http.StatusForbidden, oauthmodel.ErrorCodeForbidden, "Invalid CSRF token")
		}
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		return true
	}
	return false
}

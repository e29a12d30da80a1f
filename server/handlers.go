package server

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/go-oidc-bff/auth"
	"github.com/jrsteele09/go-oidc-bff/internal/errors"
	"github.com/jrsteele09/go-oidc-bff/oauthmodel"
	"github.com/rs/zerolog"
)

// IndexHandler is the liveness probe.
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": s.config.GetAppName() + " is running"})
	}
}

// LoginHandler sends the browser to the provider's authorization endpoint.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authURL, err := s.auth.Login(r.Context(), s.redirectURI(r))
		if err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("login failed")
			s.redirectWithError(w, r, auth.ErrorMessage(err))
			return
		}
		http.Redirect(w, r, authURL, http.StatusFound)
	}
}

// CallbackHandler finishes the login, sets the session cookies and returns the browser to the frontend.
func (s *Server) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := oauthmodel.ParseCallbackParameters(r.URL.Query())
		sess, err := s.auth.Callback(r.Context(), params, s.redirectURI(r))
		if err != nil {
			s.redirectWithError(w, r, auth.ErrorMessage(err))
			return
		}

		sealed, err := s.auth.SealSessionID(sess.ID)
		if err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to seal session cookie")
			s.redirectWithError(w, r, auth.ErrorMessage(err))
			return
		}
		s.setSessionCookies(w, sealed, sess)
		http.Redirect(w, r, s.config.GetFrontendOrigin(), http.StatusFound)
	}
}

// MeHandler returns the signed in user's ID token claims.
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := SessionFromContext(r.Context())
		if s.tokens != nil {
			s.tokens.EnsureFresh(r.Context(), sess)
		}
		claims := sess.Claims
		if claims == nil {
			claims = map[string]any{}
		}
		writeJSON(w, http.StatusOK, claims)
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.auth.Logout(r.Context(), SessionFromContext(r.Context())); err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("logout failed")
			writeJSONError(w, http.StatusInternalServerError, oauthmodel.ErrorCodeInternalServerError, "Logout failed")
			return
		}
		s.clearSessionCookies(w)
		writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
	}
}

// APIProxyHandler forwards /bff/api/{path...} to the upstream API with the session's access token.
func (s *Server) APIProxyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// PathValue is decoded; forward the escaped form so %2F and %3F stay inside the segment.
		subPath := strings.TrimPrefix(r.URL.EscapedPath(), RouteAPIPrefix)
		err := s.proxy.Forward(w, r, SessionFromContext(r.Context()), subPath)
		switch {
		case err == nil:
		case errors.Is(err, errors.ErrNotConfigured):
			writeJSONError(w, http.StatusNotImplemented, oauthmodel.ErrorCodeNotImplemented, "API proxying not configured")
		case errors.Is(err, errors.ErrNoAccessToken):
			writeJSONError(w, http.StatusUnauthorized, oauthmodel.ErrorCodeUnauthenticated, "No access token available")
		case errors.Is(err, errors.ErrUpstreamUnavailable):
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("upstream request failed")
			writeJSONError(w, http.StatusBadGateway, oauthmodel.ErrorCodeBadGateway, err.Error())
		default:
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("proxy failed")
			writeJSONError(w, http.StatusInternalServerError, oauthmodel.ErrorCodeInternalServerError, "Internal server error")
		}
	}
}

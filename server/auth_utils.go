package server

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-oidc-bff/cookie"
	"github.com/jrsteele09/go-oidc-bff/oauthmodel"
	"github.com/jrsteele09/go-oidc-bff/sessions"
	"github.com/rs/zerolog/log"
)

// setSessionCookies issues the HttpOnly sid cookie and the script readable csrf cookie.
func (s *Server) setSessionCookies(w http.ResponseWriter, sealedID string, sess *sessions.Session) {
	maxAge := int(s.auth.SessionMaxAge().Seconds())
	http.SetCookie(w, s.newCookie(cookie.NameSession, sealedID, maxAge, true))
	http.SetCookie(w, s.newCookie(cookie.NameCSRF, sess.CSRFToken, maxAge, false))
}

func (s *Server) clearSessionCookies(w http.ResponseWriter) {
	http.SetCookie(w, s.newCookie(cookie.NameSession, "", -1, true))
	http.SetCookie(w, s.newCookie(cookie.NameCSRF, "", -1, false))
}

func (s *Server) newCookie(name, value string, maxAge int, httpOnly bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: httpOnly,
		Secure:   s.config.GetCookieSecure(),
		SameSite: s.config.GetCookieSameSite(),
		MaxAge:   maxAge,
	}
}

// redirectURI is the callback address registered with the provider. Without PUBLIC_BASE_URL it
// follows the host the browser used.
func (s *Server) redirectURI(r *http.Request) string {
	base := s.config.GetPublicBaseURL()
	if base == "" {
		base = getScheme(r) + "://" + r.Host
	}
	return base + s.config.GetRedirectPath()
}

// redirectWithError sends the browser back to the frontend with a readable error.
func (s *Server) redirectWithError(w http.ResponseWriter, r *http.Request, errorMsg string) {
	http.Redirect(w, r, s.config.GetFrontendOrigin()+"?error="+url.QueryEscape(errorMsg), http.StatusFound)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write response")
	}
}

func writeJSONError(w http.ResponseWriter, status int, code, description string) {
	writeJSON(w, status, oauthmodel.ErrorResponse{Error: code, ErrorDescription: description})
}

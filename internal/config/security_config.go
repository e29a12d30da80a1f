package config

import (
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultSessionSecret is the development fallback; a warning is logged when it is in use.
	DefaultSessionSecret = "change-this-in-production"

	sessionSecretEnvVar = "SESSION_SECRET_KEY"
	cookieSecureEnvVar  = "COOKIE_SECURE"
	cookieSameSiteVar   = "COOKIE_SAMESITE"
	loginRateEnvVar     = "LOGIN_RATE_LIMIT"
	loginBurstEnvVar    = "LOGIN_RATE_BURST"
)

type SecurityConfig interface {
	GetSessionSecret() string
	GetCookieSecure() bool
	GetCookieSameSite() http.SameSite
	GetMaxSessionAge() time.Duration
	GetPendingAuthTimeout() time.Duration
	GetRefreshSkew() time.Duration
	GetLoginRateLimit() float64
	GetLoginRateBurst() int
}

type Security struct{}

var _ SecurityConfig = Security{}

func (Security) GetSessionSecret() string {
	return GetEnv(sessionSecretEnvVar, DefaultSessionSecret)
}

func (Security) GetCookieSecure() bool {
	return GetEnvBool(cookieSecureEnvVar, false)
}

func (Security) GetCookieSameSite() http.SameSite {
	switch strings.ToLower(GetEnv(cookieSameSiteVar, "lax")) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

func (Security) GetMaxSessionAge() time.Duration {
	return 24 * time.Hour
}

func (Security) GetPendingAuthTimeout() time.Duration {
	return 10 * time.Minute
}

// GetRefreshSkew is how long before expiry an access token is refreshed.
func (Security) GetRefreshSkew() time.Duration {
	return 300 * time.Second
}

// GetLoginRateLimit is requests per second per client IP on the login and callback routes.
func (Security) GetLoginRateLimit() float64 {
	return GetEnvFloat(loginRateEnvVar, 5)
}

func (Security) GetLoginRateBurst() int {
	return GetEnvInt(loginBurstEnvVar, 10)
}

package auth

import "github.com/jrsteele09/go-oidc-bff/internal/errors"

const (
	oidcErrorPrefix    = "OIDC Error: "
	genericErrorPrefix = "Authentication failed: "
)

// ErrorMessage is the text shown to the user when login or callback fails.
func ErrorMessage(err error) string {
	if errors.Is(err, errors.ErrOIDC) || errors.Is(err, errors.ErrDiscovery) {
		return oidcErrorPrefix + err.Error()
	}
	return genericErrorPrefix + err.Error()
}

// Outcome labels a callback result for metrics.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, errors.ErrOIDC):
		return "oidc_error"
	case errors.Is(err, errors.ErrDiscovery):
		return "discovery_error"
	case errors.Is(err, errors.ErrUpstreamUnavailable):
		return "upstream_unavailable"
	default:
		return "error"
	}
}

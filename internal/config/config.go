package config

import (
	"fmt"
	"strings"

	"github.com/jrsteele09/go-oidc-bff/oauthmodel"
)

type Config interface {
	EnvConfig
	CorsConfig
	OIDCConfig
	SecurityConfig
	StoreConfig
	ProxyConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type OIDCConfig interface {
	GetIssuer() string
	GetClientID() string
	GetClientSecret() string
	GetScopes() []string
	GetPKCEMethod() oauthmodel.CodeMethodType
	GetVerifyIDToken() bool
	GetFrontendOrigin() string
	GetRedirectPath() string
	GetPublicBaseURL() string
}

type mainConfig struct {
	EnvVars
	Cors
	OIDC
	Security
	Store
	Proxy
}

func New() Config {
	return mainConfig{}
}

// Validate reports the settings the gateway cannot start without.
func Validate(c Config) error {
	var missing []string
	if c.GetIssuer() == "" {
		missing = append(missing, issuerEnvVar)
	}
	if c.GetClientID() == "" {
		missing = append(missing, clientIDEnvVar)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	switch c.GetPKCEMethod() {
	case oauthmodel.CodeMethodTypeNone, oauthmodel.CodeMethodTypeS256:
	default:
		return fmt.Errorf("%s must be 'plain' or 'S256', got %q", pkceMethodEnvVar, c.GetPKCEMethod())
	}

	switch c.GetSessionStore() {
	case SessionStoreMemory, SessionStoreRedis:
	default:
		return fmt.Errorf("%s must be %q or %q, got %q", sessionStoreEnvVar, SessionStoreMemory, SessionStoreRedis, c.GetSessionStore())
	}
	return nil
}

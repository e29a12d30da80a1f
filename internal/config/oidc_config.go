package config

import (
	"strings"

	"github.com/jrsteele09/go-oidc-bff/oauthmodel"
)

const (
	issuerEnvVar        = "OIDC_ISSUER"
	clientIDEnvVar      = "OIDC_CLIENT_ID"
	clientSecretEnvVar  = "OIDC_CLIENT_SECRET"
	scopesEnvVar        = "OIDC_SCOPES"
	pkceMethodEnvVar    = "OIDC_PKCE_METHOD"
	verifyIDTokenEnvVar = "OIDC_VERIFY_ID_TOKEN"
	frontendOriginVar   = "FRONTEND_ORIGIN"
	redirectPathEnvVar  = "REDIRECT_PATH"
	publicBaseURLEnvVar = "PUBLIC_BASE_URL"
)

type OIDC struct{}

var _ OIDCConfig = OIDC{}

func (OIDC) GetIssuer() string {
	return GetEnv(issuerEnvVar, "")
}

func (OIDC) GetClientID() string {
	return GetEnv(clientIDEnvVar, "")
}

// GetClientSecret is empty for public clients.
func (OIDC) GetClientSecret() string {
	return GetEnv(clientSecretEnvVar, "")
}

func (OIDC) GetScopes() []string {
	return strings.Fields(GetEnv(scopesEnvVar, "openid profile email"))
}

func (OIDC) GetPKCEMethod() oauthmodel.CodeMethodType {
	return oauthmodel.CodeMethodType(GetEnv(pkceMethodEnvVar, string(oauthmodel.CodeMethodTypeNone)))
}

func (OIDC) GetVerifyIDToken() bool {
	return GetEnvBool(verifyIDTokenEnvVar, false)
}

func (OIDC) GetFrontendOrigin() string {
	return strings.TrimSuffix(GetEnv(frontendOriginVar, "http://localhost:5173"), "/")
}

func (OIDC) GetRedirectPath() string {
	return GetEnv(redirectPathEnvVar, "/bff/callback")
}

// GetPublicBaseURL overrides the request-derived base used to build the redirect URI.
func (OIDC) GetPublicBaseURL() string {
	return strings.TrimSuffix(GetEnv(publicBaseURLEnvVar, ""), "/")
}

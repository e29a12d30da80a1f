package oauthmodel

// ResponseType represents the OAuth 2.0 response type requested from the authorization endpoint.
type ResponseType string

const (
	// CodeResponseType indicates the authorization code flow.
	// The gateway only ever asks for a code, which is exchanged server side.
	// Example: /authorize?response_type=code&client_id=...
	CodeResponseType ResponseType = "code"
)

// CodeMethodType represents the PKCE (Proof Key for Code Exchange) challenge method.
// Used to bind the authorization code to the client that started the flow.
type CodeMethodType string

const (
	// CodeMethodTypeS256 indicates SHA-256 hashing is used for the code challenge.
	// Client sends: code_challenge = BASE64URL(SHA256(code_verifier))
	// Security: protects against an attacker who can read the authorization request
	CodeMethodTypeS256 CodeMethodType = "S256"

	// CodeMethodTypeNone (labeled "plain") means no hashing, the verifier is the challenge.
	// Client sends: code_challenge = code_verifier
	// Security: only protects against interception of the authorization response
	CodeMethodTypeNone CodeMethodType = "plain"
)

// GrantType represents the OAuth 2.0 grant type used at the token endpoint.
type GrantType string

const (
	// AuthorizationCodeGrant exchanges an authorization code for tokens.
	// Token request includes: code, client_id, client_secret (if any), redirect_uri, code_verifier
	// Returns: access_token, id_token, refresh_token (if issued)
	AuthorizationCodeGrant GrantType = "authorization_code"

	// RefreshTokenCodeGrant exchanges a refresh token for new tokens.
	// Token request includes: refresh_token, client_id, client_secret (if any)
	// Returns: new access_token, optionally a rotated refresh_token
	RefreshTokenCodeGrant GrantType = "refresh_token"
)

// Package testidp runs a small OpenID provider on httptest for package tests.
package testidp

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-oidc-bff/oauthmodel"
	"github.com/stretchr/testify/require"
)

const (
	ClientID = "bff-client"
	KeyID    = "test-key"
)

type grant struct {
	challenge string
	method    oauthmodel.CodeMethodType
	claims    jwt.MapClaims
}

// Provider is a fake identity provider. Exported fields may be changed between requests.
type Provider struct {
	Server *httptest.Server
	Key    *rsa.PrivateKey

	DiscoveryCalls atomic.Int32
	JWKSCalls      atomic.Int32
	TokenCalls     atomic.Int32
	RefreshCalls   atomic.Int32

	mu              sync.Mutex
	discoveryStatus int
	omitJWKSURI     bool
	expiresIn       int
	omitIDToken     bool
	omitExpiresIn   bool
	refreshToken    string
	rotateRefresh   bool
	refreshStatus   int
	refreshDelay    time.Duration
	codes           map[string]grant
	lastForm        url.Values
	issued          int
}

// New starts a provider that is shut down when the test ends.
func New(t *testing.T) *Provider {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	p := &Provider{
		Key:             key,
		discoveryStatus: http.StatusOK,
		expiresIn:       3600,
		refreshToken:    "refresh-1",
		refreshStatus:   http.StatusOK,
		codes:           make(map[string]grant),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /.well-known/openid-configuration", p.discovery)
	mux.HandleFunc("GET /jwks", p.jwks)
	mux.HandleFunc("POST /token", p.token)
	p.Server = httptest.NewServer(mux)
	t.Cleanup(p.Server.Close)
	return p
}

func (p *Provider) Issuer() string { return p.Server.URL }

func (p *Provider) AuthorizationEndpoint() string { return p.Server.URL + "/authorize" }

// SetDiscoveryStatus makes the discovery endpoint answer with status.
func (p *Provider) SetDiscoveryStatus(status int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.discoveryStatus = status
}

// OmitJWKSURI drops jwks_uri from the discovery document.
func (p *Provider) OmitJWKSURI() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.omitJWKSURI = true
}

// SetExpiresIn sets expires_in on token responses.
func (p *Provider) SetExpiresIn(seconds int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.expiresIn = seconds
	p.omitExpiresIn = false
}

// OmitExpiresIn drops expires_in from token responses.
func (p *Provider) OmitExpiresIn() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.omitExpiresIn = true
}

// OmitIDToken drops id_token from code exchange responses.
func (p *Provider) OmitIDToken() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.omitIDToken = true
}

// SetRefreshToken sets the refresh token returned by the code exchange; empty omits it.
func (p *Provider) SetRefreshToken(rt string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refreshToken = rt
}

// RotateRefreshTokens makes the refresh grant return a new refresh token.
func (p *Provider) RotateRefreshTokens() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rotateRefresh = true
}

// SetRefreshStatus makes the refresh grant answer with status.
func (p *Provider) SetRefreshStatus(status int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refreshStatus = status
}

// SetRefreshDelay slows down the refresh grant.
func (p *Provider) SetRefreshDelay(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refreshDelay = d
}

// LastTokenForm returns the form of the most recent token request.
func (p *Provider) LastTokenForm() url.Values {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastForm
}

// Authorize plays the user's half of the authorization request and returns the code the
// provider would redirect back with. The code is bound to the request's PKCE challenge.
func (p *Provider) Authorize(t *testing.T, authURL string, claims jwt.MapClaims) (code, state string) {
	t.Helper()
	u, err := url.Parse(authURL)
	require.NoError(t, err)
	q := u.Query()
	require.Equal(t, string(oauthmodel.CodeResponseType), q.Get("response_type"))
	require.NotEmpty(t, q.Get("code_challenge"))

	p.mu.Lock()
	defer p.mu.Unlock()
	p.issued++
	code = fmt.Sprintf("code-%d", p.issued)
	p.codes[code] = grant{
		challenge: q.Get("code_challenge"),
		method:    oauthmodel.CodeMethodType(q.Get("code_challenge_method")),
		claims:    claims,
	}
	return code, q.Get("state")
}

// SignIDToken signs claims with the provider key.
func (p *Provider) SignIDToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := p.sign(claims)
	require.NoError(t, err)
	return signed
}

func (p *Provider) sign(claims jwt.MapClaims) (string, error) {
	full := jwt.MapClaims{
		"iss": p.Issuer(),
		"aud": ClientID,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	for k, v := range claims {
		full[k] = v
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, full)
	tok.Header["kid"] = KeyID
	return tok.SignedString(p.Key)
}

func (p *Provider) discovery(w http.ResponseWriter, _ *http.Request) {
	p.DiscoveryCalls.Add(1)
	p.mu.Lock()
	status := p.discoveryStatus
	omitJWKS := p.omitJWKSURI
	p.mu.Unlock()

	if status != http.StatusOK {
		http.Error(w, "unavailable", status)
		return
	}
	doc := map[string]any{
		"issuer":                           p.Issuer(),
		"authorization_endpoint":           p.AuthorizationEndpoint(),
		"token_endpoint":                   p.Server.URL + "/token",
		"userinfo_endpoint":                p.Server.URL + "/userinfo",
		"end_session_endpoint":             p.Server.URL + "/logout",
		"code_challenge_methods_supported": []string{"plain", "S256"},
	}
	if !omitJWKS {
		doc["jwks_uri"] = p.Server.URL + "/jwks"
	}
	writeJSON(w, http.StatusOK, doc)
}

func (p *Provider) jwks(w http.ResponseWriter, _ *http.Request) {
	p.JWKSCalls.Add(1)
	writeJSON(w, http.StatusOK, jose.JSONWebKeySet{Keys: []jose.JSONWebKey{{
		Key:       &p.Key.PublicKey,
		KeyID:     KeyID,
		Algorithm: string(jose.RS256),
		Use:       "sig",
	}}})
}

func (p *Provider) token(w http.ResponseWriter, r *http.Request) {
	p.TokenCalls.Add(1)
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, oauthmodel.ErrorResponse{Error: "invalid_request"})
		return
	}

	p.mu.Lock()
	p.lastForm = r.PostForm
	p.mu.Unlock()

	if r.PostForm.Get("client_id") != ClientID {
		writeJSON(w, http.StatusUnauthorized, oauthmodel.ErrorResponse{Error: "invalid_client"})
		return
	}

	switch oauthmodel.GrantType(r.PostForm.Get("grant_type")) {
	case oauthmodel.AuthorizationCodeGrant:
		p.exchange(w, r.PostForm)
	case oauthmodel.RefreshTokenCodeGrant:
		p.refresh(w, r.PostForm)
	default:
		writeJSON(w, http.StatusBadRequest, oauthmodel.ErrorResponse{Error: "unsupported_grant_type"})
	}
}

func (p *Provider) exchange(w http.ResponseWriter, form url.Values) {
	p.mu.Lock()
	g, ok := p.codes[form.Get("code")]
	delete(p.codes, form.Get("code"))
	p.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusBadRequest, oauthmodel.ErrorResponse{Error: "invalid_grant", ErrorDescription: "unknown code"})
		return
	}

	challenge, err := oauthmodel.CodeChallenge(form.Get("code_verifier"), g.method)
	if err != nil || challenge != g.challenge {
		writeJSON(w, http.StatusBadRequest, oauthmodel.ErrorResponse{Error: "invalid_grant", ErrorDescription: "pkce mismatch"})
		return
	}

	p.mu.Lock()
	resp := map[string]any{
		"access_token": "access-" + form.Get("code"),
		"token_type":   "Bearer",
		"scope":        "openid profile email",
	}
	if !p.omitExpiresIn {
		resp["expires_in"] = p.expiresIn
	}
	if p.refreshToken != "" {
		resp["refresh_token"] = p.refreshToken
	}
	omitIDToken := p.omitIDToken
	p.mu.Unlock()

	if !omitIDToken {
		idToken, err := p.sign(g.claims)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, oauthmodel.ErrorResponse{Error: "server_error"})
			return
		}
		resp["id_token"] = idToken
	}
	writeJSON(w, http.StatusOK, resp)
}

func (p *Provider) refresh(w http.ResponseWriter, form url.Values) {
	n := p.RefreshCalls.Add(1)

	p.mu.Lock()
	status := p.refreshStatus
	delay := p.refreshDelay
	rotate := p.rotateRefresh
	expiresIn := p.expiresIn
	omitExpiresIn := p.omitExpiresIn
	p.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if status != http.StatusOK {
		writeJSON(w, status, oauthmodel.ErrorResponse{Error: "invalid_grant", ErrorDescription: "refresh rejected"})
		return
	}
	if form.Get("refresh_token") == "" {
		writeJSON(w, http.StatusBadRequest, oauthmodel.ErrorResponse{Error: "invalid_request"})
		return
	}

	resp := map[string]any{
		"access_token": fmt.Sprintf("refreshed-%d", n),
		"token_type":   "Bearer",
	}
	if !omitExpiresIn {
		resp["expires_in"] = expiresIn
	}
	if rotate {
		resp["refresh_token"] = fmt.Sprintf("refresh-rotated-%d", n)
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

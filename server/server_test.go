package server_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-oidc-bff/cookie"
	"github.com/jrsteele09/go-oidc-bff/internal/config"
	"github.com/jrsteele09/go-oidc-bff/internal/testidp"
	"github.com/jrsteele09/go-oidc-bff/oauthmodel"
	"github.com/jrsteele09/go-oidc-bff/server"
	"github.com/jrsteele09/go-oidc-bff/sessions"
	"github.com/stretchr/testify/require"
)

const frontendOrigin = "http://frontend.test"

type upstreamRequest struct {
	method  string
	path    string
	rawPath string
	query   string
	header  http.Header
	body    string
}

type testFixture struct {
	idp        *testidp.Provider
	upstream   *httptest.Server
	components server.Components
	ts         *httptest.Server
	client     *http.Client

	mu       sync.Mutex
	requests []upstreamRequest
}

func setupTestFixture(t *testing.T, env map[string]string) *testFixture {
	t.Helper()
	f := &testFixture{idp: testidp.New(t)}

	f.upstream = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.requests = append(f.requests, upstreamRequest{
			method:  r.Method,
			path:    r.URL.Path,
			rawPath: r.URL.EscapedPath(),
			query:   r.URL.RawQuery,
			header:  r.Header.Clone(),
			body:    string(body),
		})
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Upstream", "api")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"items":[1,2,3]}`))
	}))
	t.Cleanup(f.upstream.Close)

	defaults := map[string]string{
		"ENV":                "TEST",
		"OIDC_ISSUER":        f.idp.Issuer(),
		"OIDC_CLIENT_ID":     testidp.ClientID,
		"FRONTEND_ORIGIN":    frontendOrigin,
		"API_BASE_URL":       f.upstream.URL,
		"SESSION_SECRET_KEY": "server-test-secret",
		"SESSION_STORE":      config.SessionStoreMemory,
		"LOGIN_RATE_LIMIT":   "1000",
		"LOGIN_RATE_BURST":   "1000",
	}
	for k, v := range env {
		defaults[k] = v
	}
	for k, v := range defaults {
		t.Setenv(k, v)
	}

	cfg := config.New()
	require.NoError(t, config.Validate(cfg))
	components, stop, err := server.InitialiseComponents(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(stop)
	f.components = components

	f.ts = httptest.NewServer(server.New(cfg, components))
	t.Cleanup(f.ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	f.client = &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return f
}

func (f *testFixture) do(t *testing.T, method, path string, body io.Reader, header http.Header) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, f.ts.URL+path, body)
	require.NoError(t, err)
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := f.client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// startLogin follows /bff/login to the provider and returns the code and state it would send back.
func (f *testFixture) startLogin(t *testing.T) (code, state string) {
	t.Helper()
	resp := f.do(t, http.MethodGet, server.RouteLogin, nil, nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	loc := resp.Header.Get("Location")
	require.True(t, strings.HasPrefix(loc, f.idp.AuthorizationEndpoint()), loc)
	return f.idp.Authorize(t, loc, jwt.MapClaims{"sub": "user-1", "email": "user@example.com", "name": "Test User"})
}

func (f *testFixture) callback(t *testing.T, code, state string) *http.Response {
	t.Helper()
	q := url.Values{"code": {code}, "state": {state}}
	return f.do(t, http.MethodGet, "/bff/callback?"+q.Encode(), nil, nil)
}

func (f *testFixture) login(t *testing.T) {
	t.Helper()
	code, state := f.startLogin(t)
	resp := f.callback(t, code, state)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, frontendOrigin, resp.Header.Get("Location"))
}

func (f *testFixture) cookie(t *testing.T, name string) string {
	t.Helper()
	u, err := url.Parse(f.ts.URL)
	require.NoError(t, err)
	for _, c := range f.client.Jar.Cookies(u) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func (f *testFixture) upstreamRequests() []upstreamRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]upstreamRequest(nil), f.requests...)
}

func errorFromRedirect(t *testing.T, resp *http.Response) string {
	t.Helper()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	require.Equal(t, frontendOrigin, loc.Scheme+"://"+loc.Host)
	return loc.Query().Get("error")
}

func decodeError(t *testing.T, resp *http.Response) oauthmodel.ErrorResponse {
	t.Helper()
	var body oauthmodel.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func csrfHeader(token string) http.Header {
	return http.Header{"X-Csrf-Token": {token}}
}

func TestIndex(t *testing.T) {
	f := setupTestFixture(t, map[string]string{"APP_NAME": "Gateway"})

	resp := f.do(t, http.MethodGet, "/", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "Gateway is running", body["message"])
	require.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	require.Equal(t, "SAMEORIGIN", resp.Header.Get("X-Frame-Options"))

	require.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/nope", nil, nil).StatusCode)
}

func TestRequestIDIsKept(t *testing.T) {
	f := setupTestFixture(t, nil)
	resp := f.do(t, http.MethodGet, "/", nil, http.Header{"X-Request-Id": {"req-42"}})
	require.Equal(t, "req-42", resp.Header.Get("X-Request-ID"))
}

func TestLogin_RedirectsToProvider(t *testing.T) {
	f := setupTestFixture(t, nil)

	resp := f.do(t, http.MethodGet, server.RouteLogin, nil, nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Empty(t, resp.Cookies(), "login sets no cookies")

	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	q := loc.Query()
	require.Equal(t, "code", q.Get("response_type"))
	require.Equal(t, testidp.ClientID, q.Get("client_id"))
	require.Equal(t, f.ts.URL+"/bff/callback", q.Get("redirect_uri"))
	require.Equal(t, "openid profile email", q.Get("scope"))
	require.Equal(t, "plain", q.Get("code_challenge_method"))
	require.NotEmpty(t, q.Get("code_challenge"))
	require.NotEmpty(t, q.Get("state"))
}

func TestLogin_PublicBaseURL(t *testing.T) {
	f := setupTestFixture(t, map[string]string{"PUBLIC_BASE_URL": "https://bff.example.com/"})

	resp := f.do(t, http.MethodGet, server.RouteLogin, nil, nil)
	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "https://bff.example.com/bff/callback", loc.Query().Get("redirect_uri"))
}

func TestLogin_DiscoveryFailure(t *testing.T) {
	f := setupTestFixture(t, nil)
	f.idp.SetDiscoveryStatus(http.StatusInternalServerError)

	msg := errorFromRedirect(t, f.do(t, http.MethodGet, server.RouteLogin, nil, nil))
	require.True(t, strings.HasPrefix(msg, "OIDC Error: "), msg)
}

func TestLoginCallbackMe(t *testing.T) {
	f := setupTestFixture(t, nil)
	code, state := f.startLogin(t)

	resp := f.callback(t, code, state)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, frontendOrigin, resp.Header.Get("Location"))

	byName := map[string]*http.Cookie{}
	for _, c := range resp.Cookies() {
		byName[c.Name] = c
	}
	require.Contains(t, byName, cookie.NameSession)
	require.Contains(t, byName, cookie.NameCSRF)
	require.True(t, byName[cookie.NameSession].HttpOnly)
	require.False(t, byName[cookie.NameCSRF].HttpOnly, "the frontend reads the csrf cookie")
	require.Equal(t, 86400, byName[cookie.NameSession].MaxAge)
	require.Equal(t, "/", byName[cookie.NameSession].Path)

	me := f.do(t, http.MethodGet, server.RouteMe, nil, nil)
	require.Equal(t, http.StatusOK, me.StatusCode)
	var claims map[string]any
	require.NoError(t, json.NewDecoder(me.Body).Decode(&claims))
	require.Equal(t, "user-1", claims["sub"])
	require.Equal(t, "user@example.com", claims["email"])

	// the exchange used the verifier and the derived redirect URI
	form := f.idp.LastTokenForm()
	require.Equal(t, "authorization_code", form.Get("grant_type"))
	require.Equal(t, f.ts.URL+"/bff/callback", form.Get("redirect_uri"))
	require.NotEmpty(t, form.Get("code_verifier"))
}

func TestCallback_Failures(t *testing.T) {
	tests := []struct {
		name   string
		params func(t *testing.T, f *testFixture) url.Values
		want   string
	}{
		{
			name: "provider error",
			params: func(*testing.T, *testFixture) url.Values {
				return url.Values{"error": {"access_denied"}, "error_description": {"user cancelled"}}
			},
			want: "OIDC Error: ",
		},
		{
			name: "missing code",
			params: func(*testing.T, *testFixture) url.Values {
				return url.Values{"state": {"x"}}
			},
			want: "OIDC Error: ",
		},
		{
			name: "tampered state",
			params: func(t *testing.T, f *testFixture) url.Values {
				code, state := f.startLogin(t)
				return url.Values{"code": {code}, "state": {state + "x"}}
			},
			want: "OIDC Error: Invalid or expired state parameter",
		},
		{
			name: "token endpoint rejects code",
			params: func(t *testing.T, f *testFixture) url.Values {
				_, state := f.startLogin(t)
				return url.Values{"code": {"unknown-code"}, "state": {state}}
			},
			want: "OIDC Error: Token exchange failed",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := setupTestFixture(t, nil)
			resp := f.do(t, http.MethodGet, "/bff/callback?"+tc.params(t, f).Encode(), nil, nil)
			msg := errorFromRedirect(t, resp)
			require.True(t, strings.HasPrefix(msg, tc.want), msg)
			require.Empty(t, f.cookie(t, cookie.NameSession))
		})
	}
}

func TestCallback_ReplayRejected(t *testing.T) {
	f := setupTestFixture(t, nil)
	code, state := f.startLogin(t)

	first := f.callback(t, code, state)
	require.Equal(t, frontendOrigin, first.Header.Get("Location"))

	msg := errorFromRedirect(t, f.callback(t, code, state))
	require.Equal(t, "OIDC Error: Invalid or expired temporary session", msg)
}

func TestCallback_MissingIDToken(t *testing.T) {
	f := setupTestFixture(t, nil)
	f.idp.OmitIDToken()
	code, state := f.startLogin(t)

	msg := errorFromRedirect(t, f.callback(t, code, state))
	require.Equal(t, "OIDC Error: No ID token received", msg)
}

func TestMe_Unauthenticated(t *testing.T) {
	f := setupTestFixture(t, nil)

	resp := f.do(t, http.MethodGet, server.RouteMe, nil, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body := decodeError(t, resp)
	require.Equal(t, "unauthenticated", body.Error)
	require.Equal(t, "Authentication required", body.ErrorDescription)

	resp = f.do(t, http.MethodGet, server.RouteMe, nil, http.Header{"Cookie": {"sid=not-a-sealed-value"}})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMe_UnknownSession(t *testing.T) {
	f := setupTestFixture(t, nil)
	sealed, err := f.components.Auth.SealSessionID("no-such-session")
	require.NoError(t, err)

	resp := f.do(t, http.MethodGet, server.RouteMe, nil, http.Header{"Cookie": {"sid=" + sealed}})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMe_ForeignSignature(t *testing.T) {
	f := setupTestFixture(t, nil)
	f.login(t)
	sealed := f.cookie(t, cookie.NameSession)
	id, err := f.components.Auth.OpenSessionID(sealed)
	require.NoError(t, err)

	other, err := cookie.NewCodec("some-other-secret")
	require.NoError(t, err)
	forged, err := other.Seal(cookie.NameSession, id)
	require.NoError(t, err)

	client := &http.Client{}
	req, err := http.NewRequest(http.MethodGet, f.ts.URL+server.RouteMe, nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: cookie.NameSession, Value: forged})
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogout(t *testing.T) {
	f := setupTestFixture(t, nil)
	f.login(t)
	sid := f.cookie(t, cookie.NameSession)
	csrf := f.cookie(t, cookie.NameCSRF)
	require.NotEmpty(t, csrf)

	resp := f.do(t, http.MethodPost, server.RouteLogout, nil, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	body := decodeError(t, resp)
	require.Equal(t, "forbidden", body.Error)
	require.Equal(t, "Invalid CSRF token", body.ErrorDescription)

	require.Equal(t, http.StatusForbidden, f.do(t, http.MethodPost, server.RouteLogout, nil, csrfHeader(csrf+"x")).StatusCode)

	resp = f.do(t, http.MethodPost, server.RouteLogout, nil, csrfHeader(csrf))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var msg map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&msg))
	require.Equal(t, "Logged out successfully", msg["message"])

	cleared := map[string]bool{}
	for _, c := range resp.Cookies() {
		cleared[c.Name] = c.MaxAge < 0 && c.Value == ""
	}
	require.True(t, cleared[cookie.NameSession])
	require.True(t, cleared[cookie.NameCSRF])

	// the server side record is gone, so the old cookie no longer works
	resp = f.do(t, http.MethodGet, server.RouteMe, nil, http.Header{"Cookie": {"sid=" + sid}})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogout_RequiresSession(t *testing.T) {
	f := setupTestFixture(t, nil)
	resp := f.do(t, http.MethodPost, server.RouteLogout, nil, csrfHeader("anything"))
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPIProxy(t *testing.T) {
	f := setupTestFixture(t, nil)
	f.login(t)
	csrf := f.cookie(t, cookie.NameCSRF)

	resp := f.do(t, http.MethodGet, "/bff/api/items?page=2", nil, http.Header{"X-Custom": {"1"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "api", resp.Header.Get("X-Upstream"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.JSONEq(t, `{"items":[1,2,3]}`, string(body))

	resp = f.do(t, http.MethodPost, "/bff/api/items", strings.NewReader(`{"a":1}`), nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	h := csrfHeader(csrf)
	h.Set("Content-Type", "application/json")
	resp = f.do(t, http.MethodPost, "/bff/api/items/7", strings.NewReader(`{"a":1}`), h)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	reqs := f.upstreamRequests()
	require.Len(t, reqs, 2, "the request without a CSRF token never reaches the upstream")

	require.Equal(t, http.MethodGet, reqs[0].method)
	require.Equal(t, "/items", reqs[0].path)
	require.Equal(t, "page=2", reqs[0].query)
	require.Equal(t, "Bearer access-code-1", reqs[0].header.Get("Authorization"))
	require.Equal(t, "1", reqs[0].header.Get("X-Custom"))
	require.Contains(t, reqs[0].header.Get("Cookie"), "sid=")

	require.Equal(t, http.MethodPost, reqs[1].method)
	require.Equal(t, "/items/7", reqs[1].path)
	require.Equal(t, `{"a":1}`, reqs[1].body)
	require.Equal(t, "application/json", reqs[1].header.Get("Content-Type"))
}

func TestAPIProxy_EscapedPath(t *testing.T) {
	f := setupTestFixture(t, nil)
	f.login(t)

	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/bff/api/files/a%3Fadmin=1?page=2", nil, nil).StatusCode)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/bff/api/docs/a%2Fb", nil, nil).StatusCode)

	reqs := f.upstreamRequests()
	require.Len(t, reqs, 2)
	require.Equal(t, "/files/a%3Fadmin=1", reqs[0].rawPath)
	require.Equal(t, "page=2", reqs[0].query)
	require.Equal(t, "/docs/a%2Fb", reqs[1].rawPath)
	require.Empty(t, reqs[1].query)
}

func TestAPIProxy_RequiresSession(t *testing.T) {
	f := setupTestFixture(t, nil)
	resp := f.do(t, http.MethodGet, "/bff/api/items", nil, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Empty(t, f.upstreamRequests())
}

func TestAPIProxy_NotConfigured(t *testing.T) {
	f := setupTestFixture(t, map[string]string{"API_BASE_URL": ""})
	f.login(t)

	resp := f.do(t, http.MethodGet, "/bff/api/items", nil, nil)
	require.Equal(t, http.StatusNotImplemented, resp.StatusCode)
	require.Equal(t, "API proxying not configured", decodeError(t, resp).ErrorDescription)
}

func TestAPIProxy_UpstreamUnavailable(t *testing.T) {
	f := setupTestFixture(t, nil)
	f.login(t)
	f.upstream.Close()

	resp := f.do(t, http.MethodGet, "/bff/api/items", nil, nil)
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	body := decodeError(t, resp)
	require.Equal(t, "upstream_unavailable", body.Error)
	require.True(t, strings.HasPrefix(body.ErrorDescription, "API request failed: "), body.ErrorDescription)
}

func TestAPIProxy_NoAccessToken(t *testing.T) {
	f := setupTestFixture(t, nil)
	sess := &sessions.Session{ID: "tokenless", CSRFToken: "c", CreatedAt: time.Now()}
	require.NoError(t, f.components.Store.PutSession(context.Background(), sess, time.Hour))
	sealed, err := f.components.Auth.SealSessionID(sess.ID)
	require.NoError(t, err)

	resp := f.do(t, http.MethodGet, "/bff/api/items", nil, http.Header{"Cookie": {"sid=" + sealed}})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "No access token available", decodeError(t, resp).ErrorDescription)
	require.Empty(t, f.upstreamRequests())
}

func TestAPIProxy_RefreshesNearExpiry(t *testing.T) {
	f := setupTestFixture(t, nil)
	// inside the five minute refresh window from the start
	f.idp.SetExpiresIn(60)
	f.login(t)

	resp := f.do(t, http.MethodGet, "/bff/api/items", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, int32(1), f.idp.RefreshCalls.Load())
	reqs := f.upstreamRequests()
	require.Len(t, reqs, 1)
	require.Equal(t, "Bearer refreshed-1", reqs[0].header.Get("Authorization"))
}

func TestAPIProxy_RefreshFailureForwardsExistingToken(t *testing.T) {
	f := setupTestFixture(t, nil)
	f.idp.SetExpiresIn(60)
	f.idp.SetRefreshStatus(http.StatusBadRequest)
	f.login(t)

	resp := f.do(t, http.MethodGet, "/bff/api/items", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, int32(1), f.idp.RefreshCalls.Load())
	require.Equal(t, "Bearer access-code-1", f.upstreamRequests()[0].header.Get("Authorization"))
}

func TestMe_RefreshesNearExpiry(t *testing.T) {
	f := setupTestFixture(t, nil)
	f.idp.SetExpiresIn(60)
	f.login(t)

	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, server.RouteMe, nil, nil).StatusCode)
	require.Equal(t, int32(1), f.idp.RefreshCalls.Load())
}

func TestCORS(t *testing.T) {
	f := setupTestFixture(t, nil)

	preflight := http.Header{
		"Origin":                        {frontendOrigin},
		"Access-Control-Request-Method": {"POST"},
	}
	resp := f.do(t, http.MethodOptions, "/bff/api/items", nil, preflight)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, frontendOrigin, resp.Header.Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
	require.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), "X-CSRF-Token")

	preflight.Set("Origin", "http://evil.test")
	resp = f.do(t, http.MethodOptions, "/bff/api/items", nil, preflight)
	require.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))

	resp = f.do(t, http.MethodGet, "/", nil, http.Header{"Origin": {frontendOrigin}})
	require.Equal(t, frontendOrigin, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestCallbackRateLimit(t *testing.T) {
	f := setupTestFixture(t, map[string]string{"LOGIN_RATE_LIMIT": "0.001", "LOGIN_RATE_BURST": "1"})

	code, state := f.startLogin(t)
	resp := f.callback(t, code, state)
	require.Equal(t, "Authentication failed: Too many requests", errorFromRedirect(t, resp))
	require.Empty(t, f.cookie(t, cookie.NameSession))
}

func TestLoginRateLimit(t *testing.T) {
	f := setupTestFixture(t, map[string]string{"LOGIN_RATE_LIMIT": "0.001", "LOGIN_RATE_BURST": "2"})

	require.Equal(t, http.StatusFound, f.do(t, http.MethodGet, server.RouteLogin, nil, nil).StatusCode)
	require.Equal(t, http.StatusFound, f.do(t, http.MethodGet, server.RouteLogin, nil, nil).StatusCode)

	resp := f.do(t, http.MethodGet, server.RouteLogin, nil, nil)
	require.Equal(t, "Authentication failed: Too many requests", errorFromRedirect(t, resp))
	require.Equal(t, "1", resp.Header.Get("Retry-After"))

	// other routes are not limited
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/", nil, nil).StatusCode)
}

// Package proxy forwards browser API calls to the upstream API with the session's bearer token.
package proxy

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/jrsteele09/go-oidc-bff/instrumentation"
	"github.com/jrsteele09/go-oidc-bff/internal/errors"
	"github.com/jrsteele09/go-oidc-bff/sessions"
	"github.com/jrsteele09/go-oidc-bff/token"
	"github.com/rs/zerolog/log"
)

const defaultTimeout = 30 * time.Second

// skipRequestHeaders are not copied from the inbound request.
var skipRequestHeaders = map[string]struct{}{
	"Host":           {},
	"Content-Length": {},
	"Authorization":  {},
}

// Refresher brings a session's tokens up to date before they are used.
type Refresher interface {
	EnsureFresh(ctx context.Context, sess *sessions.Session) token.Result
}

type Forwarder struct {
	baseURL string
	client  *http.Client
	tokens  Refresher
	metrics *instrumentation.Metrics
}

type Option func(*Forwarder)

// WithHTTPClient replaces the upstream client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Forwarder) {
		f.client = c
	}
}

// WithRefresher makes every forward call EnsureFresh first.
func WithRefresher(r Refresher) Option {
	return func(f *Forwarder) {
		f.tokens = r
	}
}

// WithTimeout bounds each upstream call, including reading the response body.
func WithTimeout(d time.Duration) Option {
	return func(f *Forwarder) {
		f.client.Timeout = d
	}
}

func WithMetrics(m *instrumentation.Metrics) Option {
	return func(f *Forwarder) {
		f.metrics = m
	}
}

// New creates a forwarder for baseURL. An empty baseURL yields a forwarder that refuses every request.
func New(baseURL string, opts ...Option) *Forwarder {
	client := cleanhttp.DefaultPooledClient()
	client.Timeout = defaultTimeout
	// upstream redirects are relayed to the browser, not followed
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	f := &Forwarder{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Forwarder) Configured() bool {
	return f.baseURL != ""
}

// TargetURL joins the base URL, subPath and the inbound raw query.
// subPath must still be escaped, as returned by url.URL.EscapedPath.
func (f *Forwarder) TargetURL(subPath, rawQuery string) string {
	target := f.baseURL + "/" + strings.TrimPrefix(subPath, "/")
	if rawQuery != "" {
		target += "?" + rawQuery
	}
	return target
}

// Forward sends r to the upstream API as sess and relays the response to w.
// subPath is the escaped path below the proxy prefix.
// When it returns an error nothing has been written to w.
func (f *Forwarder) Forward(w http.ResponseWriter, r *http.Request, sess *sessions.Session, subPath string) error {
	if !f.Configured() {
		return errors.ErrNotConfigured
	}
	ctx := r.Context()
	if f.tokens != nil && sess != nil {
		f.tokens.EnsureFresh(ctx, sess)
	}
	if sess == nil || sess.Tokens.AccessToken == "" {
		return errors.ErrNoAccessToken
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, f.TargetURL(subPath, r.URL.RawQuery), r.Body)
	if err != nil {
		return errors.Wrapf(errors.ErrUpstreamUnavailable, "build upstream request: %v", err)
	}
	req.ContentLength = r.ContentLength
	for name, values := range r.Header {
		if _, skip := skipRequestHeaders[http.CanonicalHeaderKey(name)]; skip {
			continue
		}
		req.Header[name] = append([]string(nil), values...)
	}
	req.Header.Set("Authorization", "Bearer "+sess.Tokens.AccessToken)

	resp, err := f.client.Do(req)
	if err != nil {
		f.metrics.RecordProxy(ctx, r.Method, http.StatusBadGateway)
		return errors.Kindf(errors.ErrUpstreamUnavailable, "API request failed: %v", err)
	}
	defer resp.Body.Close()

	for name, values := range resp.Header {
		w.Header()[name] = append([]string(nil), values...)
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		log.Warn().Err(err).Str("method", r.Method).Str("path", subPath).Msg("upstream response copy interrupted")
	}
	f.metrics.RecordProxy(ctx, r.Method, resp.StatusCode)
	return nil
}

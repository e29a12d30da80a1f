// Package discovery fetches and memoizes the identity provider's OpenID configuration and signing keys.
package discovery

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/jrsteele09/go-oidc-bff/internal/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const (
	wellKnownPath  = "/.well-known/openid-configuration"
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

// Document is the subset of provider metadata the gateway uses.
type Document struct {
	Issuer                        string   `json:"issuer"`
	AuthorizationEndpoint         string   `json:"authorization_endpoint"`
	TokenEndpoint                 string   `json:"token_endpoint"`
	UserInfoEndpoint              string   `json:"userinfo_endpoint,omitempty"`
	JWKSURI                       string   `json:"jwks_uri,omitempty"`
	EndSessionEndpoint            string   `json:"end_session_endpoint,omitempty"`
	RevocationEndpoint            string   `json:"revocation_endpoint,omitempty"`
	ScopesSupported               []string `json:"scopes_supported,omitempty"`
	CodeChallengeMethodsSupported []string `json:"code_challenge_methods_supported,omitempty"`
}

// Cache holds the discovery document and key set for one issuer.
// A successful fetch is kept for the life of the process; a failed one leaves the cache cold.
type Cache struct {
	issuer     string
	httpClient *http.Client
	group      singleflight.Group

	mu   sync.RWMutex
	doc  *Document
	jwks *jose.JSONWebKeySet
}

// Option configures a Cache.
type Option func(*Cache)

// WithHTTPClient replaces the pooled client used for fetches.
func WithHTTPClient(c *http.Client) Option {
	return func(cache *Cache) {
		cache.httpClient = c
	}
}

// New creates a cold cache for issuer.
func New(issuer string, opts ...Option) *Cache {
	httpClient := cleanhttp.DefaultPooledClient()
	httpClient.Timeout = defaultTimeout

	c := &Cache{
		issuer:     strings.TrimSuffix(issuer, "/"),
		httpClient: httpClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Issuer returns the issuer URL without a trailing slash.
func (c *Cache) Issuer() string {
	return c.issuer
}

// Config returns the discovery document, fetching it on first use.
// Concurrent callers on a cold cache share a single fetch.
func (c *Cache) Config(ctx context.Context) (*Document, error) {
	c.mu.RLock()
	doc := c.doc
	c.mu.RUnlock()
	if doc != nil {
		return doc, nil
	}

	v, err, _ := c.group.Do("config", func() (interface{}, error) {
		c.mu.RLock()
		doc := c.doc
		c.mu.RUnlock()
		if doc != nil {
			return doc, nil
		}

		doc = &Document{}
		if err := c.getJSON(ctx, c.issuer+wellKnownPath, doc); err != nil {
			return nil, err
		}
		if doc.AuthorizationEndpoint == "" || doc.TokenEndpoint == "" {
			return nil, errors.Kindf(errors.ErrDiscovery, "discovery document for %s is missing required endpoints", c.issuer)
		}

		c.mu.Lock()
		c.doc = doc
		c.mu.Unlock()
		log.Info().Str("issuer", c.issuer).Msg("loaded OIDC discovery document")
		return doc, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Document), nil
}

// JWKS returns the provider's signing keys, fetching them on first use.
func (c *Cache) JWKS(ctx context.Context) (*jose.JSONWebKeySet, error) {
	c.mu.RLock()
	jwks := c.jwks
	c.mu.RUnlock()
	if jwks != nil {
		return jwks, nil
	}

	v, err, _ := c.group.Do("jwks", func() (interface{}, error) {
		c.mu.RLock()
		jwks := c.jwks
		c.mu.RUnlock()
		if jwks != nil {
			return jwks, nil
		}

		doc, err := c.Config(ctx)
		if err != nil {
			return nil, err
		}
		if doc.JWKSURI == "" {
			return nil, errors.Kindf(errors.ErrDiscovery, "discovery document for %s has no jwks_uri", c.issuer)
		}

		jwks = &jose.JSONWebKeySet{}
		if err := c.getJSON(ctx, doc.JWKSURI, jwks); err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.jwks = jwks
		c.mu.Unlock()
		log.Info().Str("issuer", c.issuer).Int("keys", len(jwks.Keys)).Msg("loaded provider signing keys")
		return jwks, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*jose.JSONWebKeySet), nil
}

// Reset drops cached values so the next call fetches again.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.doc = nil
	c.jwks = nil
}

func (c *Cache) getJSON(ctx context.Context, url string, dst any) error {
	// Shared fetches must not be cancelled by whichever caller happened to start them.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Kindf(errors.ErrDiscovery, "invalid discovery url %s: %v", url, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Kindf(errors.ErrDiscovery, "failed to fetch %s: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return errors.Kindf(errors.ErrDiscovery, "failed to fetch %s: status %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(dst); err != nil {
		return errors.Kindf(errors.ErrDiscovery, "failed to decode %s: %v", url, err)
	}
	return nil
}

// Package provider talks to the identity provider's token endpoint on behalf of the gateway.
package provider

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/jrsteele09/go-oidc-bff/discovery"
	"github.com/jrsteele09/go-oidc-bff/internal/errors"
	"golang.org/x/oauth2"
)

const defaultTimeout = 30 * time.Second

// Settings identify the gateway to the provider.
type Settings struct {
	ClientID     string
	ClientSecret string // empty for public clients
	Scopes       []string
}

// Client builds OAuth2 configurations from the cached discovery document.
type Client struct {
	discovery  *discovery.Cache
	settings   Settings
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the client used for token endpoint calls.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

func New(cache *discovery.Cache, settings Settings, opts ...Option) *Client {
	httpClient := &http.Client{
		Transport: cleanhttp.DefaultPooledTransport(),
		Timeout:   defaultTimeout,
	}
	c := &Client{
		discovery:  cache,
		settings:   settings,
		httpClient: httpClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Discovery() *discovery.Cache {
	return c.discovery
}

func (c *Client) ClientID() string {
	return c.settings.ClientID
}

// OAuth2Config returns a config whose endpoints come from discovery.
// Client credentials travel in the form body; the secret only when one is configured.
func (c *Client) OAuth2Config(ctx context.Context, redirectURI string) (*oauth2.Config, error) {
	doc, err := c.discovery.Config(ctx)
	if err != nil {
		return nil, err
	}
	return &oauth2.Config{
		ClientID:     c.settings.ClientID,
		ClientSecret: c.settings.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes:       c.settings.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   doc.AuthorizationEndpoint,
			TokenURL:  doc.TokenEndpoint,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}, nil
}

// Context carries the provider HTTP client for oauth2 and go-oidc calls.
func (c *Client) Context(ctx context.Context) context.Context {
	return oidc.ClientContext(ctx, c.httpClient)
}

// ClassifyTokenError maps a token endpoint failure onto the gateway's error kinds.
// Transport failures are UpstreamUnavailable; anything the provider answered is OIDCError.
func ClassifyTokenError(err error) error {
	if err == nil {
		return nil
	}
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		code := retrieveErr.ErrorCode
		if code == "" {
			code = http.StatusText(retrieveErr.Response.StatusCode)
		}
		if retrieveErr.ErrorDescription != "" {
			return errors.Kindf(errors.ErrOIDC, "Token exchange failed: %s (%s)", code, retrieveErr.ErrorDescription)
		}
		return errors.Kindf(errors.ErrOIDC, "Token exchange failed: %s", code)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return errors.Kindf(errors.ErrUpstreamUnavailable, "Token endpoint unreachable: %v", urlErr.Err)
	}
	return errors.Kindf(errors.ErrOIDC, "Token exchange failed: %v", err)
}

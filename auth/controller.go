// Package auth drives the browser login: authorization request, callback and logout.
package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-oidc-bff/cookie"
	"github.com/jrsteele09/go-oidc-bff/instrumentation"
	"github.com/jrsteele09/go-oidc-bff/internal/errors"
	"github.com/jrsteele09/go-oidc-bff/internal/utils"
	"github.com/jrsteele09/go-oidc-bff/oauthmodel"
	"github.com/jrsteele09/go-oidc-bff/provider"
	"github.com/jrsteele09/go-oidc-bff/sessions"
	"github.com/jrsteele09/go-oidc-bff/token"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	verifierBytes  = 32
	nonceBytes     = 16
	sessionIDBytes = 32
	csrfBytes      = 32
)

// Settings control the authorization flow.
type Settings struct {
	PKCEMethod     oauthmodel.CodeMethodType
	VerifyIDToken  bool
	PendingTimeout time.Duration
	SessionMaxAge  time.Duration
}

// DefaultSettings returns plain PKCE, unverified ID tokens, a 10 minute login window and 24 hour sessions.
func DefaultSettings() Settings {
	return Settings{
		PKCEMethod:     oauthmodel.CodeMethodTypeNone,
		PendingTimeout: 10 * time.Minute,
		SessionMaxAge:  24 * time.Hour,
	}
}

// statePayload is sealed into the state parameter sent to the provider.
type statePayload struct {
	PendingID string `json:"pending_id"`
	Nonce     string `json:"nonce"`
}

type Controller struct {
	provider *provider.Client
	store    sessions.Store
	codec    *cookie.Codec
	settings Settings
	metrics  *instrumentation.Metrics
	nowFunc  func() time.Time
}

type ControllerOption func(*Controller)

func WithMetrics(m *instrumentation.Metrics) ControllerOption {
	return func(c *Controller) {
		c.metrics = m
	}
}

func WithNowFunc(now func() time.Time) ControllerOption {
	return func(c *Controller) {
		c.nowFunc = now
	}
}

func NewController(p *provider.Client, store sessions.Store, codec *cookie.Codec, settings Settings, opts ...ControllerOption) *Controller {
	c := &Controller{
		provider: p,
		store:    store,
		codec:    codec,
		settings: settings,
		nowFunc:  time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login starts an authorization request and returns the provider URL to send the browser to.
func (c *Controller) Login(ctx context.Context, redirectURI string) (string, error) {
	cfg, err := c.provider.OAuth2Config(ctx, redirectURI)
	if err != nil {
		return "", err
	}

	verifier, err := utils.RandomToken(verifierBytes)
	if err != nil {
		return "", err
	}
	challenge, err := oauthmodel.CodeChallenge(verifier, c.settings.PKCEMethod)
	if err != nil {
		return "", errors.Wrapf(err, "login")
	}
	nonce, err := utils.RandomToken(nonceBytes)
	if err != nil {
		return "", err
	}

	pendingID := uuid.NewString()
	state, err := c.codec.Seal(cookie.NameState, statePayload{PendingID: pendingID, Nonce: nonce})
	if err != nil {
		return "", err
	}

	pending := &sessions.Pending{
		ID:           pendingID,
		CodeVerifier: verifier,
		State:        state,
		CreatedAt:    c.nowFunc(),
	}
	if err := c.store.PutPending(ctx, pending, c.settings.PendingTimeout); err != nil {
		return "", errors.Wrapf(err, "failed to store pending authorization")
	}

	c.metrics.RecordLoginStarted(ctx)
	return cfg.AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge", challenge),
		oauth2.SetAuthURLParam("code_challenge_method", string(c.settings.PKCEMethod)),
	), nil
}

// Callback completes the authorization request and creates a session.
// redirectURI must be the same value passed to Login.
func (c *Controller) Callback(ctx context.Context, params oauthmodel.CallbackParameters, redirectURI string) (*sessions.Session, error) {
	sess, err := c.callback(ctx, params, redirectURI)
	c.metrics.RecordCallback(ctx, Outcome(err))
	if err != nil {
		log.Warn().Err(err).Msg("authorization callback failed")
		return nil, err
	}
	log.Info().Str("sub", sess.Subject()).Msg("session created")
	return sess, nil
}

func (c *Controller) callback(ctx context.Context, params oauthmodel.CallbackParameters, redirectURI string) (*sessions.Session, error) {
	if params.Error != "" {
		if params.ErrorDescription != "" {
			return nil, errors.Kindf(errors.ErrOIDC, "Authorization denied: %s (%s)", params.Error, params.ErrorDescription)
		}
		return nil, errors.Kindf(errors.ErrOIDC, "Authorization denied: %s", params.Error)
	}
	if params.Code == "" || params.State == "" {
		return nil, errors.Kindf(errors.ErrOIDC, "Missing code or state parameter")
	}

	pending, err := c.consumePending(ctx, params.State)
	if err != nil {
		return nil, err
	}

	cfg, err := c.provider.OAuth2Config(ctx, redirectURI)
	if err != nil {
		return nil, err
	}
	now := c.nowFunc()
	tk, err := cfg.Exchange(c.provider.Context(ctx), params.Code,
		oauth2.SetAuthURLParam("code_verifier", pending.CodeVerifier),
	)
	if err != nil {
		return nil, provider.ClassifyTokenError(err)
	}

	tokens := token.Merge(sessions.TokenSet{}, tk, now)
	if tokens.IDToken == "" {
		return nil, errors.Kindf(errors.ErrOIDC, "No ID token received")
	}
	claims, err := c.claims(ctx, tokens.IDToken)
	if err != nil {
		return nil, err
	}

	return c.createSession(ctx, claims, tokens)
}

// consumePending checks the sealed state and removes its pending record.
// The record is only removed once the state has matched it.
func (c *Controller) consumePending(ctx context.Context, state string) (*sessions.Pending, error) {
	var payload statePayload
	if err := c.codec.Open(cookie.NameState, state, c.settings.PendingTimeout, &payload); err != nil {
		return nil, errors.Kindf(errors.ErrOIDC, "Invalid or expired state parameter")
	}
	if payload.PendingID == "" {
		return nil, errors.Kindf(errors.ErrOIDC, "Missing pending authorization in state")
	}

	pending, err := c.store.GetPending(ctx, payload.PendingID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load pending authorization")
	}
	if pending == nil {
		return nil, errors.Kindf(errors.ErrOIDC, "Invalid or expired temporary session")
	}
	if !utils.ConstantTimeEqual(state, pending.State) {
		return nil, errors.Kindf(errors.ErrOIDC, "Invalid state parameter")
	}

	removed, err := c.store.DeletePending(ctx, pending.ID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to consume pending authorization")
	}
	if !removed {
		// a concurrent callback with the same state got there first
		return nil, errors.Kindf(errors.ErrOIDC, "Invalid or expired temporary session")
	}
	return pending, nil
}

func (c *Controller) createSession(ctx context.Context, claims map[string]any, tokens sessions.TokenSet) (*sessions.Session, error) {
	id, err := utils.RandomToken(sessionIDBytes)
	if err != nil {
		return nil, err
	}
	csrf, err := utils.RandomToken(csrfBytes)
	if err != nil {
		return nil, err
	}

	sess := &sessions.Session{
		ID:        id,
		Claims:    claims,
		Tokens:    tokens,
		CSRFToken: csrf,
		CreatedAt: c.nowFunc(),
	}
	if err := c.store.PutSession(ctx, sess, c.settings.SessionMaxAge); err != nil {
		return nil, errors.Wrapf(err, "failed to store session")
	}
	return sess, nil
}

// Logout forgets the session. The caller clears the browser cookies.
func (c *Controller) Logout(ctx context.Context, sess *sessions.Session) error {
	if sess == nil {
		return errors.ErrUnauthenticated
	}
	if err := c.store.DeleteSession(ctx, sess.ID); err != nil {
		return errors.Wrapf(err, "failed to delete session")
	}
	log.Info().Str("sub", sess.Subject()).Msg("session ended")
	return nil
}

// VerifyCSRF checks the token presented in X-CSRF-Token against the session's secret.
func (c *Controller) VerifyCSRF(sess *sessions.Session, presented string) error {
	if sess == nil {
		return errors.ErrUnauthenticated
	}
	if presented == "" || !utils.ConstantTimeEqual(presented, sess.CSRFToken) {
		return errors.ErrForbidden
	}
	return nil
}

// SealSessionID produces the value of the sid cookie.
func (c *Controller) SealSessionID(id string) (string, error) {
	return c.codec.Seal(cookie.NameSession, id)
}

// OpenSessionID reverses SealSessionID, rejecting values older than the session lifetime.
func (c *Controller) OpenSessionID(sealed string) (string, error) {
	var id string
	if err := c.codec.Open(cookie.NameSession, sealed, c.settings.SessionMaxAge, &id); err != nil {
		return "", err
	}
	return id, nil
}

func (c *Controller) SessionMaxAge() time.Duration {
	return c.settings.SessionMaxAge
}

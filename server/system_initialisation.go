package server

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-oidc-bff/auth"
	"github.com/jrsteele09/go-oidc-bff/cookie"
	"github.com/jrsteele09/go-oidc-bff/discovery"
	"github.com/jrsteele09/go-oidc-bff/instrumentation"
	"github.com/jrsteele09/go-oidc-bff/internal/config"
	"github.com/jrsteele09/go-oidc-bff/provider"
	"github.com/jrsteele09/go-oidc-bff/proxy"
	"github.com/jrsteele09/go-oidc-bff/sessions"
	"github.com/jrsteele09/go-oidc-bff/sessions/redisstore"
	"github.com/jrsteele09/go-oidc-bff/token"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/metric"
)

// InitialiseComponents builds the store, provider client, controllers and proxy described by config.
// The returned stop function ends background work and closes the store; call it after the
// HTTP server has shut down. A nil meter provider uses the global one.
func InitialiseComponents(ctx context.Context, cfg config.Config, mp metric.MeterProvider) (Components, func(), error) {
	if cfg.GetSessionSecret() == config.DefaultSessionSecret {
		log.Warn().Msg("SESSION_SECRET_KEY is not set; using the built-in default. Set it before deploying")
	}

	metrics, err := instrumentation.New(mp)
	if err != nil {
		return Components{}, nil, fmt.Errorf("[Server InitialiseComponents] failed to create metrics: %w", err)
	}

	store, stopStore, err := initialiseStore(ctx, cfg)
	if err != nil {
		return Components{}, nil, fmt.Errorf("[Server InitialiseComponents] failed to create session store: %w", err)
	}

	codec, err := cookie.NewCodec(cfg.GetSessionSecret())
	if err != nil {
		stopStore()
		return Components{}, nil, fmt.Errorf("[Server InitialiseComponents] failed to create cookie codec: %w", err)
	}

	client := provider.New(discovery.New(cfg.GetIssuer()), provider.Settings{
		ClientID:     cfg.GetClientID(),
		ClientSecret: cfg.GetClientSecret(),
		Scopes:       cfg.GetScopes(),
	})

	controller := auth.NewController(client, store, codec, auth.Settings{
		PKCEMethod:     cfg.GetPKCEMethod(),
		VerifyIDToken:  cfg.GetVerifyIDToken(),
		PendingTimeout: cfg.GetPendingAuthTimeout(),
		SessionMaxAge:  cfg.GetMaxSessionAge(),
	}, auth.WithMetrics(metrics))

	tokens := token.NewManager(client, store,
		token.WithRefreshSkew(cfg.GetRefreshSkew()),
		token.WithMetrics(metrics),
	)

	forwarder := proxy.New(cfg.GetAPIBaseURL(),
		proxy.WithTimeout(cfg.GetUpstreamTimeout()),
		proxy.WithRefresher(tokens),
		proxy.WithMetrics(metrics),
	)

	log.Info().
		Str("issuer", cfg.GetIssuer()).
		Str("client_id", cfg.GetClientID()).
		Str("pkce", string(cfg.GetPKCEMethod())).
		Bool("verify_id_token", cfg.GetVerifyIDToken()).
		Str("session_store", cfg.GetSessionStore()).
		Str("api_base_url", cfg.GetAPIBaseURL()).
		Str("frontend_origin", cfg.GetFrontendOrigin()).
		Msg("gateway configured")

	return Components{
		Store:   store,
		Auth:    controller,
		Tokens:  tokens,
		Proxy:   forwarder,
		Metrics: metrics,
	}, stopStore, nil
}

func initialiseStore(ctx context.Context, c config.Config) (sessions.Store, func(), error) {
	switch c.GetSessionStore() {
	case config.SessionStoreRedis:
		store, err := redisstore.New(ctx, redisstore.Options{
			Addr:      c.GetRedisAddr(),
			Password:  c.GetRedisPassword(),
			DB:        c.GetRedisDB(),
			KeyPrefix: c.GetRedisKeyPrefix(),
		})
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to close redis store")
			}
		}, nil
	case config.SessionStoreMemory:
		store := sessions.NewInMemoryStore()
		sweepCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		if interval := c.GetSweepInterval(); interval > 0 {
			store.StartSweeper(sweepCtx, interval)
		}
		return store, cancel, nil
	default:
		return nil, nil, fmt.Errorf("unknown session store %q", c.GetSessionStore())
	}
}

package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-oidc-bff/auth"
	"github.com/jrsteele09/go-oidc-bff/instrumentation"
	"github.com/jrsteele09/go-oidc-bff/internal/config"
	"github.com/jrsteele09/go-oidc-bff/proxy"
	"github.com/jrsteele09/go-oidc-bff/sessions"
	"github.com/jrsteele09/go-oidc-bff/token"
	"github.com/rs/zerolog/log"
)

// Components are the collaborators a Server routes requests to.
type Components struct {
	Store   sessions.Store
	Auth    *auth.Controller
	Tokens  *token.Manager
	Proxy   *proxy.Forwarder
	Metrics *instrumentation.Metrics
}

type Server struct {
	env     string // Environment (e.g., "DEV", "PROD")
	mux     *http.ServeMux
	handler http.Handler
	routes  []string
	config  config.Config

	store   sessions.Store
	auth    *auth.Controller
	tokens  *token.Manager
	proxy   *proxy.Forwarder
	metrics *instrumentation.Metrics
	limiter *ipRateLimiter
}

func New(config config.Config, c Components) *Server {
	s := &Server{
		env:     config.GetEnv(),
		mux:     http.NewServeMux(),
		config:  config,
		store:   c.Store,
		auth:    c.Auth,
		tokens:  c.Tokens,
		proxy:   c.Proxy,
		metrics: c.Metrics,
		limiter: newIPRateLimiter(config.GetLoginRateLimit(), config.GetLoginRateBurst()),
	}

	s.initRoutes()
	s.logRoutes()

	// CORS sits outside the mux so preflight requests never need a route.
	s.handler = ChainMiddleware(s.mux.ServeHTTP,
		s.RequestIDMiddleware,
		s.RecoverMiddleware,
		s.LoggingMiddleware,
		s.CorsMiddleware,
		s.FrameSecurityMiddleware,
	)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Info().Msgf("[%-19s] %s", colourMethod(method), path)
}

func colourMethod(method string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		return color + paddedMethod + ResetColor
	}
	return Gray + paddedMethod + ResetColor
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}

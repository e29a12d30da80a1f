package server

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteRoot, s.IndexHandler())

	// LOGIN
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginHandler(), s.RateLimitMiddleware))
	s.RegisterRouteHandler("GET "+s.config.GetRedirectPath(), ChainMiddleware(s.CallbackHandler(), s.RateLimitMiddleware))

	// SESSION
	s.RegisterRouteHandler("GET "+RouteMe, ChainMiddleware(s.MeHandler(), s.RequireSession))
	s.RegisterRouteHandler("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.RequireSession, s.RequireCSRF))

	// API proxy; RequireCSRF lets safe verbs through
	for _, method := range proxiedMethods {
		s.RegisterRouteHandler(method+" "+RouteAPI, ChainMiddleware(s.APIProxyHandler(), s.RequireSession, s.RequireCSRF))
	}
}

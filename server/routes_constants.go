package server

// Route path constants
// The callback path comes from configuration (REDIRECT_PATH).
const (
	RouteRoot   = "/{$}"
	RouteLogin  = "/bff/login"
	RouteMe     = "/bff/me"
	RouteLogout = "/bff/logout"

	// RouteAPIPrefix is the prefix stripped before a request is forwarded upstream.
	RouteAPIPrefix = "/bff/api/"
	RouteAPI       = RouteAPIPrefix + "{path...}"
)

var proxiedMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH"}

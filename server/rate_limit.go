package server

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const limiterIdleTimeout = 10 * time.Minute

const rateLimitedMessage = "Authentication failed: Too many requests"

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipRateLimiter keeps one token bucket per client address.
type ipRateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	lastPrune time.Time
	nowFunc   func() time.Time
}

// newIPRateLimiter returns nil, meaning unlimited, when perSecond is not positive.
func newIPRateLimiter(perSecond float64, burst int) *ipRateLimiter {
	if perSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &ipRateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(perSecond),
		burst:    burst,
		nowFunc:  time.Now,
	}
}

func (l *ipRateLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFunc()
	l.prune(now)

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// prune drops idle visitors at most once per idle period. Caller holds l.mu.
func (l *ipRateLimiter) prune(now time.Time) {
	if now.Sub(l.lastPrune) < limiterIdleTimeout {
		return
	}
	l.lastPrune = now
	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) > limiterIdleTimeout {
			delete(l.visitors, key)
		}
	}
}

// clientIP is the peer address of the connection. Forwarding headers are not trusted.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimitMiddleware throttles the login endpoints per client address. They are browser
// navigations, so a throttled request is sent back to the frontend with an error.
func (s *Server) RateLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow(clientIP(r)) {
			s.metrics.RecordRateLimitExceeded(r.Context(), r.URL.Path)
			zerolog.Ctx(r.Context()).Warn().Str("client_ip", clientIP(r)).Str("path", r.URL.Path).Msg("rate limit exceeded")
			w.Header().Set("Retry-After", "1")
			s.redirectWithError(w, r, rateLimitedMessage)
			return
		}
		next(w, r)
	}
}

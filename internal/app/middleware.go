package app

import (
	"net/http"
	"strings"
	"sync"

	"github.com/bizmate/bizmate/internal/auth"
	"github.com/bizmate/bizmate/internal/config"
	"github.com/bizmate/bizmate/internal/rest"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// publicPrefixes are served without a bearer token.
var publicPrefixes = []string{
	"/api/auth/",
	"/metrics",
}

// SetupMiddleware wires all HTTP middlewares for the application.
func SetupMiddleware(r *mux.Router, deps *Dependencies, cfg config.Application) {
	r.Use(deps.Metrics.Middleware)

	// Parse the bearer token and attach verified claims to the context.
	// Requests without a token pass through; handlers reject them when they
	// need a principal. An invalid or expired token is always a 401 so
	// clients drop it and fall back to login.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			header := req.Header.Get("Authorization")
			if header == "" || isPublic(req.URL.Path) {
				next.ServeHTTP(w, req)
				return
			}

			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				rest.WriteError(w, http.StatusUnauthorized, "Invalid authorization header", "")
				return
			}

			claims, err := deps.Tokens.Parse(tokenString)
			if err != nil {
				log.Debugf("rejected token: %v", err)
				rest.WriteError(w, http.StatusUnauthorized, "Invalid or expired token", "")
				return
			}

			ctx := auth.WithClaims(req.Context(), claims)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
}

func isPublic(path string) bool {
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// chatRateLimiter throttles chat sends per account.
type chatRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newChatRateLimiter(requestsPerMinute int) *chatRateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 20
	}
	return &chatRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(float64(requestsPerMinute) / 60.0),
		burst:    requestsPerMinute,
	}
}

func (l *chatRateLimiter) limiterFor(accountId string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	limiter, ok := l.limiters[accountId]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[accountId] = limiter
	}
	return limiter
}

// Wrap applies per-account rate limiting to a handler. Unauthenticated
// requests pass through and get rejected downstream.
func (l *chatRateLimiter) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		accountId, err := auth.CurrentAccountId(req.Context())
		if err != nil {
			next(w, req)
			return
		}
		if !l.limiterFor(accountId).Allow() {
			rest.WriteError(w, http.StatusTooManyRequests, "Too many chat requests, slow down", "")
			return
		}
		next(w, req)
	}
}

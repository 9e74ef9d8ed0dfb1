package ratelimit

import (
	"crypto/subtle"
	"encoding/json"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/SteamVC/realtime/internal/auth"
)

// BypassHeader carries the load-testing bypass token.
const BypassHeader = "X-RateLimit-Bypass"

// MiddlewareConfig controls which requests are subject to limiting.
type MiddlewareConfig struct {
	// ExemptPaths are matched exactly, e.g. health checks.
	ExemptPaths []string
	// BypassToken enables BypassHeader when non-empty. Empty disables it.
	BypassToken string
}

// rejection is the 429 body.
type rejection struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retryAfter"`
}

// Middleware applies the limiter to every request that is not exempt.
func (l *Limiter) Middleware(cfg MiddlewareConfig) func(http.Handler) http.Handler {
	exempt := make(map[string]struct{}, len(cfg.ExemptPaths))
	for _, p := range cfg.ExemptPaths {
		exempt[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exempt[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}
			if cfg.BypassToken != "" {
				got := r.Header.Get(BypassHeader)
				if got != "" && subtle.ConstantTimeCompare([]byte(got), []byte(cfg.BypassToken)) == 1 {
					next.ServeHTTP(w, r)
					return
				}
			}

			key := ClientKey(r)
			d, ok := l.safeAllow(key)
			if !ok {
				// Limiter fault: admit rather than turn it into an outage.
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			if !d.Allowed {
				secs := int(math.Ceil(d.RetryAfter.Seconds()))
				if secs < 1 {
					secs = 1
				}
				l.log.Info("rate limit exceeded",
					zap.String("client", key),
					zap.String("path", r.URL.Path),
					zap.Int("retryAfter", secs))
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(rejection{
					StatusCode: http.StatusTooManyRequests,
					Message:    "Too many requests, please try again later.",
					RetryAfter: secs,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// safeAllow reports ok=false if the limiter panicked.
func (l *Limiter) safeAllow(key string) (d Decision, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			l.log.Error("rate limiter fault, failing open", zap.Any("panic", rec), zap.String("client", key))
			ok = false
		}
	}()
	return l.Allow(key), true
}

// ClientKey identifies the caller: the authenticated user when known,
// otherwise the remote address without its port.
func ClientKey(r *http.Request) string {
	if p, ok := auth.FromContext(r.Context()); ok {
		return "user:" + p.UserId
	}
	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	return "ip:" + addr
}

package ratelimit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/SteamVC/realtime/internal/auth"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
}

func get(h http.Handler, path, remote string, hdr map[string]string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodGet, path, nil)
	r.RemoteAddr = remote
	for k, v := range hdr {
		r.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestMiddleware_RejectsWith429Contract(t *testing.T) {
	req := require.New(t)
	l, _ := newTestLimiter(5, time.Minute)
	h := l.Middleware(MiddlewareConfig{})(okHandler())

	for i := 0; i < 5; i++ {
		w := get(h, "/api/v1/presence/online", "10.0.0.1:5000", nil)
		req.Equal(http.StatusOK, w.Code)
		req.Equal("5", w.Header().Get("X-RateLimit-Limit"))
		req.Equal(strconv.Itoa(4-i), w.Header().Get("X-RateLimit-Remaining"))
	}

	w := get(h, "/api/v1/presence/online", "10.0.0.1:5001", nil)
	req.Equal(http.StatusTooManyRequests, w.Code)
	req.Equal("60", w.Header().Get("Retry-After"))

	var body struct {
		StatusCode int    `json:"statusCode"`
		Message    string `json:"message"`
		RetryAfter int    `json:"retryAfter"`
	}
	req.NoError(json.Unmarshal(w.Body.Bytes(), &body))
	req.Equal(429, body.StatusCode)
	req.NotEmpty(body.Message)
	req.Equal(60, body.RetryAfter)

	// Different address, separate window.
	req.Equal(http.StatusOK, get(h, "/api/v1/presence/online", "10.0.0.2:5000", nil).Code)
}

func TestMiddleware_ExemptPaths(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute)
	h := l.Middleware(MiddlewareConfig{ExemptPaths: []string{"/api/v1/healthz"}})(okHandler())

	for i := 0; i < 10; i++ {
		require.Equal(t, http.StatusOK, get(h, "/api/v1/healthz", "10.0.0.1:1", nil).Code)
	}
	require.Equal(t, 0, l.Tracked())
}

func TestMiddleware_BypassRequiresConfiguredToken(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute)
	disabled := l.Middleware(MiddlewareConfig{})(okHandler())
	enabled := l.Middleware(MiddlewareConfig{BypassToken: "load-test"})(okHandler())
	hdr := map[string]string{BypassHeader: "load-test"}

	require.Equal(t, http.StatusOK, get(disabled, "/x", "10.0.0.9:1", hdr).Code)
	require.Equal(t, http.StatusTooManyRequests, get(disabled, "/x", "10.0.0.9:1", hdr).Code)

	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusOK, get(enabled, "/x", "10.0.0.9:1", hdr).Code)
	}
	require.Equal(t, http.StatusTooManyRequests,
		get(enabled, "/x", "10.0.0.9:1", map[string]string{BypassHeader: "wrong"}).Code)
}

func TestMiddleware_KeysByUserWhenAuthenticated(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute)
	inner := l.Middleware(MiddlewareConfig{})(okHandler())
	withUser := func(id string) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			inner.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), auth.Principal{UserId: id})))
		})
	}

	require.Equal(t, http.StatusOK, get(withUser("u1"), "/x", "10.0.0.1:1", nil).Code)
	// Same address, different user: independent.
	require.Equal(t, http.StatusOK, get(withUser("u2"), "/x", "10.0.0.1:1", nil).Code)
	require.Equal(t, http.StatusTooManyRequests, get(withUser("u1"), "/x", "10.0.0.2:1", nil).Code)
}

func TestMiddleware_FailsOpenOnLimiterFault(t *testing.T) {
	l := New(Config{Limit: 1, Window: time.Minute}, nil)
	l.now = func() time.Time { panic("clock exploded") }
	h := l.Middleware(MiddlewareConfig{})(okHandler())

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, get(h, "/x", "10.0.0.1:1", nil).Code)
	}
}

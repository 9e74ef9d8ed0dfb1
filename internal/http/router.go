package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/SteamVC/realtime/internal/auth"
	"github.com/SteamVC/realtime/internal/handlers"
	"github.com/SteamVC/realtime/internal/ratelimit"
)

const healthPath = "/api/v1/healthz"

// RouterDeps gathers what NewRouter mounts.
type RouterDeps struct {
	API            *handlers.APIHandler
	WebSocket      *handlers.WebSocketHandler
	Auth           auth.Authenticator
	Limiter        *ratelimit.Limiter
	BypassToken    string
	AllowedOrigins []string
}

// NewRouter authenticates optionally, then rate limits every request except
// the health check. Principal resolution runs first so limits key on the user.
func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)

	if len(d.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   d.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", ratelimit.BypassHeader},
			ExposedHeaders:   []string{"Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Use(auth.Optional(d.Auth))
	r.Use(d.Limiter.Middleware(ratelimit.MiddlewareConfig{
		ExemptPaths: []string{healthPath},
		BypassToken: d.BypassToken,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthz", d.API.Healthz)
		r.Get("/ws", d.WebSocket.HandleWebSocket)
		r.Get("/presence/online", d.API.OnlineUsers)
		r.Post("/presence/heartbeat", d.API.Heartbeat)
		r.Get("/voice/{channelId}/members", d.API.VoiceMembers)
		r.Get("/mentions", d.API.Mentions)
	})

	return r
}

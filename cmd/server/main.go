package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/SteamVC/realtime/internal/auth"
	"github.com/SteamVC/realtime/internal/config"
	"github.com/SteamVC/realtime/internal/handlers"
	httpx "github.com/SteamVC/realtime/internal/http"
	"github.com/SteamVC/realtime/internal/idgen"
	"github.com/SteamVC/realtime/internal/logx"
	"github.com/SteamVC/realtime/internal/mention"
	"github.com/SteamVC/realtime/internal/presence"
	"github.com/SteamVC/realtime/internal/ratelimit"
	"github.com/SteamVC/realtime/internal/realtime"
	"github.com/SteamVC/realtime/internal/repo"
	"github.com/SteamVC/realtime/internal/repo/sqlite"
	"github.com/SteamVC/realtime/internal/service"
	"github.com/SteamVC/realtime/internal/voice"
)

const maintenanceInterval = time.Minute

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logx.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	nodeID := cfg.NodeID
	if nodeID == "" {
		if nodeID, err = idgen.NewNodeID(); err != nil {
			return err
		}
	}
	log = log.With(zap.String("node", nodeID))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		return err
	}
	defer store.Close()
	for _, ch := range cfg.Channels() {
		if err := store.EnsureChannel(ctx, ch.ID, ch.Public); err != nil {
			return err
		}
	}

	var (
		presenceStore repo.PresenceRepo = repo.NewMemoryPresenceRepo()
		voiceStore    repo.VoiceRepo    = repo.NewMemoryVoiceRepo()
		backplane     realtime.Backplane
		pruner        *repo.RedisPresenceRepo
	)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:         cfg.RedisAddr,
			PoolSize:     10,
			MinIdleConns: 5,
			MaxRetries:   3,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolTimeout:  4 * time.Second,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		log.Info("connected to redis", zap.String("addr", cfg.RedisAddr))

		pruner = repo.NewRedisPresenceRepo(rdb)
		presenceStore = pruner
		voiceStore = repo.NewRedisVoiceRepo(rdb)
		backplane = realtime.NewRedisBackplane(rdb, realtime.DefaultBackplaneChannel, log)
	} else {
		log.Warn("REDIS_ADDR not set, presence and voice state are process-local")
	}

	hub := realtime.NewHub(nodeID, backplane, log)
	tracker := presence.NewTracker(presenceStore, hub, cfg.PresenceWindow, log)
	roster := voice.NewRoster(voiceStore, hub, log)
	fanout := mention.NewFanout(store, hub, log)
	svc := service.NewChatService(service.Deps{
		Messages:  store,
		Reactions: store,
		Reads:     store,
		Hub:       hub,
		Mentions:  fanout,
		Voice:     roster,
		Presence:  tracker,
		Log:       log,
	})

	authn := auth.NewJWTAuthenticator(cfg.JWTSecret)
	limiter := ratelimit.New(ratelimit.Config{
		Limit:          cfg.RateLimit.Max,
		Window:         cfg.RateLimit.Window,
		SweepThreshold: cfg.RateLimit.SweepThreshold,
	}, log)

	router := httpx.NewRouter(httpx.RouterDeps{
		API: handlers.NewAPIHandler(tracker, roster, fanout, log),
		WebSocket: handlers.NewWebSocketHandler(svc, authn, handlers.GatewayConfig{
			SendBuffer:     cfg.WSSendBuffer,
			CommandTimeout: cfg.CommandTimeout,
			AllowedOrigins: cfg.AllowedOrigins,
		}, log),
		Auth:           authn,
		Limiter:        limiter,
		BypassToken:    cfg.RateLimit.BypassToken,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.APIAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", cfg.APIAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return hub.Run(gctx)
	})
	g.Go(func() error {
		maintain(gctx, limiter, pruner, cfg.PresenceWindow, log)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		hub.Shutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	err = g.Wait()
	limiter.Wait()
	log.Info("server stopped")
	return err
}

// maintain sweeps idle rate limit clients and, with Redis, drops last-seen
// entries that fell out of the presence window.
func maintain(ctx context.Context, limiter *ratelimit.Limiter, pruner *repo.RedisPresenceRepo, window time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(maintenanceInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := limiter.Sweep(); n > 0 {
				log.Debug("rate limiter swept", zap.Int("evicted", n))
			}
			if pruner == nil {
				continue
			}
			// Entries older than two windows can no longer count as online.
			if n, err := pruner.Prune(ctx, now.Add(-2*window)); err != nil {
				log.Warn("presence prune failed", zap.Error(err))
			} else if n > 0 {
				log.Debug("presence pruned", zap.Int64("removed", n))
			}
		}
	}
}

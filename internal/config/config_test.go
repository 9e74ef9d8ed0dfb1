package config

import (
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/require"
)

func parseMap(vars map[string]string) (Config, error) {
	return parse(env.Options{Environment: vars})
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := parseMap(map[string]string{"JWT_SECRET": "0123456789abcdef"})
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.APIAddr)
	require.Empty(t, cfg.RedisAddr)
	require.Equal(t, 100, cfg.RateLimit.Max)
	require.Equal(t, time.Minute, cfg.RateLimit.Window)
	require.Equal(t, 1000, cfg.RateLimit.SweepThreshold)
	require.Empty(t, cfg.RateLimit.BypassToken)
	require.Equal(t, 5*time.Minute, cfg.PresenceWindow)
	require.Equal(t, 256, cfg.WSSendBuffer)
	require.Equal(t, 10*time.Second, cfg.CommandTimeout)
	require.Len(t, cfg.AllowedOrigins, 3)
	require.Equal(t, []SeedChannel{{ID: "general", Public: true}}, cfg.Channels())
}

func TestParse_Overrides(t *testing.T) {
	cfg, err := parseMap(map[string]string{
		"JWT_SECRET":                 "0123456789abcdef",
		"REDIS_ADDR":                 "redis:6379",
		"RATE_LIMIT_MAX":             "5",
		"RATE_LIMIT_WINDOW":          "30s",
		"RATE_LIMIT_BYPASS_TOKEN":    "load-test",
		"CORS_ALLOWED_ORIGINS":       "https://app.example.com",
		"SEED_CHANNELS":              "general, staff:private,,general",
		"LOG_LEVEL":                  "debug",
		"RATE_LIMIT_SWEEP_THRESHOLD": "10",
	})
	require.NoError(t, err)

	require.Equal(t, "redis:6379", cfg.RedisAddr)
	require.Equal(t, 5, cfg.RateLimit.Max)
	require.Equal(t, 30*time.Second, cfg.RateLimit.Window)
	require.Equal(t, 10, cfg.RateLimit.SweepThreshold)
	require.Equal(t, "load-test", cfg.RateLimit.BypassToken)
	require.Equal(t, []string{"https://app.example.com"}, cfg.AllowedOrigins)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, []SeedChannel{
		{ID: "general", Public: true},
		{ID: "staff", Public: false},
	}, cfg.Channels())
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]map[string]string{
		"missing secret": {},
		"short secret":   {"JWT_SECRET": "short"},
		"zero limit":     {"JWT_SECRET": "0123456789abcdef", "RATE_LIMIT_MAX": "0"},
		"bad duration":   {"JWT_SECRET": "0123456789abcdef", "PRESENCE_WINDOW": "soon"},
		"bad log level":  {"JWT_SECRET": "0123456789abcdef", "LOG_LEVEL": "loud"},
	}
	for name, vars := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseMap(vars)
			require.Error(t, err)
		})
	}
}

// Package config loads server settings from the environment. An optional
// .env file in the working directory is read first; real environment
// variables win over it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds everything cmd/server needs to wire the process.
type Config struct {
	APIAddr string `env:"API_ADDR" envDefault:":8080"`
	// RedisAddr empty keeps presence and voice state in memory and disables
	// the cross-node backplane.
	RedisAddr  string `env:"REDIS_ADDR"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"realtime.db" validate:"required"`
	JWTSecret  string `env:"JWT_SECRET,required,notEmpty" validate:"min=16"`

	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:3001,http://localhost:3002"`

	RateLimit RateLimitConfig `envPrefix:"RATE_LIMIT_"`

	PresenceWindow time.Duration `env:"PRESENCE_WINDOW" envDefault:"5m" validate:"gt=0"`
	WSSendBuffer   int           `env:"WS_SEND_BUFFER" envDefault:"256" validate:"gt=0"`
	CommandTimeout time.Duration `env:"COMMAND_TIMEOUT" envDefault:"10s" validate:"gt=0"`

	// SeedChannels are created as public channels at startup. A trailing
	// ":private" makes one members-only.
	SeedChannels []string `env:"SEED_CHANNELS" envSeparator:"," envDefault:"general"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	// NodeID names this process on the backplane; generated when empty.
	NodeID string `env:"NODE_ID"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s" validate:"gt=0"`
}

// RateLimitConfig tunes the HTTP rate limiter (RATE_LIMIT_* keys).
type RateLimitConfig struct {
	Max            int           `env:"MAX" envDefault:"100" validate:"gt=0"`
	Window         time.Duration `env:"WINDOW" envDefault:"60s" validate:"gt=0"`
	SweepThreshold int           `env:"SWEEP_THRESHOLD" envDefault:"1000" validate:"gt=0"`
	// BypassToken empty disables the bypass header.
	BypassToken string `env:"BYPASS_TOKEN"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads .env (if present) and the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return parse(env.Options{})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SeedChannel is one entry of SEED_CHANNELS.
type SeedChannel struct {
	ID     string
	Public bool
}

// Channels parses SeedChannels, skipping blanks and duplicates.
func (c Config) Channels() []SeedChannel {
	out := make([]SeedChannel, 0, len(c.SeedChannels))
	seen := make(map[string]struct{}, len(c.SeedChannels))
	for _, raw := range c.SeedChannels {
		id, private := strings.CutSuffix(strings.TrimSpace(raw), ":private")
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, SeedChannel{ID: id, Public: !private})
	}
	return out
}

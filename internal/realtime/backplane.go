package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Scope selects which connections an envelope targets.
type Scope string

const (
	ScopeConn  Scope = "conn"
	ScopeGroup Scope = "group"
	ScopeUser  Scope = "user"
	ScopeAll   Scope = "all"
)

// Envelope is a pre-encoded frame plus its routing, as exchanged between nodes.
type Envelope struct {
	Origin  string          `json:"origin"`
	Scope   Scope           `json:"scope"`
	Key     string          `json:"key,omitempty"`
	Exclude string          `json:"exclude,omitempty"`
	Frame   json.RawMessage `json:"frame"`
}

// Backplane propagates broadcasts between server processes.
type Backplane interface {
	Publish(ctx context.Context, env Envelope) error
	// Subscribe delivers every envelope published by any node until ctx ends.
	Subscribe(ctx context.Context, handle func(Envelope)) error
}

// DefaultBackplaneChannel is the Redis pub/sub channel used between nodes.
const DefaultBackplaneChannel = "realtime:broadcast"

// RedisBackplane carries envelopes over Redis pub/sub.
type RedisBackplane struct {
	rdb     redis.UniversalClient
	channel string
	log     *zap.Logger
}

// NewRedisBackplane publishes on channel, or DefaultBackplaneChannel when empty.
func NewRedisBackplane(rdb redis.UniversalClient, channel string, log *zap.Logger) *RedisBackplane {
	if channel == "" {
		channel = DefaultBackplaneChannel
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisBackplane{rdb: rdb, channel: channel, log: log}
}

// Publish sends env to every subscribed node.
func (b *RedisBackplane) Publish(ctx context.Context, env Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	if err := b.rdb.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", b.channel, err)
	}
	return nil
}

// Subscribe calls handle for each envelope until ctx is done.
func (b *RedisBackplane) Subscribe(ctx context.Context, handle func(Envelope)) error {
	sub := b.rdb.Subscribe(ctx, b.channel)
	defer sub.Close()

	// Wait for the subscription confirmation before reporting readiness.
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe to %s: %w", b.channel, err)
	}
	b.log.Info("backplane subscribed", zap.String("channel", b.channel))

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			var env Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				b.log.Warn("dropping malformed backplane envelope", zap.Error(err))
				continue
			}
			handle(env)
		}
	}
}

package repo

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	lastSeenKey = "presence:last_seen"
	sessionsKey = "presence:sessions"
)

// RedisPresenceRepo keeps last-active times in a sorted set scored by unix
// milliseconds and session counts in a hash, so every node sees the same view.
type RedisPresenceRepo struct{ rdb redis.UniversalClient }

// NewRedisPresenceRepo returns a presence store on rdb.
func NewRedisPresenceRepo(rdb redis.UniversalClient) *RedisPresenceRepo {
	return &RedisPresenceRepo{rdb: rdb}
}

func (rp *RedisPresenceRepo) SetLastSeen(ctx context.Context, userID string, at time.Time) error {
	z := redis.Z{Score: float64(at.UnixMilli()), Member: userID}
	if err := rp.rdb.ZAdd(ctx, lastSeenKey, z).Err(); err != nil {
		return fmt.Errorf("set last seen %s: %w", userID, err)
	}
	return nil
}

func (rp *RedisPresenceRepo) SeenSince(ctx context.Context, cutoff time.Time) ([]string, error) {
	ids, err := rp.rdb.ZRangeByScore(ctx, lastSeenKey, &redis.ZRangeBy{
		Min: strconv.FormatInt(cutoff.UnixMilli(), 10),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("seen since: %w", err)
	}
	return ids, nil
}

// adjustSessionsScript increments the counter and removes the field once it
// reaches zero, atomically.
var adjustSessionsScript = redis.NewScript(`
	local n = redis.call('HINCRBY', KEYS[1], ARGV[1], ARGV[2])
	if n <= 0 then
		redis.call('HDEL', KEYS[1], ARGV[1])
		return 0
	end
	return n
`)

func (rp *RedisPresenceRepo) AdjustSessions(ctx context.Context, userID string, delta int64) (int64, error) {
	n, err := adjustSessionsScript.Run(ctx, rp.rdb, []string{sessionsKey}, userID, delta).Int64()
	if err != nil {
		return 0, fmt.Errorf("adjust sessions %s: %w", userID, err)
	}
	return n, nil
}

// Prune drops last-seen entries older than cutoff.
func (rp *RedisPresenceRepo) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	return rp.rdb.ZRemRangeByScore(ctx, lastSeenKey, "-inf", "("+strconv.FormatInt(cutoff.UnixMilli(), 10)).Result()
}

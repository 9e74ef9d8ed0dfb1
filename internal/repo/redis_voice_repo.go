package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/SteamVC/realtime/internal/models"
)

// RedisVoiceRepo stores each voice channel's roster as a hash of userId to
// the member encoded as JSON, next to a hash of per-user session counts.
type RedisVoiceRepo struct {
	rdb redis.UniversalClient
}

// NewRedisVoiceRepo returns a roster store on rdb.
func NewRedisVoiceRepo(rdb redis.UniversalClient) *RedisVoiceRepo {
	return &RedisVoiceRepo{rdb: rdb}
}

func rosterKey(channelID string) string {
	return fmt.Sprintf("voice:%s:members", channelID)
}

func voiceSessionsKey(channelID string) string {
	return fmt.Sprintf("voice:%s:sessions", channelID)
}

// addMemberScript counts a session and stores the member on the first one.
// Returns {sessions, stored member}.
var addMemberScript = redis.NewScript(`
	local n = redis.call('HINCRBY', KEYS[2], ARGV[1], 1)
	local v = redis.call('HGET', KEYS[1], ARGV[1])
	if not v then
		redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
		v = ARGV[2]
	end
	return {n, v}
`)

// removeMemberScript drops a session and the member with the last one.
// Returns {sessions left, member}, or false when the user is not listed.
var removeMemberScript = redis.NewScript(`
	local v = redis.call('HGET', KEYS[1], ARGV[1])
	if not v then
		redis.call('HDEL', KEYS[2], ARGV[1])
		return false
	end
	local n = redis.call('HINCRBY', KEYS[2], ARGV[1], -1)
	if n <= 0 then
		redis.call('HDEL', KEYS[1], ARGV[1])
		redis.call('HDEL', KEYS[2], ARGV[1])
		n = 0
	end
	return {n, v}
`)

func (r *RedisVoiceRepo) AddMember(ctx context.Context, vm models.VoiceMember) (models.VoiceMember, int64, error) {
	b, err := json.Marshal(vm)
	if err != nil {
		return models.VoiceMember{}, 0, err
	}
	keys := []string{rosterKey(vm.ChannelId), voiceSessionsKey(vm.ChannelId)}
	res, err := addMemberScript.Run(ctx, r.rdb, keys, vm.UserId, b).Slice()
	if err != nil {
		return models.VoiceMember{}, 0, fmt.Errorf("add voice member %s/%s: %w", vm.ChannelId, vm.UserId, err)
	}
	return decodeSessionReply(res)
}

func (r *RedisVoiceRepo) RemoveMember(ctx context.Context, channelID, userID string) (models.VoiceMember, int64, error) {
	keys := []string{rosterKey(channelID), voiceSessionsKey(channelID)}
	res, err := removeMemberScript.Run(ctx, r.rdb, keys, userID).Slice()
	if errors.Is(err, redis.Nil) {
		return models.VoiceMember{}, 0, ErrNotFound
	}
	if err != nil {
		return models.VoiceMember{}, 0, fmt.Errorf("remove voice member %s/%s: %w", channelID, userID, err)
	}
	return decodeSessionReply(res)
}

// decodeSessionReply reads the {count, member JSON} pair the scripts return.
func decodeSessionReply(res []any) (models.VoiceMember, int64, error) {
	if len(res) != 2 {
		return models.VoiceMember{}, 0, fmt.Errorf("unexpected voice script reply %v", res)
	}
	n, ok := res[0].(int64)
	raw, ok2 := res[1].(string)
	if !ok || !ok2 {
		return models.VoiceMember{}, 0, fmt.Errorf("unexpected voice script reply %v", res)
	}
	var m models.VoiceMember
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return models.VoiceMember{}, 0, err
	}
	return m, n, nil
}

// UpdateMember rewrites the flags under WATCH so a concurrent leave is not
// resurrected.
func (r *RedisVoiceRepo) UpdateMember(ctx context.Context, channelID, userID string, muted, deafened bool) (models.VoiceMember, error) {
	key := rosterKey(channelID)
	var updated models.VoiceMember
	err := r.rdb.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.HGet(ctx, key, userID).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		var m models.VoiceMember
		if err := json.Unmarshal(raw, &m); err != nil {
			return err
		}
		m.IsMuted, m.IsDeafened = muted, deafened
		b, err := json.Marshal(m)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, userID, b)
			return nil
		})
		if err == nil {
			updated = m
		}
		return err
	}, key)
	if err != nil {
		return models.VoiceMember{}, fmt.Errorf("update voice member %s/%s: %w", channelID, userID, err)
	}
	return updated, nil
}

func (r *RedisVoiceRepo) ListMembers(ctx context.Context, channelID string) ([]models.VoiceMember, error) {
	vals, err := r.rdb.HGetAll(ctx, rosterKey(channelID)).Result()
	if err != nil {
		return nil, err
	}
	res := make([]models.VoiceMember, 0, len(vals))
	for _, raw := range vals {
		var m models.VoiceMember
		if json.Unmarshal([]byte(raw), &m) == nil {
			res = append(res, m)
		}
	}
	sortMembers(res)
	return res, nil
}

// sortMembers orders a roster by join time, then user id.
func sortMembers(ms []models.VoiceMember) {
	sort.Slice(ms, func(i, j int) bool {
		if !ms[i].JoinedAt.Equal(ms[j].JoinedAt) {
			return ms[i].JoinedAt.Before(ms[j].JoinedAt)
		}
		return ms[i].UserId < ms[j].UserId
	})
}

// Package voice keeps the authoritative roster of each voice channel and
// broadcasts changes to the channel's voice group.
package voice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/SteamVC/realtime/internal/auth"
	"github.com/SteamVC/realtime/internal/events"
	"github.com/SteamVC/realtime/internal/models"
	"github.com/SteamVC/realtime/internal/realtime"
	"github.com/SteamVC/realtime/internal/repo"
)

// ErrNotInVoiceChannel is returned for state changes and leaves from a user
// or connection that is not in the voice channel.
var ErrNotInVoiceChannel = errors.New("not in voice channel")

// Router is the part of the hub the roster drives.
type Router interface {
	Join(connID, group string) error
	Leave(connID, group string) bool
	IsMember(connID, group string) bool
	SendToConn(ctx context.Context, connID string, e events.Event) error
	SendToGroup(ctx context.Context, group string, e events.Event, exclude string) error
}

// Roster owns voice channel membership. A user stays listed while any of
// their connections is in the channel.
type Roster struct {
	store repo.VoiceRepo
	hub   Router
	now   func() time.Time
	log   *zap.Logger
}

// NewRoster returns a Roster persisting to store and broadcasting through hub.
func NewRoster(store repo.VoiceRepo, hub Router, log *zap.Logger) *Roster {
	if log == nil {
		log = zap.NewNop()
	}
	return &Roster{store: store, hub: hub, now: time.Now, log: log}
}

// Join puts the connection in the voice group and sends it the full roster.
// The rest of the group hears UserJoinedVoiceChannel only when this is the
// user's first session in the channel. Joining again from the same
// connection only resends the roster.
func (r *Roster) Join(ctx context.Context, connID string, p auth.Principal, channelID string) (models.VoiceMember, error) {
	group := realtime.VoiceGroup(channelID)
	if r.hub.IsMember(connID, group) {
		members, err := r.sendSnapshot(ctx, connID, channelID)
		if err != nil {
			return models.VoiceMember{}, err
		}
		m, _ := lo.Find(members, func(m models.VoiceMember) bool { return m.UserId == p.UserId })
		return m, nil
	}

	if err := r.hub.Join(connID, group); err != nil {
		return models.VoiceMember{}, err
	}
	m, sessions, err := r.store.AddMember(ctx, models.VoiceMember{
		ChannelId: channelID,
		UserId:    p.UserId,
		UserName:  p.UserName,
		JoinedAt:  r.now().UTC(),
	})
	if err != nil {
		r.hub.Leave(connID, group)
		return models.VoiceMember{}, fmt.Errorf("join voice %s: %w", channelID, err)
	}
	if _, err := r.sendSnapshot(ctx, connID, channelID); err != nil {
		return m, err
	}
	if sessions > 1 {
		return m, nil
	}
	r.log.Info("voice join", zap.String("channelId", channelID), zap.String("userId", p.UserId))
	return m, r.hub.SendToGroup(ctx, group, events.UserJoinedVoiceChannel{VoiceMember: m}, connID)
}

func (r *Roster) sendSnapshot(ctx context.Context, connID, channelID string) ([]models.VoiceMember, error) {
	members, err := r.store.ListMembers(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("list voice %s: %w", channelID, err)
	}
	return members, r.hub.SendToConn(ctx, connID, events.VoiceRoomSnapshot{ChannelId: channelID, Members: members})
}

// Leave drops the connection from the voice group. When it was the user's
// last session the whole group, leaver included, hears
// UserLeftVoiceChannel; otherwise only the leaving connection does.
func (r *Roster) Leave(ctx context.Context, connID string, p auth.Principal, channelID string) error {
	group := realtime.VoiceGroup(channelID)
	if !r.hub.IsMember(connID, group) {
		return fmt.Errorf("leave voice %s: %w", channelID, ErrNotInVoiceChannel)
	}
	defer r.hub.Leave(connID, group)

	m, left, err := r.release(ctx, p, channelID)
	if err != nil {
		return err
	}
	if left > 0 {
		return r.hub.SendToConn(ctx, connID, events.UserLeftVoiceChannel{VoiceMember: m})
	}
	return r.hub.SendToGroup(ctx, group, events.UserLeftVoiceChannel{VoiceMember: m}, "")
}

// release removes one session of p from the roster. A user missing from the
// roster counts as gone.
func (r *Roster) release(ctx context.Context, p auth.Principal, channelID string) (models.VoiceMember, int64, error) {
	m, left, err := r.store.RemoveMember(ctx, channelID, p.UserId)
	if errors.Is(err, repo.ErrNotFound) {
		return models.VoiceMember{ChannelId: channelID, UserId: p.UserId, UserName: p.UserName}, 0, nil
	}
	if err != nil {
		return models.VoiceMember{}, 0, fmt.Errorf("leave voice %s: %w", channelID, err)
	}
	if left == 0 {
		r.log.Info("voice leave", zap.String("channelId", channelID), zap.String("userId", p.UserId))
	}
	return m, left, nil
}

// UpdateState changes the caller's mute and deafen flags.
func (r *Roster) UpdateState(ctx context.Context, p auth.Principal, channelID string, muted, deafened bool) (models.VoiceMember, error) {
	m, err := r.store.UpdateMember(ctx, channelID, p.UserId, muted, deafened)
	if errors.Is(err, repo.ErrNotFound) {
		return models.VoiceMember{}, fmt.Errorf("voice %s: %w", channelID, ErrNotInVoiceChannel)
	}
	if err != nil {
		return models.VoiceMember{}, fmt.Errorf("update voice %s: %w", channelID, err)
	}
	return m, r.hub.SendToGroup(ctx, realtime.VoiceGroup(channelID), events.UserVoiceStateChanged{VoiceMember: m}, "")
}

// LeaveAll releases the session of an unregistered connection in every voice
// group it was in. The group hears UserLeftVoiceChannel for each channel the
// user no longer has a session in.
func (r *Roster) LeaveAll(ctx context.Context, p auth.Principal, groups []string) error {
	var errs []error
	for _, g := range groups {
		channelID, ok := realtime.VoiceChannelOf(g)
		if !ok {
			continue
		}
		m, left, err := r.release(ctx, p, channelID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if left > 0 {
			continue
		}
		if err := r.hub.SendToGroup(ctx, g, events.UserLeftVoiceChannel{VoiceMember: m}, ""); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Members lists the channel's roster by join time.
func (r *Roster) Members(ctx context.Context, channelID string) ([]models.VoiceMember, error) {
	return r.store.ListMembers(ctx, channelID)
}

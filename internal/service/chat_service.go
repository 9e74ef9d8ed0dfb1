// Package service runs the chat and voice operations a connected client
// issues: persist through the collaborators, then fan out through the hub.
package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/SteamVC/realtime/internal/auth"
	"github.com/SteamVC/realtime/internal/events"
	"github.com/SteamVC/realtime/internal/models"
	"github.com/SteamVC/realtime/internal/realtime"
	"github.com/SteamVC/realtime/internal/repo"
)

// Caller is the connection an operation is executed for.
type Caller struct {
	ConnID string
	auth.Principal
}

// CallerOf returns the caller behind a registered connection.
func CallerOf(c *realtime.Conn) Caller {
	return Caller{ConnID: c.ID(), Principal: c.Principal()}
}

// Router is the subset of the hub the service uses.
type Router interface {
	Register(c *realtime.Conn)
	Unregister(connID string) []string
	Join(connID, group string) error
	Leave(connID, group string) bool
	IsMember(connID, group string) bool
	SendToConn(ctx context.Context, connID string, e events.Event) error
	SendToGroup(ctx context.Context, group string, e events.Event, exclude string) error
}

// MentionDispatcher notifies the users a message mentions.
type MentionDispatcher interface {
	Dispatch(ctx context.Context, msg models.Message) (int, error)
}

// VoiceRoster owns voice channel membership.
type VoiceRoster interface {
	Join(ctx context.Context, connID string, p auth.Principal, channelID string) (models.VoiceMember, error)
	Leave(ctx context.Context, connID string, p auth.Principal, channelID string) error
	UpdateState(ctx context.Context, p auth.Principal, channelID string, muted, deafened bool) (models.VoiceMember, error)
	LeaveAll(ctx context.Context, p auth.Principal, groups []string) error
}

// PresenceTracker records sessions and activity.
type PresenceTracker interface {
	Connected(ctx context.Context, userID, connID string) error
	Disconnected(ctx context.Context, userID, connID string) error
	Heartbeat(ctx context.Context, userID string) error
}

// Deps wires a ChatService.
type Deps struct {
	Messages  repo.MessageRepo
	Reactions repo.ReactionRepo
	Reads     repo.ReadStateRepo
	Hub       Router
	Mentions  MentionDispatcher
	Voice     VoiceRoster
	Presence  PresenceTracker
	Log       *zap.Logger
}

// ChatService executes client commands. It is safe for concurrent use.
type ChatService struct {
	messages  repo.MessageRepo
	reactions repo.ReactionRepo
	reads     repo.ReadStateRepo
	hub       Router
	mentions  MentionDispatcher
	voice     VoiceRoster
	presence  PresenceTracker
	log       *zap.Logger
}

// NewChatService wires a ChatService from d. A nil Log discards output.
func NewChatService(d Deps) *ChatService {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &ChatService{
		messages:  d.Messages,
		reactions: d.Reactions,
		reads:     d.Reads,
		hub:       d.Hub,
		mentions:  d.Mentions,
		voice:     d.Voice,
		presence:  d.Presence,
		log:       log,
	}
}

// Connect registers an authenticated connection and records presence.
func (s *ChatService) Connect(ctx context.Context, conn *realtime.Conn) {
	s.hub.Register(conn)
	c := CallerOf(conn)
	s.bestEffort(ctx, "presence connect", c, func(ctx context.Context) error {
		return s.presence.Connected(ctx, c.UserId, c.ConnID)
	})
}

// Disconnect tears a connection down: hub registration, voice rosters, then
// presence.
func (s *ChatService) Disconnect(ctx context.Context, conn *realtime.Conn) {
	c := CallerOf(conn)
	groups := s.hub.Unregister(c.ConnID)
	s.bestEffort(ctx, "voice leave on disconnect", c, func(ctx context.Context) error {
		return s.voice.LeaveAll(ctx, c.Principal, groups)
	})
	s.bestEffort(ctx, "presence disconnect", c, func(ctx context.Context) error {
		return s.presence.Disconnected(ctx, c.UserId, c.ConnID)
	})
}

// JoinChannel adds the caller to the channel group after the message store
// confirms access with an empty page.
func (s *ChatService) JoinChannel(ctx context.Context, c Caller, channelID string) error {
	if _, err := s.messages.ListMessages(ctx, c.UserId, channelID, models.Page{Limit: 0}); err != nil {
		return fmt.Errorf("join channel %s: %w", channelID, err)
	}
	if err := s.hub.Join(c.ConnID, realtime.ChannelGroup(channelID)); err != nil {
		return err
	}
	return s.hub.SendToConn(ctx, c.ConnID, events.JoinedChannel{ChannelId: channelID})
}

// LeaveChannel drops the caller from the channel group.
func (s *ChatService) LeaveChannel(ctx context.Context, c Caller, channelID string) error {
	s.hub.Leave(c.ConnID, realtime.ChannelGroup(channelID))
	return s.hub.SendToConn(ctx, c.ConnID, events.LeftChannel{ChannelId: channelID})
}

// SendMessage persists and broadcasts a message. Marking the channel read
// and notifying mentioned users never fail the call.
func (s *ChatService) SendMessage(ctx context.Context, c Caller, channelID string, in models.NewMessage) (models.Message, error) {
	m, err := s.messages.CreateMessage(ctx, c.UserId, channelID, in)
	if err != nil {
		return models.Message{}, fmt.Errorf("send message to %s: %w", channelID, err)
	}
	if err := s.hub.SendToGroup(ctx, realtime.ChannelGroup(channelID), events.ReceiveMessage{Message: m}, ""); err != nil {
		return m, fmt.Errorf("broadcast message %s: %w", m.MessageId, err)
	}

	s.bestEffort(ctx, "mark read", c, func(ctx context.Context) error {
		return s.reads.MarkRead(ctx, c.UserId, channelID, m.MessageId)
	})
	s.bestEffort(ctx, "mention dispatch", c, func(ctx context.Context) error {
		_, err := s.mentions.Dispatch(ctx, m)
		return err
	})
	return m, nil
}

// EditMessage updates the content and broadcasts MessageEdited.
func (s *ChatService) EditMessage(ctx context.Context, c Caller, messageID, content string) (models.Message, error) {
	m, err := s.messages.UpdateMessage(ctx, c.UserId, messageID, content)
	if err != nil {
		return models.Message{}, fmt.Errorf("edit message %s: %w", messageID, err)
	}
	return m, s.hub.SendToGroup(ctx, realtime.ChannelGroup(m.ChannelId), events.MessageEdited{Message: m}, "")
}

// DeleteMessage removes the message and broadcasts MessageDeleted.
func (s *ChatService) DeleteMessage(ctx context.Context, c Caller, messageID string) error {
	m, err := s.messages.DeleteMessage(ctx, c.UserId, messageID)
	if err != nil {
		return fmt.Errorf("delete message %s: %w", messageID, err)
	}
	return s.hub.SendToGroup(ctx, realtime.ChannelGroup(m.ChannelId),
		events.MessageDeleted{MessageId: m.MessageId, ChannelId: m.ChannelId}, "")
}

// PinMessage pins the message and broadcasts MessagePinned.
func (s *ChatService) PinMessage(ctx context.Context, c Caller, messageID string) (models.Message, error) {
	m, err := s.messages.PinMessage(ctx, c.UserId, messageID)
	if err != nil {
		return models.Message{}, fmt.Errorf("pin message %s: %w", messageID, err)
	}
	return m, s.hub.SendToGroup(ctx, realtime.ChannelGroup(m.ChannelId), events.MessagePinned{Message: m}, "")
}

// UnpinMessage unpins the message and broadcasts MessageUnpinned.
func (s *ChatService) UnpinMessage(ctx context.Context, c Caller, messageID string) (models.Message, error) {
	m, err := s.messages.UnpinMessage(ctx, c.UserId, messageID)
	if err != nil {
		return models.Message{}, fmt.Errorf("unpin message %s: %w", messageID, err)
	}
	return m, s.hub.SendToGroup(ctx, realtime.ChannelGroup(m.ChannelId), events.MessageUnpinned{Message: m}, "")
}

// AddReaction persists the reaction, then looks the message up again to
// find the channel to notify.
func (s *ChatService) AddReaction(ctx context.Context, c Caller, messageID, emoji string) (models.Reaction, error) {
	r, err := s.reactions.AddReaction(ctx, c.UserId, messageID, emoji)
	if err != nil {
		return models.Reaction{}, fmt.Errorf("add reaction to %s: %w", messageID, err)
	}
	m, err := s.messages.GetMessage(ctx, c.UserId, messageID)
	if err != nil {
		return r, fmt.Errorf("resolve channel of %s: %w", messageID, err)
	}
	return r, s.hub.SendToGroup(ctx, realtime.ChannelGroup(m.ChannelId),
		events.ReactionAdded{Reaction: r, ChannelId: m.ChannelId}, "")
}

// RemoveReaction deletes the reaction and broadcasts ReactionRemoved.
func (s *ChatService) RemoveReaction(ctx context.Context, c Caller, messageID, emoji string) error {
	if err := s.reactions.RemoveReaction(ctx, c.UserId, messageID, emoji); err != nil {
		return fmt.Errorf("remove reaction from %s: %w", messageID, err)
	}
	m, err := s.messages.GetMessage(ctx, c.UserId, messageID)
	if err != nil {
		return fmt.Errorf("resolve channel of %s: %w", messageID, err)
	}
	return s.hub.SendToGroup(ctx, realtime.ChannelGroup(m.ChannelId), events.ReactionRemoved{
		MessageId: messageID,
		ChannelId: m.ChannelId,
		UserId:    c.UserId,
		Emoji:     emoji,
	}, "")
}

// Typing tells the rest of the channel the caller is typing. Indicators are
// not tracked; clients expire them.
func (s *ChatService) Typing(ctx context.Context, c Caller, channelID string) error {
	return s.typing(ctx, c, channelID, func(t events.Typing) events.Event { return events.UserTyping{Typing: t} })
}

// StopTyping tells the rest of the channel the caller stopped typing.
func (s *ChatService) StopTyping(ctx context.Context, c Caller, channelID string) error {
	return s.typing(ctx, c, channelID, func(t events.Typing) events.Event { return events.UserStoppedTyping{Typing: t} })
}

func (s *ChatService) typing(ctx context.Context, c Caller, channelID string, wrap func(events.Typing) events.Event) error {
	group := realtime.ChannelGroup(channelID)
	if !s.hub.IsMember(c.ConnID, group) {
		return fmt.Errorf("typing in %s: %w", channelID, ErrNotJoined)
	}
	t := events.Typing{UserId: c.UserId, UserName: c.UserName, ChannelId: channelID}
	return s.hub.SendToGroup(ctx, group, wrap(t), c.ConnID)
}

// JoinVoiceChannel adds the caller to the voice roster.
func (s *ChatService) JoinVoiceChannel(ctx context.Context, c Caller, channelID string) error {
	_, err := s.voice.Join(ctx, c.ConnID, c.Principal, channelID)
	return err
}

// LeaveVoiceChannel removes the caller's session from the voice roster.
func (s *ChatService) LeaveVoiceChannel(ctx context.Context, c Caller, channelID string) error {
	return s.voice.Leave(ctx, c.ConnID, c.Principal, channelID)
}

// UpdateVoiceState sets the caller's mute and deafen flags.
func (s *ChatService) UpdateVoiceState(ctx context.Context, c Caller, channelID string, muted, deafened bool) error {
	_, err := s.voice.UpdateState(ctx, c.Principal, channelID, muted, deafened)
	return err
}

// Heartbeat refreshes the caller's presence.
func (s *ChatService) Heartbeat(ctx context.Context, c Caller) error {
	return s.presence.Heartbeat(ctx, c.UserId)
}

// Reply sends a caller-scoped event such as Error or Pong.
func (s *ChatService) Reply(ctx context.Context, c Caller, e events.Event) error {
	return s.hub.SendToConn(ctx, c.ConnID, e)
}

// bestEffort runs a secondary effect. Errors and panics are logged and
// swallowed.
func (s *ChatService) bestEffort(ctx context.Context, what string, c Caller, fn func(context.Context) error) {
	defer func() {
		if rec := recover(); rec != nil {
			s.log.Warn(what+" panicked",
				zap.String("connId", c.ConnID),
				zap.String("userId", c.UserId),
				zap.Any("panic", rec))
		}
	}()
	if err := fn(ctx); err != nil && !errors.Is(err, context.Canceled) {
		s.log.Warn(what+" failed",
			zap.String("connId", c.ConnID),
			zap.String("userId", c.UserId),
			zap.Error(err))
	}
}

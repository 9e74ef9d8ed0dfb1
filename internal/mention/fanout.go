// Package mention delivers private mention notifications to the mentioned
// users' own connections.
package mention

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/SteamVC/realtime/internal/events"
	"github.com/SteamVC/realtime/internal/models"
	"github.com/SteamVC/realtime/internal/repo"
)

// UserSender reaches every connection of one user.
type UserSender interface {
	SendToUser(ctx context.Context, userID string, e events.Event) (int, error)
}

// Fanout delivers UserMentioned privately to each mentioned user.
type Fanout struct {
	mentions repo.MentionRepo
	hub      UserSender
	log      *zap.Logger
}

// NewFanout returns a Fanout reading records from mentions.
func NewFanout(mentions repo.MentionRepo, hub UserSender, log *zap.Logger) *Fanout {
	if log == nil {
		log = zap.NewNop()
	}
	return &Fanout{mentions: mentions, hub: hub, log: log}
}

// Dispatch sends one UserMentioned per mentioned user of msg and returns the
// number of local connections reached. Users with no open connection get
// nothing; their mention record stays available through the mention store.
func (f *Fanout) Dispatch(ctx context.Context, msg models.Message) (int, error) {
	records, err := f.mentions.MentionsForMessage(ctx, msg.MessageId)
	if err != nil {
		return 0, fmt.Errorf("mentions for %s: %w", msg.MessageId, err)
	}
	records = lo.UniqBy(records, func(m models.Mention) string { return m.UserId })

	var (
		delivered int
		errs      []error
	)
	for _, m := range records {
		n, err := f.hub.SendToUser(ctx, m.UserId, events.UserMentioned{
			MentionId: m.MentionId,
			MessageId: msg.MessageId,
			ChannelId: msg.ChannelId,
			AuthorId:  msg.AuthorId,
			Content:   msg.Content,
		})
		delivered += n
		if err != nil {
			errs = append(errs, err)
		}
	}
	f.log.Debug("mentions dispatched",
		zap.String("messageId", msg.MessageId),
		zap.Int("users", len(records)),
		zap.Int("connections", delivered))
	return delivered, errors.Join(errs...)
}

// ForUser lists the durable mention records of userID, newest first.
func (f *Fanout) ForUser(ctx context.Context, userID string, limit int) ([]models.Mention, error) {
	return f.mentions.MentionsForUser(ctx, userID, limit)
}

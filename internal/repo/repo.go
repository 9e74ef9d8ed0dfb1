// Package repo declares the persistence contracts the real-time layer relies
// on and ships the presence and voice roster stores it owns.
package repo

//go:generate mockgen -source=repo.go -destination=../mocks/mock_repo.go -package=mocks

import (
	"context"
	"errors"
	"time"

	"github.com/SteamVC/realtime/internal/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
)

// MessageRepo owns messages. Every call is made on behalf of userID and must
// fail with ErrForbidden when that user cannot access the channel.
type MessageRepo interface {
	// ListMessages doubles as the access check when page.Limit is 0.
	ListMessages(ctx context.Context, userID, channelID string, page models.Page) ([]models.Message, error)
	CreateMessage(ctx context.Context, userID, channelID string, in models.NewMessage) (models.Message, error)
	GetMessage(ctx context.Context, userID, messageID string) (models.Message, error)
	UpdateMessage(ctx context.Context, userID, messageID, content string) (models.Message, error)
	// DeleteMessage returns the removed message so its channel can be notified.
	DeleteMessage(ctx context.Context, userID, messageID string) (models.Message, error)
	PinMessage(ctx context.Context, userID, messageID string) (models.Message, error)
	UnpinMessage(ctx context.Context, userID, messageID string) (models.Message, error)
}

// ReactionRepo stores emoji reactions.
type ReactionRepo interface {
	AddReaction(ctx context.Context, userID, messageID, emoji string) (models.Reaction, error)
	RemoveReaction(ctx context.Context, userID, messageID, emoji string) error
}

// ReadStateRepo tracks the last message each user read per channel.
type ReadStateRepo interface {
	MarkRead(ctx context.Context, userID, channelID, messageID string) error
	// LastRead returns "" when the user has not read anything in the channel.
	LastRead(ctx context.Context, userID, channelID string) (string, error)
}

// MentionRepo reads stored mention records.
type MentionRepo interface {
	MentionsForMessage(ctx context.Context, messageID string) ([]models.Mention, error)
	MentionsForUser(ctx context.Context, userID string, limit int) ([]models.Mention, error)
}

// PresenceRepo stores last-active times and open session counts per user.
type PresenceRepo interface {
	SetLastSeen(ctx context.Context, userID string, at time.Time) error
	// SeenSince lists users last seen at or after cutoff.
	SeenSince(ctx context.Context, cutoff time.Time) ([]string, error)
	// AdjustSessions adds delta to the user's session count and returns the
	// new value. A count that drops to zero or below is cleared.
	AdjustSessions(ctx context.Context, userID string, delta int64) (int64, error)
}

// VoiceRepo is the roster of each voice channel. A user is listed once
// however many of their sessions joined; the store counts those sessions.
type VoiceRepo interface {
	// AddMember adds one session for vm.UserId. The first session stores vm,
	// later ones keep the stored member. It returns the stored member and the
	// user's session count in the channel.
	AddMember(ctx context.Context, vm models.VoiceMember) (models.VoiceMember, int64, error)
	// RemoveMember drops one session and returns the member with the sessions
	// left. The member leaves the roster when none are left. It fails with
	// ErrNotFound when the user is not on the roster.
	RemoveMember(ctx context.Context, channelID, userID string) (models.VoiceMember, int64, error)
	// UpdateMember fails with ErrNotFound when the user is not on the roster.
	UpdateMember(ctx context.Context, channelID, userID string, muted, deafened bool) (models.VoiceMember, error)
	ListMembers(ctx context.Context, channelID string) ([]models.VoiceMember, error)
}

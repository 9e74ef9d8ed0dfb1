// Package presence derives who is online from last-active timestamps and
// announces session transitions.
package presence

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/SteamVC/realtime/internal/events"
	"github.com/SteamVC/realtime/internal/repo"
)

// DefaultWindow is how long a user stays online after their last activity.
const DefaultWindow = 5 * time.Minute

// Broadcaster reaches every open connection.
type Broadcaster interface {
	SendToAll(ctx context.Context, e events.Event, exclude string) error
}

// Tracker turns session transitions into presence broadcasts and answers
// who is online.
type Tracker struct {
	store  repo.PresenceRepo
	hub    Broadcaster
	window time.Duration
	now    func() time.Time
	log    *zap.Logger
}

// NewTracker returns a Tracker. A non-positive window means DefaultWindow.
func NewTracker(store repo.PresenceRepo, hub Broadcaster, window time.Duration, log *zap.Logger) *Tracker {
	if window <= 0 {
		window = DefaultWindow
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Tracker{store: store, hub: hub, window: window, now: time.Now, log: log}
}

// Window returns the freshness window.
func (t *Tracker) Window() time.Duration { return t.window }

// Connected counts a new session and records activity. UserOnline goes out
// to every other connection when this is the user's first open session. The
// session is counted even when the activity write fails, so the matching
// Disconnected stays balanced.
func (t *Tracker) Connected(ctx context.Context, userID, connID string) error {
	n, err := t.store.AdjustSessions(ctx, userID, 1)
	if err != nil {
		return fmt.Errorf("presence connect %s: %w", userID, err)
	}
	seenErr := t.touch(ctx, "connect", userID)
	if n != 1 {
		return seenErr
	}
	t.log.Debug("user online", zap.String("userId", userID))
	return errors.Join(seenErr, t.hub.SendToAll(ctx, events.UserOnline{UserId: userID}, connID))
}

// Disconnected releases a session and records activity. UserOffline goes out
// once the user's last session is gone.
func (t *Tracker) Disconnected(ctx context.Context, userID, connID string) error {
	n, err := t.store.AdjustSessions(ctx, userID, -1)
	if err != nil {
		return fmt.Errorf("presence disconnect %s: %w", userID, err)
	}
	seenErr := t.touch(ctx, "disconnect", userID)
	if n != 0 {
		return seenErr
	}
	t.log.Debug("user offline", zap.String("userId", userID))
	return errors.Join(seenErr, t.hub.SendToAll(ctx, events.UserOffline{UserId: userID}, connID))
}

func (t *Tracker) touch(ctx context.Context, op, userID string) error {
	if err := t.store.SetLastSeen(ctx, userID, t.now()); err != nil {
		return fmt.Errorf("presence %s %s: %w", op, userID, err)
	}
	return nil
}

// Heartbeat refreshes the user's last-active time.
func (t *Tracker) Heartbeat(ctx context.Context, userID string) error {
	return t.touch(ctx, "heartbeat", userID)
}

// OnlineUsers lists users active within the window, boundary included.
func (t *Tracker) OnlineUsers(ctx context.Context) ([]string, error) {
	ids, err := t.store.SeenSince(ctx, t.now().Add(-t.window))
	if err != nil {
		return nil, fmt.Errorf("online users: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

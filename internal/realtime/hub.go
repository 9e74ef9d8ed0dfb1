// Package realtime keeps the registry of live connections, their group
// memberships, and fans events out to them, locally and through a backplane.
package realtime

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/SteamVC/realtime/internal/events"
)

// ErrUnknownConnection is returned for ids that are not registered.
var ErrUnknownConnection = errors.New("unknown connection")

const (
	channelGroupPrefix = "channel:"
	voiceGroupPrefix   = "voice:"
)

// ChannelGroup is the broadcast group of a text channel.
func ChannelGroup(channelID string) string { return channelGroupPrefix + channelID }

// VoiceGroup is the broadcast group of a voice channel.
func VoiceGroup(channelID string) string { return voiceGroupPrefix + channelID }

// VoiceChannelOf returns the voice channel id behind a group key.
func VoiceChannelOf(group string) (string, bool) {
	if !strings.HasPrefix(group, voiceGroupPrefix) {
		return "", false
	}
	return strings.TrimPrefix(group, voiceGroupPrefix), true
}

// Hub owns every connection on this node.
type Hub struct {
	nodeID    string
	backplane Backplane
	log       *zap.Logger

	mu          sync.RWMutex
	conns       map[string]*Conn
	byUser      map[string]map[string]*Conn
	groups      map[string]map[string]*Conn
	memberships map[string]map[string]struct{}
}

// NewHub creates a hub. A nil backplane keeps broadcasts in process.
func NewHub(nodeID string, bp Backplane, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		nodeID:      nodeID,
		backplane:   bp,
		log:         log.With(zap.String("node", nodeID)),
		conns:       make(map[string]*Conn),
		byUser:      make(map[string]map[string]*Conn),
		groups:      make(map[string]map[string]*Conn),
		memberships: make(map[string]map[string]struct{}),
	}
}

// NodeID identifies this hub on the backplane.
func (h *Hub) NodeID() string { return h.nodeID }

// Register adds an authenticated connection.
func (h *Hub) Register(c *Conn) {
	h.mu.Lock()
	h.conns[c.id] = c
	set := h.byUser[c.UserID()]
	if set == nil {
		set = make(map[string]*Conn)
		h.byUser[c.UserID()] = set
	}
	set[c.id] = c
	h.memberships[c.id] = make(map[string]struct{})
	total := len(h.conns)
	h.mu.Unlock()

	h.log.Info("connection registered",
		zap.String("connId", c.id),
		zap.String("userId", c.UserID()),
		zap.Int("connections", total))
}

// Unregister removes a connection and every membership it held, returning
// the groups it was in.
func (h *Hub) Unregister(connID string) []string {
	h.mu.Lock()
	c, ok := h.conns[connID]
	if !ok {
		h.mu.Unlock()
		return nil
	}
	delete(h.conns, connID)
	if set := h.byUser[c.UserID()]; set != nil {
		delete(set, connID)
		if len(set) == 0 {
			delete(h.byUser, c.UserID())
		}
	}
	groups := make([]string, 0, len(h.memberships[connID]))
	for g := range h.memberships[connID] {
		groups = append(groups, g)
		h.removeMemberLocked(g, connID)
	}
	delete(h.memberships, connID)
	total := len(h.conns)
	h.mu.Unlock()

	c.Close()
	h.log.Info("connection unregistered",
		zap.String("connId", connID),
		zap.String("userId", c.UserID()),
		zap.Int("connections", total))
	return groups
}

// Join adds a connection to a group. Callers are responsible for any access
// check the group requires.
func (h *Hub) Join(connID, group string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.conns[connID]
	if !ok {
		return fmt.Errorf("join %s: %w", group, ErrUnknownConnection)
	}
	members := h.groups[group]
	if members == nil {
		members = make(map[string]*Conn)
		h.groups[group] = members
	}
	members[connID] = c
	h.memberships[connID][group] = struct{}{}
	return nil
}

// Leave removes a connection from a group and reports whether it was a member.
func (h *Hub) Leave(connID, group string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.memberships[connID][group]; !ok {
		return false
	}
	delete(h.memberships[connID], group)
	h.removeMemberLocked(group, connID)
	return true
}

func (h *Hub) removeMemberLocked(group, connID string) {
	members := h.groups[group]
	delete(members, connID)
	if len(members) == 0 {
		delete(h.groups, group)
	}
}

// IsMember reports whether the connection currently belongs to group.
func (h *Hub) IsMember(connID, group string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.memberships[connID][group]
	return ok
}

// Groups lists the groups a connection belongs to.
func (h *Hub) Groups(connID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, 0, len(h.memberships[connID]))
	for g := range h.memberships[connID] {
		out = append(out, g)
	}
	return out
}

// GroupSize counts the local members of a group.
func (h *Hub) GroupSize(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[group])
}

// UserConnections counts a user's open connections on this node.
func (h *Hub) UserConnections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byUser[userID])
}

// ConnectionCount counts all open connections on this node.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// SendToConn delivers an event to a single connection, wherever it lives.
func (h *Hub) SendToConn(ctx context.Context, connID string, e events.Event) error {
	frame, err := events.Encode(e)
	if err != nil {
		return err
	}
	env := Envelope{Scope: ScopeConn, Key: connID, Frame: frame}
	if h.deliverLocal(env) > 0 || h.backplane == nil {
		return nil
	}
	return h.publish(ctx, env)
}

// SendToGroup fans an event out to every member of group except exclude.
func (h *Hub) SendToGroup(ctx context.Context, group string, e events.Event, exclude string) error {
	_, err := h.broadcast(ctx, ScopeGroup, group, e, exclude)
	return err
}

// SendToUser delivers an event to every connection of a user and returns how
// many local connections received it.
func (h *Hub) SendToUser(ctx context.Context, userID string, e events.Event) (int, error) {
	return h.broadcast(ctx, ScopeUser, userID, e, "")
}

// SendToAll delivers an event to every connection except exclude.
func (h *Hub) SendToAll(ctx context.Context, e events.Event, exclude string) error {
	_, err := h.broadcast(ctx, ScopeAll, "", e, exclude)
	return err
}

func (h *Hub) broadcast(ctx context.Context, scope Scope, key string, e events.Event, exclude string) (int, error) {
	frame, err := events.Encode(e)
	if err != nil {
		return 0, err
	}
	env := Envelope{Scope: scope, Key: key, Exclude: exclude, Frame: frame}
	n := h.deliverLocal(env)
	if h.backplane == nil {
		return n, nil
	}
	return n, h.publish(ctx, env)
}

func (h *Hub) publish(ctx context.Context, env Envelope) error {
	env.Origin = h.nodeID
	if err := h.backplane.Publish(ctx, env); err != nil {
		return fmt.Errorf("backplane %s %s: %w", env.Scope, env.Key, err)
	}
	return nil
}

// targets snapshots the recipients of an envelope under the read lock.
func (h *Hub) targets(env Envelope) []*Conn {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var pool map[string]*Conn
	switch env.Scope {
	case ScopeConn:
		if c, ok := h.conns[env.Key]; ok {
			return []*Conn{c}
		}
		return nil
	case ScopeGroup:
		pool = h.groups[env.Key]
	case ScopeUser:
		pool = h.byUser[env.Key]
	case ScopeAll:
		pool = h.conns
	default:
		return nil
	}

	out := make([]*Conn, 0, len(pool))
	for id, c := range pool {
		if id == env.Exclude {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (h *Hub) deliverLocal(env Envelope) int {
	delivered := 0
	for _, c := range h.targets(env) {
		ok, evicted := c.enqueue(env.Frame)
		if ok {
			delivered++
		}
		if evicted {
			h.log.Warn("send buffer full, closing slow connection",
				zap.String("connId", c.id),
				zap.String("userId", c.UserID()))
		}
	}
	return delivered
}

// Run consumes envelopes published by other nodes until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) error {
	if h.backplane == nil {
		<-ctx.Done()
		return nil
	}
	return h.backplane.Subscribe(ctx, func(env Envelope) {
		if env.Origin == h.nodeID {
			return
		}
		h.deliverLocal(env)
	})
}

// Shutdown closes every connection; transports observe Done and hang up.
func (h *Hub) Shutdown() {
	h.mu.RLock()
	conns := make([]*Conn, 0, len(h.conns))
	for _, c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		c.Close()
	}
	h.log.Info("hub shut down", zap.Int("closed", len(conns)))
}

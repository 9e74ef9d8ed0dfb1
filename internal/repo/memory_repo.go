package repo

import (
	"context"
	"sync"
	"time"

	"github.com/SteamVC/realtime/internal/models"
)

// MemoryPresenceRepo is the single-node presence store.
type MemoryPresenceRepo struct {
	mu       sync.Mutex
	lastSeen map[string]time.Time
	sessions map[string]int64
}

// NewMemoryPresenceRepo returns an empty presence store.
func NewMemoryPresenceRepo() *MemoryPresenceRepo {
	return &MemoryPresenceRepo{
		lastSeen: make(map[string]time.Time),
		sessions: make(map[string]int64),
	}
}

func (m *MemoryPresenceRepo) SetLastSeen(_ context.Context, userID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastSeen[userID] = at
	return nil
}

func (m *MemoryPresenceRepo) SeenSince(_ context.Context, cutoff time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.lastSeen))
	for id, at := range m.lastSeen {
		if !at.Before(cutoff) {
			out = append(out, id)
		}
	}
	return out, nil
}

func (m *MemoryPresenceRepo) AdjustSessions(_ context.Context, userID string, delta int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := m.sessions[userID] + delta
	if n <= 0 {
		delete(m.sessions, userID)
		return 0, nil
	}
	m.sessions[userID] = n
	return n, nil
}

// MemoryVoiceRepo is the single-node roster store.
type MemoryVoiceRepo struct {
	mu       sync.RWMutex
	channels map[string]map[string]*voiceEntry
}

type voiceEntry struct {
	member   models.VoiceMember
	sessions int64
}

// NewMemoryVoiceRepo returns an empty roster store.
func NewMemoryVoiceRepo() *MemoryVoiceRepo {
	return &MemoryVoiceRepo{channels: make(map[string]map[string]*voiceEntry)}
}

func (m *MemoryVoiceRepo) AddMember(_ context.Context, vm models.VoiceMember) (models.VoiceMember, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	roster := m.channels[vm.ChannelId]
	if roster == nil {
		roster = make(map[string]*voiceEntry)
		m.channels[vm.ChannelId] = roster
	}
	e, ok := roster[vm.UserId]
	if !ok {
		e = &voiceEntry{member: vm}
		roster[vm.UserId] = e
	}
	e.sessions++
	return e.member, e.sessions, nil
}

func (m *MemoryVoiceRepo) RemoveMember(_ context.Context, channelID, userID string) (models.VoiceMember, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	roster := m.channels[channelID]
	e, ok := roster[userID]
	if !ok {
		return models.VoiceMember{}, 0, ErrNotFound
	}
	e.sessions--
	if e.sessions > 0 {
		return e.member, e.sessions, nil
	}
	delete(roster, userID)
	if len(roster) == 0 {
		delete(m.channels, channelID)
	}
	return e.member, 0, nil
}

func (m *MemoryVoiceRepo) UpdateMember(_ context.Context, channelID, userID string, muted, deafened bool) (models.VoiceMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.channels[channelID][userID]
	if !ok {
		return models.VoiceMember{}, ErrNotFound
	}
	e.member.IsMuted, e.member.IsDeafened = muted, deafened
	return e.member, nil
}

func (m *MemoryVoiceRepo) ListMembers(_ context.Context, channelID string) ([]models.VoiceMember, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.VoiceMember, 0, len(m.channels[channelID]))
	for _, e := range m.channels[channelID] {
		out = append(out, e.member)
	}
	sortMembers(out)
	return out, nil
}

package voice_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/SteamVC/realtime/internal/auth"
	"github.com/SteamVC/realtime/internal/events"
	"github.com/SteamVC/realtime/internal/realtime"
	"github.com/SteamVC/realtime/internal/repo"
	"github.com/SteamVC/realtime/internal/voice"
)

var (
	alice = auth.Principal{UserId: "alice", UserName: "Alice"}
	bob   = auth.Principal{UserId: "bob", UserName: "Bob"}
)

func setup(t *testing.T) (*voice.Roster, *realtime.Hub) {
	t.Helper()
	hub := realtime.NewHub("n1", nil, nil)
	return voice.NewRoster(repo.NewMemoryVoiceRepo(), hub, nil), hub
}

func connect(hub *realtime.Hub, id string, p auth.Principal) *realtime.Conn {
	c := realtime.NewConn(id, p, 16)
	hub.Register(c)
	return c
}

func recv(t *testing.T, c *realtime.Conn) events.Event {
	t.Helper()
	select {
	case frame := <-c.Send():
		e, err := events.Decode(frame)
		require.NoError(t, err)
		return e
	case <-time.After(time.Second):
		t.Fatalf("no event for %s", c.ID())
		return nil
	}
}

func quiet(t *testing.T, c *realtime.Conn) {
	t.Helper()
	select {
	case frame := <-c.Send():
		t.Fatalf("unexpected frame %s", frame)
	default:
	}
}

func drain(cs ...*realtime.Conn) {
	for _, c := range cs {
		for len(c.Send()) > 0 {
			<-c.Send()
		}
	}
}

func TestJoin_SnapshotThenAnnouncement(t *testing.T) {
	r := require.New(t)
	roster, hub := setup(t)
	ctx := context.Background()
	ca, cb := connect(hub, "ca", alice), connect(hub, "cb", bob)

	m, err := roster.Join(ctx, "ca", alice, "lobby")
	r.NoError(err)
	r.False(m.IsMuted)
	r.False(m.IsDeafened)
	r.Equal("Alice", m.UserName)

	snap := recv(t, ca).(events.VoiceRoomSnapshot)
	r.Equal("lobby", snap.ChannelId)
	r.Len(snap.Members, 1)
	quiet(t, ca)

	_, err = roster.Join(ctx, "cb", bob, "lobby")
	r.NoError(err)
	snap = recv(t, cb).(events.VoiceRoomSnapshot)
	r.Len(snap.Members, 2)
	quiet(t, cb)

	joined := recv(t, ca).(events.UserJoinedVoiceChannel)
	r.Equal("bob", joined.UserId)
	r.Equal("Bob", joined.UserName)
	r.True(hub.IsMember("cb", realtime.VoiceGroup("lobby")))
}

func TestJoin_SameConnectionTwiceResendsRoster(t *testing.T) {
	r := require.New(t)
	roster, hub := setup(t)
	ctx := context.Background()
	ca, cb := connect(hub, "ca", alice), connect(hub, "cb", bob)
	_, err := roster.Join(ctx, "cb", bob, "lobby")
	r.NoError(err)
	_, err = roster.Join(ctx, "ca", alice, "lobby")
	r.NoError(err)
	drain(ca, cb)

	m, err := roster.Join(ctx, "ca", alice, "lobby")
	r.NoError(err)
	r.Equal("alice", m.UserId)
	r.Len(recv(t, ca).(events.VoiceRoomSnapshot).Members, 2)
	quiet(t, cb)

	// One leave is enough: the repeated join did not count a second session.
	r.NoError(roster.Leave(ctx, "ca", alice, "lobby"))
	r.Equal("alice", recv(t, cb).(events.UserLeftVoiceChannel).UserId)
	members, err := roster.Members(ctx, "lobby")
	r.NoError(err)
	r.Len(members, 1)
}

func TestUpdateState(t *testing.T) {
	r := require.New(t)
	roster, hub := setup(t)
	ctx := context.Background()
	ca, cb := connect(hub, "ca", alice), connect(hub, "cb", bob)
	_, err := roster.Join(ctx, "ca", alice, "lobby")
	r.NoError(err)
	_, err = roster.Join(ctx, "cb", bob, "lobby")
	r.NoError(err)
	drain(ca, cb)

	m, err := roster.UpdateState(ctx, bob, "lobby", true, true)
	r.NoError(err)
	r.True(m.IsMuted)
	r.True(m.IsDeafened)

	changed := recv(t, ca).(events.UserVoiceStateChanged)
	r.Equal("bob", changed.UserId)
	r.True(changed.IsDeafened)

	members, err := roster.Members(ctx, "lobby")
	r.NoError(err)
	r.Len(members, 2)

	_, err = roster.UpdateState(ctx, bob, "elsewhere", true, false)
	r.ErrorIs(err, voice.ErrNotInVoiceChannel)
}

func TestLeave_AnnouncesToEveryoneIncludingLeaver(t *testing.T) {
	r := require.New(t)
	roster, hub := setup(t)
	ctx := context.Background()
	ca, cb := connect(hub, "ca", alice), connect(hub, "cb", bob)
	_, _ = roster.Join(ctx, "ca", alice, "lobby")
	_, _ = roster.Join(ctx, "cb", bob, "lobby")
	drain(ca, cb)

	r.NoError(roster.Leave(ctx, "cb", bob, "lobby"))
	r.Equal("bob", recv(t, ca).(events.UserLeftVoiceChannel).UserId)
	r.Equal("bob", recv(t, cb).(events.UserLeftVoiceChannel).UserId)
	r.False(hub.IsMember("cb", realtime.VoiceGroup("lobby")))

	members, err := roster.Members(ctx, "lobby")
	r.NoError(err)
	r.Len(members, 1)
	r.Equal("alice", members[0].UserId)

	r.ErrorIs(roster.Leave(ctx, "cb", bob, "lobby"), voice.ErrNotInVoiceChannel)
	quiet(t, ca)
}

func TestLeaveAll_OnDisconnect(t *testing.T) {
	r := require.New(t)
	roster, hub := setup(t)
	ctx := context.Background()
	ca, _ := connect(hub, "ca", alice), connect(hub, "cb", bob)
	_, _ = roster.Join(ctx, "ca", alice, "lobby")
	_, _ = roster.Join(ctx, "cb", bob, "lobby")
	r.NoError(hub.Join("cb", realtime.ChannelGroup("general")))
	drain(ca)

	groups := hub.Unregister("cb")
	r.NoError(roster.LeaveAll(ctx, bob, groups))

	left := recv(t, ca).(events.UserLeftVoiceChannel)
	r.Equal("bob", left.UserId)
	r.Equal("lobby", left.ChannelId)
	quiet(t, ca)

	members, err := roster.Members(ctx, "lobby")
	r.NoError(err)
	r.Len(members, 1)
}

func TestMultipleSessions_ListedUntilLastOneLeaves(t *testing.T) {
	r := require.New(t)
	roster, hub := setup(t)
	ctx := context.Background()
	observer := connect(hub, "ob", bob)
	a1, a2, a3 := connect(hub, "a1", alice), connect(hub, "a2", alice), connect(hub, "a3", alice)
	_, err := roster.Join(ctx, "ob", bob, "lobby")
	r.NoError(err)
	for _, id := range []string{"a1", "a2", "a3"} {
		_, err = roster.Join(ctx, id, alice, "lobby")
		r.NoError(err)
	}
	r.Len(recv(t, a3).(events.VoiceRoomSnapshot).Members, 2)
	drain(observer, a1, a2, a3)

	// A disconnecting session leaves alice listed and nobody is told.
	r.NoError(roster.LeaveAll(ctx, alice, hub.Unregister("a1")))
	quiet(t, observer)

	// An explicit leave from another session is acknowledged to that session only.
	r.NoError(roster.Leave(ctx, "a3", alice, "lobby"))
	r.Equal("alice", recv(t, a3).(events.UserLeftVoiceChannel).UserId)
	quiet(t, observer)

	members, err := roster.Members(ctx, "lobby")
	r.NoError(err)
	r.Len(members, 2)

	_, err = roster.UpdateState(ctx, alice, "lobby", true, false)
	r.NoError(err)
	r.True(recv(t, observer).(events.UserVoiceStateChanged).IsMuted)
	drain(a2)

	r.NoError(roster.Leave(ctx, "a2", alice, "lobby"))
	r.Equal("alice", recv(t, observer).(events.UserLeftVoiceChannel).UserId)
	r.Equal("alice", recv(t, a2).(events.UserLeftVoiceChannel).UserId)

	members, err = roster.Members(ctx, "lobby")
	r.NoError(err)
	r.Len(members, 1)
	r.Equal("bob", members[0].UserId)
}

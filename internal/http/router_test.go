package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/SteamVC/realtime/internal/auth"
	"github.com/SteamVC/realtime/internal/events"
	"github.com/SteamVC/realtime/internal/handlers"
	apphttp "github.com/SteamVC/realtime/internal/http"
	"github.com/SteamVC/realtime/internal/mention"
	"github.com/SteamVC/realtime/internal/models"
	"github.com/SteamVC/realtime/internal/presence"
	"github.com/SteamVC/realtime/internal/ratelimit"
	"github.com/SteamVC/realtime/internal/realtime"
	"github.com/SteamVC/realtime/internal/repo"
	"github.com/SteamVC/realtime/internal/repo/sqlite"
	"github.com/SteamVC/realtime/internal/service"
	"github.com/SteamVC/realtime/internal/voice"
)

type stack struct {
	srv    *httptest.Server
	signer *auth.JWTAuthenticator
}

func newStack(t *testing.T, limit int) *stack {
	t.Helper()
	ctx := context.Background()

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "chat.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.EnsureChannel(ctx, "general", true))
	require.NoError(t, store.EnsureChannel(ctx, "staff", false))

	hub := realtime.NewHub("test", nil, nil)
	tracker := presence.NewTracker(repo.NewMemoryPresenceRepo(), hub, 0, nil)
	roster := voice.NewRoster(repo.NewMemoryVoiceRepo(), hub, nil)
	fanout := mention.NewFanout(store, hub, nil)
	svc := service.NewChatService(service.Deps{
		Messages:  store,
		Reactions: store,
		Reads:     store,
		Hub:       hub,
		Mentions:  fanout,
		Voice:     roster,
		Presence:  tracker,
	})
	signer := auth.NewJWTAuthenticator("test-secret")

	router := apphttp.NewRouter(apphttp.RouterDeps{
		API:       handlers.NewAPIHandler(tracker, roster, fanout, nil),
		WebSocket: handlers.NewWebSocketHandler(svc, signer, handlers.GatewayConfig{}, nil),
		Auth:      signer,
		Limiter:   ratelimit.New(ratelimit.Config{Limit: limit}, nil),
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	t.Cleanup(hub.Shutdown)
	return &stack{srv: srv, signer: signer}
}

func (s *stack) token(t *testing.T, id, name string) string {
	t.Helper()
	tok, err := s.signer.Sign(auth.Principal{UserId: id, UserName: name}, time.Hour)
	require.NoError(t, err)
	return tok
}

func (s *stack) dial(t *testing.T, id, name string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(s.srv.URL, "http") + "/api/v1/ws?access_token=" + s.token(t, id, name)
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func (s *stack) get(t *testing.T, path, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, s.srv.URL+path, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func send(t *testing.T, ws *websocket.Conn, typ string, payload any) {
	t.Helper()
	frame := map[string]any{"type": typ, "requestId": "req-" + typ}
	if payload != nil {
		frame["payload"] = payload
	}
	require.NoError(t, ws.WriteJSON(frame))
}

// expect reads until an event of the given name arrives.
func expect(t *testing.T, ws *websocket.Conn, name events.Name) events.Event {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		require.NoError(t, ws.SetReadDeadline(deadline))
		_, data, err := ws.ReadMessage()
		require.NoError(t, err, "waiting for %s", name)
		e, err := events.Decode(data)
		require.NoError(t, err)
		if e.EventName() == name {
			return e
		}
	}
}

func TestGateway_ChatRoundTrip(t *testing.T) {
	r := require.New(t)
	s := newStack(t, 1000)
	alice := s.dial(t, "alice", "Alice")
	bob := s.dial(t, "bob", "Bob")

	send(t, alice, "JoinChannel", map[string]string{"channelId": "general"})
	r.Equal(events.JoinedChannel{ChannelId: "general"}, expect(t, alice, events.NameJoinedChannel))
	send(t, bob, "JoinChannel", map[string]string{"channelId": "general"})
	expect(t, bob, events.NameJoinedChannel)

	send(t, alice, "SendMessage", map[string]any{
		"channelId":      "general",
		"content":        "hello @bob",
		"mentionUserIds": []string{"bob"},
	})
	got := expect(t, bob, events.NameReceiveMessage).(events.ReceiveMessage)
	r.Equal("hello @bob", got.Content)
	r.Equal("alice", got.AuthorId)
	r.Equal("general", got.ChannelId)
	r.Equal(got.MessageId, expect(t, alice, events.NameReceiveMessage).(events.ReceiveMessage).MessageId)

	mentioned := expect(t, bob, events.NameUserMentioned).(events.UserMentioned)
	r.Equal(got.MessageId, mentioned.MessageId)
	r.Equal("alice", mentioned.AuthorId)

	send(t, bob, "Typing", map[string]string{"channelId": "general"})
	typing := expect(t, alice, events.NameUserTyping).(events.UserTyping)
	r.Equal("Bob", typing.UserName)

	send(t, bob, "AddReaction", map[string]string{"messageId": got.MessageId, "emoji": "👍"})
	added := expect(t, alice, events.NameReactionAdded).(events.ReactionAdded)
	r.Equal("general", added.ChannelId)
	r.Equal("bob", added.UserId)

	resp := s.get(t, "/api/v1/mentions", s.token(t, "bob", "Bob"))
	r.Equal(http.StatusOK, resp.StatusCode)
	var body struct {
		Mentions []models.Mention `json:"mentions"`
	}
	r.NoError(json.NewDecoder(resp.Body).Decode(&body))
	r.Len(body.Mentions, 1)
	r.Equal(got.MessageId, body.Mentions[0].MessageId)
}

func TestGateway_ErrorsAreCallerScoped(t *testing.T) {
	r := require.New(t)
	s := newStack(t, 1000)
	alice := s.dial(t, "alice", "Alice")

	send(t, alice, "JoinChannel", map[string]string{"channelId": "staff"})
	e := expect(t, alice, events.NameError).(events.Error)
	r.Equal("forbidden", e.Message)
	r.Equal("req-JoinChannel", e.RequestId)

	send(t, alice, "JoinChannel", map[string]string{"channelId": "nowhere"})
	r.Equal("not found", expect(t, alice, events.NameError).(events.Error).Message)

	send(t, alice, "SendMessage", map[string]string{"channelId": "general"})
	r.Equal("invalid payload", expect(t, alice, events.NameError).(events.Error).Message)

	send(t, alice, "Typing", map[string]string{"channelId": "general"})
	r.Equal("not joined to channel", expect(t, alice, events.NameError).(events.Error).Message)

	send(t, alice, "Teleport", nil)
	r.Equal("unknown command", expect(t, alice, events.NameError).(events.Error).Message)

	r.NoError(alice.WriteMessage(websocket.TextMessage, []byte("{not json")))
	r.Equal("invalid payload", expect(t, alice, events.NameError).(events.Error).Message)

	send(t, alice, "Ping", nil)
	r.Equal(events.Pong{RequestId: "req-Ping"}, expect(t, alice, events.NamePong))
}

func TestGateway_RejectsUnauthenticatedHandshake(t *testing.T) {
	s := newStack(t, 1000)
	url := "ws" + strings.TrimPrefix(s.srv.URL, "http") + "/api/v1/ws?access_token=bogus"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGateway_DisconnectLeavesVoice(t *testing.T) {
	r := require.New(t)
	s := newStack(t, 1000)
	alice := s.dial(t, "alice", "Alice")
	bob := s.dial(t, "bob", "Bob")

	send(t, alice, "JoinVoiceChannel", map[string]string{"channelId": "lobby"})
	snap := expect(t, alice, events.NameVoiceRoomSnapshot).(events.VoiceRoomSnapshot)
	r.Len(snap.Members, 1)

	send(t, bob, "JoinVoiceChannel", map[string]string{"channelId": "lobby"})
	r.Len(expect(t, bob, events.NameVoiceRoomSnapshot).(events.VoiceRoomSnapshot).Members, 2)
	r.Equal("bob", expect(t, alice, events.NameUserJoinedVoiceChannel).(events.UserJoinedVoiceChannel).UserId)

	send(t, bob, "UpdateVoiceState", map[string]any{"channelId": "lobby", "isMuted": true})
	changed := expect(t, alice, events.NameUserVoiceStateChanged).(events.UserVoiceStateChanged)
	r.True(changed.IsMuted)
	r.False(changed.IsDeafened)

	resp := s.get(t, "/api/v1/voice/lobby/members", "")
	r.Equal(http.StatusOK, resp.StatusCode)
	var roster struct {
		Members []models.VoiceMember `json:"members"`
	}
	r.NoError(json.NewDecoder(resp.Body).Decode(&roster))
	r.Len(roster.Members, 2)

	r.NoError(bob.Close())
	r.Equal("bob", expect(t, alice, events.NameUserLeftVoiceChannel).(events.UserLeftVoiceChannel).UserId)
	r.Equal(events.UserOffline{UserId: "bob"}, expect(t, alice, events.NameUserOffline))
}

func TestRouter_PresenceEndpoints(t *testing.T) {
	r := require.New(t)
	s := newStack(t, 1000)
	s.dial(t, "alice", "Alice")

	r.Eventually(func() bool {
		resp := s.get(t, "/api/v1/presence/online", "")
		var body struct {
			UserIds []string `json:"userIds"`
		}
		return json.NewDecoder(resp.Body).Decode(&body) == nil && len(body.UserIds) == 1 && body.UserIds[0] == "alice"
	}, 2*time.Second, 20*time.Millisecond)

	req, err := http.NewRequest(http.MethodPost, s.srv.URL+"/api/v1/presence/heartbeat", nil)
	r.NoError(err)
	resp, err := http.DefaultClient.Do(req)
	r.NoError(err)
	_ = resp.Body.Close()
	r.Equal(http.StatusUnauthorized, resp.StatusCode)

	req.Header.Set("Authorization", "Bearer "+s.token(t, "carol", "Carol"))
	resp, err = http.DefaultClient.Do(req)
	r.NoError(err)
	_ = resp.Body.Close()
	r.Equal(http.StatusNoContent, resp.StatusCode)
}

func TestRouter_RateLimitsButNotHealth(t *testing.T) {
	r := require.New(t)
	s := newStack(t, 2)

	for i := 0; i < 2; i++ {
		r.Equal(http.StatusOK, s.get(t, "/api/v1/presence/online", "").StatusCode)
	}
	resp := s.get(t, "/api/v1/presence/online", "")
	r.Equal(http.StatusTooManyRequests, resp.StatusCode)
	r.NotEmpty(resp.Header.Get("Retry-After"))

	var body struct {
		StatusCode int `json:"statusCode"`
		RetryAfter int `json:"retryAfter"`
	}
	r.NoError(json.NewDecoder(resp.Body).Decode(&body))
	r.Equal(http.StatusTooManyRequests, body.StatusCode)
	r.Positive(body.RetryAfter)

	for i := 0; i < 5; i++ {
		r.Equal(http.StatusOK, s.get(t, "/api/v1/healthz", "").StatusCode)
	}

	// Another identity has its own window.
	r.Equal(http.StatusOK, s.get(t, "/api/v1/presence/online", s.token(t, "dave", "Dave")).StatusCode)
}

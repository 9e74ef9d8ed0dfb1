package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/SteamVC/realtime/internal/auth"
	"github.com/SteamVC/realtime/internal/events"
	"github.com/SteamVC/realtime/internal/idgen"
	"github.com/SteamVC/realtime/internal/realtime"
	"github.com/SteamVC/realtime/internal/repo"
	"github.com/SteamVC/realtime/internal/service"
	"github.com/SteamVC/realtime/internal/voice"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = (pongWait * 9) / 10
	maxFrameSize = 64 << 10
)

var errUnknownCommand = errors.New("unknown command")

// GatewayConfig tunes the websocket gateway. Zero values take defaults.
type GatewayConfig struct {
	SendBuffer     int
	CommandTimeout time.Duration
	// AllowedOrigins empty or containing "*" accepts any origin.
	AllowedOrigins []string
}

// WebSocketHandler authenticates a client, upgrades the connection and runs
// its commands one at a time until it goes away.
type WebSocketHandler struct {
	svc      *service.ChatService
	auth     auth.Authenticator
	cfg      GatewayConfig
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewWebSocketHandler returns the gateway handler for svc.
func NewWebSocketHandler(svc *service.ChatService, a auth.Authenticator, cfg GatewayConfig, log *zap.Logger) *WebSocketHandler {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = realtime.DefaultSendBuffer
	}
	if cfg.CommandTimeout <= 0 {
		cfg.CommandTimeout = 10 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	h := &WebSocketHandler{svc: svc, auth: a, cfg: cfg, log: log}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.cfg.AllowedOrigins) == 0 || lo.Contains(h.cfg.AllowedOrigins, "*") {
		return true
	}
	return lo.Contains(h.cfg.AllowedOrigins, origin)
}

func (h *WebSocketHandler) principal(r *http.Request) (auth.Principal, error) {
	if p, ok := auth.FromContext(r.Context()); ok {
		return p, nil
	}
	return h.auth.Authenticate(r.Context(), auth.TokenFromRequest(r))
}

// HandleWebSocket rejects unauthenticated handshakes before upgrading.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	p, err := h.principal(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	conn := realtime.NewConn(idgen.NewConnectionID(), p, h.cfg.SendBuffer)
	log := h.log.With(zap.String("connId", conn.ID()), zap.String("userId", p.UserId))

	// Commands already dispatched finish even if the client hangs up.
	base := context.WithoutCancel(r.Context())

	h.svc.Connect(base, conn)
	log.Info("websocket connected")

	go h.writePump(ws, conn, log)
	h.readPump(base, ws, conn, log)

	h.svc.Disconnect(base, conn)
	log.Info("websocket disconnected")
}

func (h *WebSocketHandler) readPump(ctx context.Context, ws *websocket.Conn, conn *realtime.Conn, log *zap.Logger) {
	ws.SetReadLimit(maxFrameSize)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	caller := service.CallerOf(conn)
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Warn("websocket read failed", zap.Error(err))
			}
			return
		}
		_ = ws.SetReadDeadline(time.Now().Add(pongWait))

		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			h.reply(ctx, caller, events.Error{Message: "invalid payload"}, log)
			continue
		}
		h.handle(ctx, caller, cmd, log)
	}
}

func (h *WebSocketHandler) writePump(ws *websocket.Conn, conn *realtime.Conn, log *zap.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = ws.Close()
	}()

	for {
		select {
		case frame := <-conn.Send():
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.TextMessage, frame); err != nil {
				log.Debug("websocket write failed", zap.Error(err))
				conn.Close()
				return
			}
		case <-ticker.C:
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				conn.Close()
				return
			}
		case <-conn.Done():
			_ = ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}

// handle runs one command under the per-command timeout. Failures become a
// caller-scoped Error event.
func (h *WebSocketHandler) handle(base context.Context, caller service.Caller, cmd Command, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(base, h.cfg.CommandTimeout)
	defer cancel()

	err := h.execute(ctx, caller, cmd)
	if err == nil {
		return
	}
	msg := errorMessage(err)
	if msg == "internal error" {
		log.Error("command failed", zap.String("type", string(cmd.Type)), zap.Error(err))
	} else {
		log.Debug("command rejected", zap.String("type", string(cmd.Type)), zap.Error(err))
	}
	h.reply(ctx, caller, events.Error{Message: msg, RequestId: cmd.RequestId}, log)
}

func (h *WebSocketHandler) reply(ctx context.Context, caller service.Caller, e events.Event, log *zap.Logger) {
	if err := h.svc.Reply(ctx, caller, e); err != nil {
		log.Warn("reply failed", zap.Error(err))
	}
}

func (h *WebSocketHandler) execute(ctx context.Context, c service.Caller, cmd Command) error {
	switch cmd.Type {
	case CmdJoinChannel, CmdLeaveChannel, CmdTyping, CmdStopTyping, CmdJoinVoiceChannel, CmdLeaveVoiceChannel:
		var in channelPayload
		if err := decodePayload(cmd.Payload, &in); err != nil {
			return err
		}
		return h.channelCommand(ctx, c, cmd.Type, in.ChannelId)

	case CmdSendMessage:
		var in sendMessagePayload
		if err := decodePayload(cmd.Payload, &in); err != nil {
			return err
		}
		_, err := h.svc.SendMessage(ctx, c, in.ChannelId, in.NewMessage)
		return err

	case CmdEditMessage:
		var in editMessagePayload
		if err := decodePayload(cmd.Payload, &in); err != nil {
			return err
		}
		_, err := h.svc.EditMessage(ctx, c, in.MessageId, in.Content)
		return err

	case CmdDeleteMessage, CmdPinMessage, CmdUnpinMessage:
		var in messagePayload
		if err := decodePayload(cmd.Payload, &in); err != nil {
			return err
		}
		return h.messageCommand(ctx, c, cmd.Type, in.MessageId)

	case CmdAddReaction:
		var in reactionPayload
		if err := decodePayload(cmd.Payload, &in); err != nil {
			return err
		}
		_, err := h.svc.AddReaction(ctx, c, in.MessageId, in.Emoji)
		return err

	case CmdRemoveReaction:
		var in reactionPayload
		if err := decodePayload(cmd.Payload, &in); err != nil {
			return err
		}
		return h.svc.RemoveReaction(ctx, c, in.MessageId, in.Emoji)

	case CmdUpdateVoiceState:
		var in voiceStatePayload
		if err := decodePayload(cmd.Payload, &in); err != nil {
			return err
		}
		return h.svc.UpdateVoiceState(ctx, c, in.ChannelId, in.IsMuted, in.IsDeafened)

	case CmdHeartbeat:
		return h.svc.Heartbeat(ctx, c)

	case CmdPing:
		return h.svc.Reply(ctx, c, events.Pong{RequestId: cmd.RequestId})

	default:
		return fmt.Errorf("%w: %q", errUnknownCommand, cmd.Type)
	}
}

func (h *WebSocketHandler) channelCommand(ctx context.Context, c service.Caller, t CommandType, channelID string) error {
	switch t {
	case CmdJoinChannel:
		return h.svc.JoinChannel(ctx, c, channelID)
	case CmdLeaveChannel:
		return h.svc.LeaveChannel(ctx, c, channelID)
	case CmdTyping:
		return h.svc.Typing(ctx, c, channelID)
	case CmdStopTyping:
		return h.svc.StopTyping(ctx, c, channelID)
	case CmdJoinVoiceChannel:
		return h.svc.JoinVoiceChannel(ctx, c, channelID)
	default:
		return h.svc.LeaveVoiceChannel(ctx, c, channelID)
	}
}

func (h *WebSocketHandler) messageCommand(ctx context.Context, c service.Caller, t CommandType, messageID string) error {
	var err error
	switch t {
	case CmdDeleteMessage:
		err = h.svc.DeleteMessage(ctx, c, messageID)
	case CmdPinMessage:
		_, err = h.svc.PinMessage(ctx, c, messageID)
	default:
		_, err = h.svc.UnpinMessage(ctx, c, messageID)
	}
	return err
}

// errorMessage maps an error to the text a client may see.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, repo.ErrForbidden):
		return "forbidden"
	case errors.Is(err, repo.ErrNotFound):
		return "not found"
	case errors.Is(err, errInvalidPayload):
		return "invalid payload"
	case errors.Is(err, errUnknownCommand):
		return "unknown command"
	case errors.Is(err, service.ErrNotJoined):
		return "not joined to channel"
	case errors.Is(err, voice.ErrNotInVoiceChannel):
		return "not in voice channel"
	default:
		return "internal error"
	}
}

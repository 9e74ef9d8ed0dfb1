package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/SteamVC/realtime/internal/auth"
	"github.com/SteamVC/realtime/internal/models"
)

const (
	defaultMentionLimit = 50
	maxMentionLimit     = 200
)

// PresenceReader answers presence queries.
type PresenceReader interface {
	OnlineUsers(ctx context.Context) ([]string, error)
	Heartbeat(ctx context.Context, userID string) error
}

// VoiceReader lists voice rosters.
type VoiceReader interface {
	Members(ctx context.Context, channelID string) ([]models.VoiceMember, error)
}

// MentionReader lists a user's stored mentions.
type MentionReader interface {
	ForUser(ctx context.Context, userID string, limit int) ([]models.Mention, error)
}

// APIHandler serves the read side of presence, voice rosters and mentions.
type APIHandler struct {
	presence PresenceReader
	voice    VoiceReader
	mentions MentionReader
	log      *zap.Logger
}

// NewAPIHandler returns the REST handler set.
func NewAPIHandler(p PresenceReader, v VoiceReader, m MentionReader, log *zap.Logger) *APIHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &APIHandler{presence: p, voice: v, mentions: m, log: log}
}

// Healthz reports liveness. It is exempt from rate limiting.
func (h *APIHandler) Healthz(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// OnlineUsers lists the users active within the presence window.
func (h *APIHandler) OnlineUsers(w http.ResponseWriter, r *http.Request) {
	ids, err := h.presence.OnlineUsers(r.Context())
	if err != nil {
		h.log.Error("online users", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"userIds": ids})
}

// Heartbeat refreshes the caller's last-active time.
func (h *APIHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.presence.Heartbeat(r.Context(), p.UserId); err != nil {
		h.log.Error("heartbeat", zap.String("userId", p.UserId), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// VoiceMembers returns the roster of one voice channel.
func (h *APIHandler) VoiceMembers(w http.ResponseWriter, r *http.Request) {
	channelId := normalizeID(chi.URLParam(r, "channelId"))
	if err := validateChannelId(channelId); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	members, err := h.voice.Members(r.Context(), channelId)
	if err != nil {
		h.log.Error("voice members", zap.String("channelId", channelId), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"members": members})
}

// Mentions lists the caller's mention records, newest first. It is the
// fallback for mentions delivered while the user had no open connection.
func (h *APIHandler) Mentions(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	limit := defaultMentionLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxMentionLimit)
	}
	mentions, err := h.mentions.ForUser(r.Context(), p.UserId, limit)
	if err != nil {
		h.log.Error("mentions", zap.String("userId", p.UserId), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"mentions": mentions})
}

package handlers

import (
	"encoding/json"

	"github.com/SteamVC/realtime/internal/models"
)

// CommandType names an inbound command frame.
type CommandType string

const (
	CmdJoinChannel       CommandType = "JoinChannel"
	CmdLeaveChannel      CommandType = "LeaveChannel"
	CmdSendMessage       CommandType = "SendMessage"
	CmdEditMessage       CommandType = "EditMessage"
	CmdDeleteMessage     CommandType = "DeleteMessage"
	CmdPinMessage        CommandType = "PinMessage"
	CmdUnpinMessage      CommandType = "UnpinMessage"
	CmdAddReaction       CommandType = "AddReaction"
	CmdRemoveReaction    CommandType = "RemoveReaction"
	CmdTyping            CommandType = "Typing"
	CmdStopTyping        CommandType = "StopTyping"
	CmdJoinVoiceChannel  CommandType = "JoinVoiceChannel"
	CmdLeaveVoiceChannel CommandType = "LeaveVoiceChannel"
	CmdUpdateVoiceState  CommandType = "UpdateVoiceState"
	CmdHeartbeat         CommandType = "Heartbeat"
	CmdPing              CommandType = "Ping"
)

// Command is one frame received from a client.
type Command struct {
	Type      CommandType     `json:"type"`
	RequestId string          `json:"requestId,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

type channelPayload struct {
	ChannelId string `json:"channelId" validate:"required,max=128"`
}

type sendMessagePayload struct {
	ChannelId string `json:"channelId" validate:"required,max=128"`
	models.NewMessage
}

type messagePayload struct {
	MessageId string `json:"messageId" validate:"required,max=64"`
}

type editMessagePayload struct {
	MessageId string `json:"messageId" validate:"required,max=64"`
	Content   string `json:"content" validate:"required,max=4000"`
}

type reactionPayload struct {
	MessageId string `json:"messageId" validate:"required,max=64"`
	Emoji     string `json:"emoji" validate:"required,max=64"`
}

type voiceStatePayload struct {
	ChannelId  string `json:"channelId" validate:"required,max=128"`
	IsMuted    bool   `json:"isMuted"`
	IsDeafened bool   `json:"isDeafened"`
}

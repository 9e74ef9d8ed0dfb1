// Package events defines every outbound real-time event as a closed set of
// payload types and the wire envelope they travel in.
package events

import (
	"github.com/SteamVC/realtime/internal/models"
)

// Name is the wire name of an outbound event.
type Name string

const (
	NameJoinedChannel          Name = "JoinedChannel"
	NameLeftChannel            Name = "LeftChannel"
	NameReceiveMessage         Name = "ReceiveMessage"
	NameMessageEdited          Name = "MessageEdited"
	NameMessageDeleted         Name = "MessageDeleted"
	NameUserTyping             Name = "UserTyping"
	NameUserStoppedTyping      Name = "UserStoppedTyping"
	NameReactionAdded          Name = "ReactionAdded"
	NameReactionRemoved        Name = "ReactionRemoved"
	NameMessagePinned          Name = "MessagePinned"
	NameMessageUnpinned        Name = "MessageUnpinned"
	NameUserJoinedVoiceChannel Name = "UserJoinedVoiceChannel"
	NameUserLeftVoiceChannel   Name = "UserLeftVoiceChannel"
	NameUserVoiceStateChanged  Name = "UserVoiceStateChanged"
	NameVoiceRoomSnapshot      Name = "VoiceRoomSnapshot"
	NameUserMentioned          Name = "UserMentioned"
	NameUserOnline             Name = "UserOnline"
	NameUserOffline            Name = "UserOffline"
	NameError                  Name = "Error"
	NamePong                   Name = "Pong"
)

// Event is implemented only by the payload types of this package.
type Event interface {
	EventName() Name
	sealed()
}

// JoinedChannel acknowledges a channel join to the caller.
type JoinedChannel struct {
	ChannelId string `json:"channelId"`
}

// LeftChannel acknowledges a channel leave to the caller.
type LeftChannel struct {
	ChannelId string `json:"channelId"`
}

// ReceiveMessage carries a newly created message.
type ReceiveMessage struct {
	models.Message
}

// MessageEdited carries the message after an edit.
type MessageEdited struct {
	models.Message
}

// MessageDeleted identifies a removed message.
type MessageDeleted struct {
	MessageId string `json:"messageId"`
	ChannelId string `json:"channelId"`
}

// Typing is the payload shared by UserTyping and UserStoppedTyping.
type Typing struct {
	UserId    string `json:"userId"`
	UserName  string `json:"username"`
	ChannelId string `json:"channelId"`
}

// UserTyping signals that a user started typing. Clients expire it themselves.
type UserTyping struct{ Typing }

// UserStoppedTyping signals that a user stopped typing.
type UserStoppedTyping struct{ Typing }

// ReactionAdded carries the stored reaction.
type ReactionAdded struct {
	models.Reaction
	ChannelId string `json:"channelId"`
}

// ReactionRemoved identifies a removed reaction.
type ReactionRemoved struct {
	MessageId string `json:"messageId"`
	ChannelId string `json:"channelId"`
	UserId    string `json:"userId"`
	Emoji     string `json:"emoji"`
}

// MessagePinned carries the message after pinning.
type MessagePinned struct {
	models.Message
}

// MessageUnpinned carries the message after unpinning.
type MessageUnpinned struct {
	models.Message
}

// UserJoinedVoiceChannel announces a new voice room member.
type UserJoinedVoiceChannel struct {
	models.VoiceMember
}

// UserLeftVoiceChannel announces a departed voice room member.
type UserLeftVoiceChannel struct {
	models.VoiceMember
}

// UserVoiceStateChanged carries a member's new mute/deafen flags.
type UserVoiceStateChanged struct {
	models.VoiceMember
}

// VoiceRoomSnapshot is the full roster sent to a connection joining a voice room.
type VoiceRoomSnapshot struct {
	ChannelId string               `json:"channelId"`
	Members   []models.VoiceMember `json:"members"`
}

// UserMentioned is delivered privately to the mentioned user's connections.
type UserMentioned struct {
	MentionId string `json:"mentionId"`
	MessageId string `json:"messageId"`
	ChannelId string `json:"channelId"`
	AuthorId  string `json:"authorId"`
	Content   string `json:"content"`
}

// UserOnline announces that a user's first session opened.
type UserOnline struct {
	UserId string `json:"userId"`
}

// UserOffline announces that a user's last session closed.
type UserOffline struct {
	UserId string `json:"userId"`
}

// Error is only ever sent to the connection whose command failed.
type Error struct {
	Message   string `json:"message"`
	RequestId string `json:"requestId,omitempty"`
}

// Pong answers a client Ping.
type Pong struct {
	RequestId string `json:"requestId,omitempty"`
}

func (JoinedChannel) EventName() Name          { return NameJoinedChannel }
func (LeftChannel) EventName() Name            { return NameLeftChannel }
func (ReceiveMessage) EventName() Name         { return NameReceiveMessage }
func (MessageEdited) EventName() Name          { return NameMessageEdited }
func (MessageDeleted) EventName() Name         { return NameMessageDeleted }
func (UserTyping) EventName() Name             { return NameUserTyping }
func (UserStoppedTyping) EventName() Name      { return NameUserStoppedTyping }
func (ReactionAdded) EventName() Name          { return NameReactionAdded }
func (ReactionRemoved) EventName() Name        { return NameReactionRemoved }
func (MessagePinned) EventName() Name          { return NameMessagePinned }
func (MessageUnpinned) EventName() Name        { return NameMessageUnpinned }
func (UserJoinedVoiceChannel) EventName() Name { return NameUserJoinedVoiceChannel }
func (UserLeftVoiceChannel) EventName() Name   { return NameUserLeftVoiceChannel }
func (UserVoiceStateChanged) EventName() Name  { return NameUserVoiceStateChanged }
func (VoiceRoomSnapshot) EventName() Name      { return NameVoiceRoomSnapshot }
func (UserMentioned) EventName() Name          { return NameUserMentioned }
func (UserOnline) EventName() Name             { return NameUserOnline }
func (UserOffline) EventName() Name            { return NameUserOffline }
func (Error) EventName() Name                  { return NameError }
func (Pong) EventName() Name                   { return NamePong }

func (JoinedChannel) sealed()          {}
func (LeftChannel) sealed()            {}
func (ReceiveMessage) sealed()         {}
func (MessageEdited) sealed()          {}
func (MessageDeleted) sealed()         {}
func (UserTyping) sealed()             {}
func (UserStoppedTyping) sealed()      {}
func (ReactionAdded) sealed()          {}
func (ReactionRemoved) sealed()        {}
func (MessagePinned) sealed()          {}
func (MessageUnpinned) sealed()        {}
func (UserJoinedVoiceChannel) sealed() {}
func (UserLeftVoiceChannel) sealed()   {}
func (UserVoiceStateChanged) sealed()  {}
func (VoiceRoomSnapshot) sealed()      {}
func (UserMentioned) sealed()          {}
func (UserOnline) sealed()             {}
func (UserOffline) sealed()            {}
func (Error) sealed()                  {}
func (Pong) sealed()                   {}

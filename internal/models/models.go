// Package models defines the data structures shared by the real-time layer
// and its persistence collaborators.
package models

import "time"

// Message is a persisted chat message as returned by the message collaborator.
type Message struct {
	MessageId string     `json:"messageId"`
	ChannelId string     `json:"channelId"`
	AuthorId  string     `json:"authorId"`
	Content   string     `json:"content"`
	IsPinned  bool       `json:"isPinned"`
	CreatedAt time.Time  `json:"createdAt"` // authoritative sequencing key
	EditedAt  *time.Time `json:"editedAt,omitempty"`
}

// NewMessage is the client-supplied body of a message to create.
type NewMessage struct {
	Content string `json:"content" validate:"required,max=4000"`
	// MentionUserIds lists users already resolved as mentioned by the client.
	MentionUserIds []string `json:"mentionUserIds,omitempty" validate:"omitempty,max=50,dive,required"`
}

// Page selects a slice of a channel's history. Limit 0 returns no rows and
// only exercises the access check.
type Page struct {
	Before string
	Limit  int
}

// Reaction is one user's emoji on a message.
type Reaction struct {
	ReactionId string    `json:"reactionId"`
	MessageId  string    `json:"messageId"`
	UserId     string    `json:"userId"`
	Emoji      string    `json:"emoji"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Mention is the durable record of a user being mentioned in a message.
type Mention struct {
	MentionId string    `json:"mentionId"`
	MessageId string    `json:"messageId"`
	ChannelId string    `json:"channelId"`
	UserId    string    `json:"userId"`
	AuthorId  string    `json:"authorId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// VoiceMember is a user's ephemeral state inside a voice channel.
type VoiceMember struct {
	ChannelId  string    `json:"channelId"`
	UserId     string    `json:"userId"`
	UserName   string    `json:"username"`
	IsMuted    bool      `json:"isMuted"`
	IsDeafened bool      `json:"isDeafened"`
	JoinedAt   time.Time `json:"joinedAt"`
}

package events

import (
	"encoding/json"
	"fmt"
)

// Frame is the JSON envelope written to and read from websocket clients.
type Frame struct {
	Type    Name            `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Encode renders an event as a wire frame.
func Encode(e Event) ([]byte, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", e.EventName(), err)
	}
	b, err := json.Marshal(Frame{Type: e.EventName(), Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("encode %s frame: %w", e.EventName(), err)
	}
	return b, nil
}

// Decode parses a wire frame back into its typed event.
func Decode(data []byte) (Event, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	e, err := zero(f.Type)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(f.Payload, e); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", f.Type, err)
	}
	return deref(e), nil
}

func zero(name Name) (any, error) {
	switch name {
	case NameJoinedChannel:
		return &JoinedChannel{}, nil
	case NameLeftChannel:
		return &LeftChannel{}, nil
	case NameReceiveMessage:
		return &ReceiveMessage{}, nil
	case NameMessageEdited:
		return &MessageEdited{}, nil
	case NameMessageDeleted:
		return &MessageDeleted{}, nil
	case NameUserTyping:
		return &UserTyping{}, nil
	case NameUserStoppedTyping:
		return &UserStoppedTyping{}, nil
	case NameReactionAdded:
		return &ReactionAdded{}, nil
	case NameReactionRemoved:
		return &ReactionRemoved{}, nil
	case NameMessagePinned:
		return &MessagePinned{}, nil
	case NameMessageUnpinned:
		return &MessageUnpinned{}, nil
	case NameUserJoinedVoiceChannel:
		return &UserJoinedVoiceChannel{}, nil
	case NameUserLeftVoiceChannel:
		return &UserLeftVoiceChannel{}, nil
	case NameUserVoiceStateChanged:
		return &UserVoiceStateChanged{}, nil
	case NameVoiceRoomSnapshot:
		return &VoiceRoomSnapshot{}, nil
	case NameUserMentioned:
		return &UserMentioned{}, nil
	case NameUserOnline:
		return &UserOnline{}, nil
	case NameUserOffline:
		return &UserOffline{}, nil
	case NameError:
		return &Error{}, nil
	case NamePong:
		return &Pong{}, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", name)
	}
}

func deref(v any) Event {
	switch e := v.(type) {
	case *JoinedChannel:
		return *e
	case *LeftChannel:
		return *e
	case *ReceiveMessage:
		return *e
	case *MessageEdited:
		return *e
	case *MessageDeleted:
		return *e
	case *UserTyping:
		return *e
	case *UserStoppedTyping:
		return *e
	case *ReactionAdded:
		return *e
	case *ReactionRemoved:
		return *e
	case *MessagePinned:
		return *e
	case *MessageUnpinned:
		return *e
	case *UserJoinedVoiceChannel:
		return *e
	case *UserLeftVoiceChannel:
		return *e
	case *UserVoiceStateChanged:
		return *e
	case *VoiceRoomSnapshot:
		return *e
	case *UserMentioned:
		return *e
	case *UserOnline:
		return *e
	case *UserOffline:
		return *e
	case *Error:
		return *e
	case *Pong:
		return *e
	}
	return nil
}

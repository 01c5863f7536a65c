package event

import (
	"time"

	"connectrix/domain"

	"github.com/google/uuid"
)

// DomainEvent is anything the relay fans out to a room of live connections.
type DomainEvent interface {
	RoomID() domain.RoomID
}

// SenderScoped events skip one connection on fan-out, typically the sender,
// which already received a direct acknowledgement.
type SenderScoped interface {
	ExcludeConnection() string
}

// NewMessage is broadcast to the conversation room after the message has
// been durably persisted.
type NewMessage struct {
	Message      domain.Message
	Tag          string
	SenderConnID string
}

func (e NewMessage) RoomID() domain.RoomID {
	return domain.ChatRoom(e.Message.ConversationID)
}

func (e NewMessage) ExcludeConnection() string { return e.SenderConnID }

// MessageReceived is the targeted unread-count bump delivered to the
// receiver's user room. Best-effort: an offline receiver discovers the
// unread state later through the live-query channel.
type MessageReceived struct {
	ReceiverID     string
	ConversationID string
	SenderID       string
}

func (e MessageReceived) RoomID() domain.RoomID {
	return domain.UserRoom(e.ReceiverID)
}

type MessagesRead struct {
	ConversationID string
	ReaderID       string
	MessageIDs     []uuid.UUID
	ReaderConnID   string
}

func (e MessagesRead) RoomID() domain.RoomID {
	return domain.ChatRoom(e.ConversationID)
}

func (e MessagesRead) ExcludeConnection() string { return e.ReaderConnID }

// UserTyping is purely ephemeral: no persistence, no state machine.
type UserTyping struct {
	ConversationID string
	UserID         string
	IsTyping       bool
	SenderConnID   string
}

func (e UserTyping) RoomID() domain.RoomID {
	return domain.ChatRoom(e.ConversationID)
}

func (e UserTyping) ExcludeConnection() string { return e.SenderConnID }

// SessionOpened and SessionClosed feed the presence tracker.
// They target the user's own room so other devices observe the change.
type SessionOpened struct {
	UserID       string
	ConnectionID string
	At           time.Time
}

func (e SessionOpened) RoomID() domain.RoomID {
	return domain.UserRoom(e.UserID)
}

type SessionClosed struct {
	UserID       string
	ConnectionID string
	// LastOfUser is true when no other session remains for the user;
	// only then does presence flip offline.
	LastOfUser bool
	At         time.Time
}

func (e SessionClosed) RoomID() domain.RoomID {
	return domain.UserRoom(e.UserID)
}

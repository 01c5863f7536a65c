// Package ws carries the Connectrix socket protocol: JSON envelopes with a
// named event and a payload, one envelope per WebSocket text frame.
package ws

import (
	"encoding/json"

	"connectrix/domain"
	"connectrix/domain/event"

	"github.com/google/uuid"
)

// Wire event names. Client to server on the left block, server to client
// on the right.
const (
	EventAuthenticate = "authenticate"
	EventJoinChat     = "joinChat"
	EventSendMessage  = "sendMessage"
	EventMarkAsRead   = "markAsRead"
	EventTyping       = "typing"

	EventAuthenticated   = "authenticated"
	EventNewMessage      = "newMessage"
	EventMessageReceived = "messageReceived"
	EventMessageError    = "messageError"
	EventMessagesRead    = "messagesRead"
	EventUserTyping      = "userTyping"
)

type Envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type AuthenticatePayload struct {
	Token  string `json:"token" validate:"required"`
	UserID string `json:"userId" validate:"required"`
}

type JoinChatPayload struct {
	ChatID string `json:"chatId" validate:"required"`
	UserID string `json:"userId"`
}

type SendMessagePayload struct {
	ChatID      string `json:"chatId"`
	SenderID    string `json:"senderId" validate:"required"`
	ReceiverID  string `json:"receiverId" validate:"required"`
	Message     string `json:"message" validate:"required"`
	MessageType string `json:"messageType"`
	// Tag is the client-generated correlation id echoed in the ack so the
	// UI can swap its optimistic entry for the durable message.
	Tag string `json:"tag"`
}

type MarkAsReadPayload struct {
	ChatID     string      `json:"chatId" validate:"required"`
	MessageIDs []uuid.UUID `json:"messageIds" validate:"required,min=1"`
}

type TypingPayload struct {
	ChatID   string `json:"chatId" validate:"required"`
	UserID   string `json:"userId"`
	IsTyping bool   `json:"isTyping"`
}

type AuthenticatedPayload struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type NewMessagePayload struct {
	Message domain.Message `json:"message"`
	Tag     string         `json:"tag,omitempty"`
}

type MessageReceivedPayload struct {
	ChatID   string `json:"chatId"`
	SenderID string `json:"senderId"`
}

type MessageErrorPayload struct {
	Error string `json:"error"`
	Tag   string `json:"tag,omitempty"`
}

type MessagesReadPayload struct {
	ChatID     string      `json:"chatId"`
	ReaderID   string      `json:"readerId"`
	MessageIDs []uuid.UUID `json:"messageIds"`
}

type UserTypingPayload struct {
	ChatID   string `json:"chatId"`
	UserID   string `json:"userId"`
	IsTyping bool   `json:"isTyping"`
}

// Frame marshals an envelope for the wire.
func Frame(eventName string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: eventName, Payload: raw})
}

// EncodeEvent maps a fanned-out domain event onto its wire envelope.
// Session lifecycle events stay internal (permanent sinks only) and
// return ok=false.
func EncodeEvent(e event.DomainEvent) ([]byte, bool) {
	switch evt := e.(type) {
	case event.NewMessage:
		frame, err := Frame(EventNewMessage, NewMessagePayload{Message: evt.Message, Tag: evt.Tag})
		return frame, err == nil
	case event.MessageReceived:
		frame, err := Frame(EventMessageReceived, MessageReceivedPayload{
			ChatID:   evt.ConversationID,
			SenderID: evt.SenderID,
		})
		return frame, err == nil
	case event.MessagesRead:
		frame, err := Frame(EventMessagesRead, MessagesReadPayload{
			ChatID:     evt.ConversationID,
			ReaderID:   evt.ReaderID,
			MessageIDs: evt.MessageIDs,
		})
		return frame, err == nil
	case event.UserTyping:
		frame, err := Frame(EventUserTyping, UserTypingPayload{
			ChatID:   evt.ConversationID,
			UserID:   evt.UserID,
			IsTyping: evt.IsTyping,
		})
		return frame, err == nil
	default:
		return nil, false
	}
}

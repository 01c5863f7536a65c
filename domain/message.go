package domain

import (
	"time"

	"github.com/google/uuid"
)

type MessageKind string

const KindText MessageKind = "text"

// Message is immutable after creation except for the Read flag,
// which only ever transitions false to true.
type Message struct {
	ID             uuid.UUID   `json:"id"`
	ConversationID string      `json:"conversationId"`
	SenderID       string      `json:"senderId"`
	ReceiverID     string      `json:"receiverId"`
	Body           string      `json:"body"`
	Kind           MessageKind `json:"kind"`
	SentAt         time.Time   `json:"sentAt"`
	Read           bool        `json:"read"`
}

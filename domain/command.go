package domain

import "github.com/google/uuid"

// SendMessageCommand is the relay-side view of a sendMessage intent.
// Tag is a client-side correlation id carried through the acknowledgement
// so the UI can reconcile its optimistic entry with the durable id.
type SendMessageCommand struct {
	ConversationID string
	SenderID       string
	ReceiverID     string
	Body           string
	Kind           MessageKind
	Tag            string
}

type MarkAsReadCommand struct {
	ConversationID string
	MessageIDs     []uuid.UUID
}

type TypingCommand struct {
	ConversationID string
	IsTyping       bool
}

package domain

import (
	"strings"
	"time"
)

// MessageSummary is the denormalized last-message snapshot stored on a
// Conversation for list-view rendering without fetching message history.
type MessageSummary struct {
	Text      string      `json:"text"`
	SenderID  string      `json:"senderId"`
	Timestamp time.Time   `json:"timestamp"`
	Type      MessageKind `json:"type"`
}

// Conversation is a 1:1 thread between exactly two participants.
// ReadBy holds the conversation-level read flag per participant; it is
// coarser than the per-message Read flag and drives the message badge.
type Conversation struct {
	ID             string          `json:"id"`
	ParticipantIDs []string        `json:"participantIds"`
	LastMessage    *MessageSummary `json:"lastMessageSummary,omitempty"`
	ReadBy         map[string]bool `json:"readBy"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

func (c Conversation) HasParticipant(userID string) bool {
	for _, id := range c.ParticipantIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// OtherParticipant returns the peer of userID, or an empty string when
// userID is not part of the conversation.
func (c Conversation) OtherParticipant(userID string) string {
	for _, id := range c.ParticipantIDs {
		if id != userID {
			return id
		}
	}
	return ""
}

// PairKey builds the order-independent lookup key for a participant pair.
// Conversations are keyed by the pair, never by a client-supplied id.
func PairKey(a, b string) string {
	if strings.Compare(a, b) > 0 {
		a, b = b, a
	}
	return a + ":" + b
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	TypeMentorshipRequest  NotificationType = "mentorship_request"
	TypeMentorshipAccepted NotificationType = "mentorship_accepted"
	TypeMentorshipDeclined NotificationType = "mentorship_declined"
	TypeMessage            NotificationType = "message"
	TypeReaction           NotificationType = "reaction"
	TypeComment            NotificationType = "comment"
	TypeForumPost          NotificationType = "forum_post"
	TypeEvent              NotificationType = "event"
	TypeProfileVisit       NotificationType = "profile_visit"
	TypeConnectionRequest  NotificationType = "connection_request"
	TypeGeneral            NotificationType = "general"
)

// Notification is mutated only to flip Read; it is never deleted,
// only superseded by newer notifications.
type Notification struct {
	ID          uuid.UUID        `json:"id"`
	RecipientID string           `json:"recipientId"`
	SenderID    string           `json:"senderId"`
	Type        NotificationType `json:"type"`
	Title       string           `json:"title"`
	Message     string           `json:"message"`
	Read        bool             `json:"read"`
	CreatedAt   time.Time        `json:"createdAt"`
	PostID      string           `json:"postId,omitempty"`
	RequestID   string           `json:"requestId,omitempty"`
}

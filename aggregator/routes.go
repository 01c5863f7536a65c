package aggregator

import (
	"strings"

	"connectrix/domain"
)

// Destination names where a notification click should land. The set is
// closed: unknown notification types route to DestDismiss so the click
// still clears the badge without navigating anywhere.
type Destination string

const (
	DestMentorshipModal Destination = "mentorship_response_modal"
	DestConversation    Destination = "conversation"
	DestProfile         Destination = "profile"
	DestBrowseMentors   Destination = "browse_mentors"
	DestForumPost       Destination = "forum_post"
	DestForum           Destination = "forum"
	DestEvents          Destination = "events"
	DestDismiss         Destination = "dismiss"
)

// Route is a resolved navigation target. TargetID carries the entity to
// open at the destination (sender id, post id, request id) and is empty
// for destinations that take no argument.
type Route struct {
	Destination Destination `json:"destination"`
	TargetID    string      `json:"targetId,omitempty"`
}

// RouteFor maps a notification to its click target. Legacy type aliases
// still produced by older writers (profile_view, friend_request, the
// forum-/post_ families) are folded into their canonical destinations.
func RouteFor(n domain.Notification) Route {
	switch n.Type {
	case domain.TypeMentorshipRequest:
		return Route{Destination: DestMentorshipModal, TargetID: n.RequestID}
	case domain.TypeMessage:
		return Route{Destination: DestConversation, TargetID: n.SenderID}
	case domain.TypeMentorshipAccepted:
		return Route{Destination: DestProfile, TargetID: n.SenderID}
	case domain.TypeMentorshipDeclined:
		return Route{Destination: DestBrowseMentors}
	case domain.TypeReaction, domain.TypeComment, domain.TypeForumPost, domain.TypeGeneral:
		return forumRoute(n)
	case domain.TypeProfileVisit:
		return Route{Destination: DestProfile, TargetID: n.SenderID}
	case domain.TypeConnectionRequest:
		return Route{Destination: DestProfile, TargetID: n.SenderID}
	}

	raw := string(n.Type)
	switch {
	case raw == "like":
		return forumRoute(n)
	case strings.HasPrefix(raw, "forum-"), strings.HasPrefix(raw, "post_"):
		return forumRoute(n)
	case strings.HasPrefix(raw, "event"):
		return Route{Destination: DestEvents}
	case raw == "profile_view":
		return Route{Destination: DestProfile, TargetID: n.SenderID}
	case raw == "connection", raw == "friend_request":
		return Route{Destination: DestProfile, TargetID: n.SenderID}
	}
	return Route{Destination: DestDismiss}
}

func forumRoute(n domain.Notification) Route {
	if n.PostID == "" {
		return Route{Destination: DestForum}
	}
	return Route{Destination: DestForumPost, TargetID: n.PostID}
}

package aggregator

import (
	"testing"

	"connectrix/domain"

	"github.com/stretchr/testify/require"
)

func TestRouteFor(t *testing.T) {
	tests := []struct {
		name         string
		notification domain.Notification
		want         Route
	}{
		{
			name:         "mentorship request opens the response modal",
			notification: domain.Notification{Type: domain.TypeMentorshipRequest, RequestID: "req-1"},
			want:         Route{Destination: DestMentorshipModal, TargetID: "req-1"},
		},
		{
			name:         "message opens the conversation with the sender",
			notification: domain.Notification{Type: domain.TypeMessage, SenderID: "bob"},
			want:         Route{Destination: DestConversation, TargetID: "bob"},
		},
		{
			name:         "accepted mentorship opens the mentor profile",
			notification: domain.Notification{Type: domain.TypeMentorshipAccepted, SenderID: "bob"},
			want:         Route{Destination: DestProfile, TargetID: "bob"},
		},
		{
			name:         "declined mentorship points back at mentor browsing",
			notification: domain.Notification{Type: domain.TypeMentorshipDeclined, SenderID: "bob"},
			want:         Route{Destination: DestBrowseMentors},
		},
		{
			name:         "comment opens its forum post",
			notification: domain.Notification{Type: domain.TypeComment, PostID: "post-7"},
			want:         Route{Destination: DestForumPost, TargetID: "post-7"},
		},
		{
			name:         "reaction without a post id falls back to the forum",
			notification: domain.Notification{Type: domain.TypeReaction},
			want:         Route{Destination: DestForum},
		},
		{
			name:         "legacy like alias routes like a reaction",
			notification: domain.Notification{Type: "like", PostID: "post-7"},
			want:         Route{Destination: DestForumPost, TargetID: "post-7"},
		},
		{
			name:         "legacy post_ prefix routes to the forum",
			notification: domain.Notification{Type: "post_mention", PostID: "post-9"},
			want:         Route{Destination: DestForumPost, TargetID: "post-9"},
		},
		{
			name:         "event family routes to the events page",
			notification: domain.Notification{Type: "event_reminder"},
			want:         Route{Destination: DestEvents},
		},
		{
			name:         "profile visit opens the visitor profile",
			notification: domain.Notification{Type: domain.TypeProfileVisit, SenderID: "carol"},
			want:         Route{Destination: DestProfile, TargetID: "carol"},
		},
		{
			name:         "legacy friend_request opens the sender profile",
			notification: domain.Notification{Type: "friend_request", SenderID: "carol"},
			want:         Route{Destination: DestProfile, TargetID: "carol"},
		},
		{
			name:         "unknown type only dismisses",
			notification: domain.Notification{Type: "something_new"},
			want:         Route{Destination: DestDismiss},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, RouteFor(tt.notification))
		})
	}
}

package repositories

import (
	"fmt"
	"log/slog"
	"testing"
	"time"

	"connectrix/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newNotification(recipientID string, kind domain.NotificationType, at time.Time) domain.Notification {
	return domain.Notification{
		ID:          uuid.New(),
		RecipientID: recipientID,
		SenderID:    "sender-1",
		Type:        kind,
		Title:       "title",
		Message:     "body",
		CreatedAt:   at,
	}
}

func TestNotificationRepository_ListForRecipient_NewestFirstWindowed(t *testing.T) {
	req := require.New(t)
	repo := NewNotificationRepository(openTestDB(t), slog.Default())
	now := time.Now().UTC()

	for i := 0; i < 5; i++ {
		n := newNotification("alice", domain.TypeGeneral, now.Add(time.Duration(i)*time.Second))
		n.Title = fmt.Sprintf("notif %d", i)
		req.NoError(repo.Store(n))
	}
	req.NoError(repo.Store(newNotification("bob", domain.TypeGeneral, now)))

	list, err := repo.ListForRecipient("alice", 3)
	req.NoError(err)
	req.Len(list, 3)
	req.Equal("notif 4", list[0].Title)
	req.Equal("notif 2", list[2].Title)

	all, err := repo.ListForRecipient("alice", 0)
	req.NoError(err)
	req.Len(all, 5)
}

func TestNotificationRepository_MarkRead(t *testing.T) {
	req := require.New(t)
	repo := NewNotificationRepository(openTestDB(t), slog.Default())
	now := time.Now().UTC()

	n := newNotification("alice", domain.TypeMentorshipRequest, now)
	req.NoError(repo.Store(n))

	req.NoError(repo.MarkRead("alice", n.ID))

	list, err := repo.ListForRecipient("alice", 0)
	req.NoError(err)
	req.Len(list, 1)
	req.True(list[0].Read)

	// Unknown ids and repeat flips are harmless.
	req.NoError(repo.MarkRead("alice", uuid.New()))
	req.NoError(repo.MarkRead("alice", n.ID))
}

func TestUnreadCount_ExcludesMessageType(t *testing.T) {
	req := require.New(t)
	now := time.Now().UTC()

	unreadRequest := newNotification("alice", domain.TypeMentorshipRequest, now)
	unreadMessage := newNotification("alice", domain.TypeMessage, now)
	readComment := newNotification("alice", domain.TypeComment, now)
	readComment.Read = true

	// Message-type notifications feed the message badge, never this one.
	count := UnreadCount([]domain.Notification{unreadRequest, unreadMessage, readComment})
	req.Equal(1, count)
}

package aggregator

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"connectrix/domain"
	"connectrix/repositories"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	agg           *Aggregator
	chats         repositories.IChatRepository
	notifications repositories.INotificationRepository
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	chats := repositories.NewChatRepository(db, slog.Default())
	notifications := repositories.NewNotificationRepository(db, slog.Default())
	agg := New(slog.Default(), db, "alice", 50, chats, notifications)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = agg.Run(ctx) }()
	// Run registers its store subscriptions asynchronously; writes that
	// land before registration never reach the change feed, so give it a
	// moment before the test starts writing.
	time.Sleep(250 * time.Millisecond)

	return fixture{agg: agg, chats: chats, notifications: notifications}
}

func storeNotification(t *testing.T, f fixture, kind domain.NotificationType, read bool) domain.Notification {
	t.Helper()
	n := domain.Notification{
		ID:          uuid.New(),
		RecipientID: "alice",
		SenderID:    "bob",
		Type:        kind,
		Title:       "title",
		Read:        read,
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, f.notifications.Store(n))
	return n
}

func TestAggregator_BadgeExcludesMessageType(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	storeNotification(t, f, domain.TypeMentorshipRequest, false)
	storeNotification(t, f, domain.TypeComment, false)
	storeNotification(t, f, domain.TypeMessage, false)
	storeNotification(t, f, domain.TypeGeneral, true)

	// The change feed drives the refresh; no manual poke needed.
	req.Eventually(func() bool {
		return f.agg.UnreadCount() == 2
	}, 2*time.Second, 20*time.Millisecond)

	// The count can settle before a callback covering the last writes has
	// run, so the window length needs its own wait.
	req.Eventually(func() bool {
		return len(f.agg.Notifications()) == 4
	}, 2*time.Second, 20*time.Millisecond)
}

func TestAggregator_BadgeDropsOnMarkRead(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	n := storeNotification(t, f, domain.TypeMentorshipAccepted, false)
	req.Eventually(func() bool {
		return f.agg.UnreadCount() == 1
	}, 2*time.Second, 20*time.Millisecond)

	req.NoError(f.notifications.MarkRead("alice", n.ID))
	req.Eventually(func() bool {
		return f.agg.UnreadCount() == 0
	}, 2*time.Second, 20*time.Millisecond)
}

func TestAggregator_MessageBadgeFollowsConversationReadState(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	now := time.Now().UTC()

	conv, _, err := f.chats.GetOrCreateConversation("alice", "bob", now)
	req.NoError(err)

	// Bob sends: alice has one unread conversation.
	req.NoError(f.chats.AppendMessage(domain.Message{
		ID:             uuid.New(),
		ConversationID: conv.ID,
		SenderID:       "bob",
		ReceiverID:     "alice",
		Body:           "hello",
		Kind:           domain.KindText,
		SentAt:         now.Add(time.Second),
	}))
	req.Eventually(func() bool {
		return f.agg.UnreadMessageCount() == 1
	}, 2*time.Second, 20*time.Millisecond)

	// Alice reads: the badge clears.
	req.NoError(f.chats.MarkMessagesRead(conv.ID, "alice", nil))
	req.Eventually(func() bool {
		return f.agg.UnreadMessageCount() == 0
	}, 2*time.Second, 20*time.Millisecond)

	// Alice's own sends never count against her.
	req.NoError(f.chats.AppendMessage(domain.Message{
		ID:             uuid.New(),
		ConversationID: conv.ID,
		SenderID:       "alice",
		ReceiverID:     "bob",
		Body:           "reply",
		Kind:           domain.KindText,
		SentAt:         now.Add(2 * time.Second),
	}))
	time.Sleep(100 * time.Millisecond)
	req.Equal(0, f.agg.UnreadMessageCount())
}

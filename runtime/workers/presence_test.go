package workers

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"connectrix/domain"
	"connectrix/domain/event"
	"connectrix/repositories"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func newPresenceFixture(t *testing.T) (PresenceSink, repositories.IUserRepository, domain.User) {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	users := repositories.NewUserRepository(db)
	user, _, err := users.Upsert("alice@example.edu", "Alice", domain.RoleStudent)
	require.NoError(t, err)

	return NewPresenceSink(users, slog.Default()), users, user
}

func TestPresenceSink_OnlineOfflineCycle(t *testing.T) {
	req := require.New(t)
	sink, users, user := newPresenceFixture(t)
	now := time.Now().UTC()
	ctx := context.Background()

	req.NoError(sink.Consume(ctx, event.SessionOpened{
		UserID: user.ID, ConnectionID: "conn-1", At: now,
	}))
	fetched, err := users.Get(user.ID)
	req.NoError(err)
	req.True(fetched.Online)
	req.Equal(now, fetched.LastSeen)

	// Closing a non-final session keeps the user online.
	req.NoError(sink.Consume(ctx, event.SessionClosed{
		UserID: user.ID, ConnectionID: "conn-1", LastOfUser: false, At: now.Add(time.Second),
	}))
	fetched, err = users.Get(user.ID)
	req.NoError(err)
	req.True(fetched.Online)

	req.NoError(sink.Consume(ctx, event.SessionClosed{
		UserID: user.ID, ConnectionID: "conn-2", LastOfUser: true, At: now.Add(time.Minute),
	}))
	fetched, err = users.Get(user.ID)
	req.NoError(err)
	req.False(fetched.Online)
	req.Equal(now.Add(time.Minute), fetched.LastSeen)
}

func TestPresenceSink_IgnoresOtherEventsAndMissingUsers(t *testing.T) {
	req := require.New(t)
	sink, _, _ := newPresenceFixture(t)
	ctx := context.Background()

	// Non-session events pass through untouched.
	req.NoError(sink.Consume(ctx, event.MessageReceived{ReceiverID: "bob"}))

	// A missing user document is logged, not an error and not auto-created.
	req.NoError(sink.Consume(ctx, event.SessionOpened{
		UserID: "ghost", ConnectionID: "conn-9", At: time.Now().UTC(),
	}))
}

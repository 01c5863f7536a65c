// Package aggregator is the client-side read model: it derives badge
// counts and dropdown content from live queries over the document store,
// independently of the socket relay. The store change feed is its only
// input, so an offline stretch costs nothing: the next callback rebuilds
// the same state the socket hints point at.
package aggregator

import (
	"context"
	"log/slog"
	"sync"

	"connectrix/domain"
	"connectrix/repositories"

	"github.com/dgraph-io/badger/v4"
	bpb "github.com/dgraph-io/badger/v4/pb"
)

// Aggregator re-evaluates two independent live queries on every matching
// store change:
//
//	Query A: notifications addressed to self, newest first, fixed window.
//	Query B: conversations self participates in.
//
// The derived counts deliberately differ in grain: the generic badge
// counts unread non-message notifications, while the message badge counts
// conversations whose summary was sent by the peer and not yet read.
type Aggregator struct {
	log    *slog.Logger
	db     *badger.DB
	selfID string
	window int

	chats         repositories.IChatRepository
	notifications repositories.INotificationRepository

	mu                 sync.RWMutex
	latest             []domain.Notification
	unreadCount        int
	unreadMessageCount int
}

func New(log *slog.Logger, db *badger.DB, selfID string, window int,
	chats repositories.IChatRepository, notifications repositories.INotificationRepository) *Aggregator {
	return &Aggregator{
		log:           log,
		db:            db,
		selfID:        selfID,
		window:        window,
		chats:         chats,
		notifications: notifications,
	}
}

// Run blocks on the two store subscriptions until the context is
// canceled. It satisfies the worker contract so it can live under the
// supervisor in-process, mirroring how the SPA keeps its subscriptions
// alive for the lifetime of the page.
func (a *Aggregator) Run(ctx context.Context) error {
	if err := a.Refresh(); err != nil {
		return err
	}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		err := a.db.Subscribe(ctx, func(_ *badger.KVList) error {
			return a.refreshNotifications()
		}, []bpb.Match{{Prefix: repositories.NotificationPrefix(a.selfID)}})
		if err != nil && ctx.Err() == nil {
			a.log.Error("Notification subscription ended", "error", err)
		}
	}()

	go func() {
		defer wg.Done()
		err := a.db.Subscribe(ctx, func(_ *badger.KVList) error {
			return a.refreshConversations()
		}, []bpb.Match{{Prefix: repositories.ConversationPrefix()}})
		if err != nil && ctx.Err() == nil {
			a.log.Error("Conversation subscription ended", "error", err)
		}
	}()

	wg.Wait()
	return nil
}

// Refresh re-runs both queries immediately, used at startup and by
// clients that want to reconcile without waiting for a change.
func (a *Aggregator) Refresh() error {
	if err := a.refreshNotifications(); err != nil {
		return err
	}
	return a.refreshConversations()
}

func (a *Aggregator) refreshNotifications() error {
	notifications, err := a.notifications.ListForRecipient(a.selfID, a.window)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.latest = notifications
	a.unreadCount = repositories.UnreadCount(notifications)
	a.mu.Unlock()
	return nil
}

func (a *Aggregator) refreshConversations() error {
	conversations, err := a.chats.ListConversations(a.selfID)
	if err != nil {
		return err
	}

	count := 0
	for _, conv := range conversations {
		if conv.LastMessage == nil || conv.LastMessage.SenderID == a.selfID {
			continue
		}
		if !conv.ReadBy[a.selfID] {
			count++
		}
	}

	a.mu.Lock()
	a.unreadMessageCount = count
	a.mu.Unlock()
	return nil
}

// UnreadCount is the generic badge: unread notifications excluding the
// message type, which drives the separate message badge.
func (a *Aggregator) UnreadCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.unreadCount
}

func (a *Aggregator) UnreadMessageCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.unreadMessageCount
}

// Notifications returns the current dropdown window, newest first.
func (a *Aggregator) Notifications() []domain.Notification {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]domain.Notification, len(a.latest))
	copy(out, a.latest)
	return out
}

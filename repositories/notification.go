//go:generate go run go.uber.org/mock/mockgen -source=notification.go -destination=../mocks/mock_notification_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"log/slog"

	"connectrix/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type INotificationRepository interface {
	Store(notification domain.Notification) error
	ListForRecipient(recipientID string, window int) ([]domain.Notification, error)
	MarkRead(recipientID string, id uuid.UUID) error
}

type NotificationRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewNotificationRepository(db *badger.DB, log *slog.Logger) NotificationRepository {
	return NotificationRepository{db: db, log: log}
}

func (r NotificationRepository) Store(notification domain.Notification) error {
	bytes, err := json.Marshal(notification)
	if err != nil {
		return err
	}
	key := notificationKey(notification.RecipientID, notification.CreatedAt, notification.ID)
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, bytes)
	})
}

// ListForRecipient returns the newest notifications first, capped at the
// configured window. A window <= 0 returns everything.
func (r NotificationRepository) ListForRecipient(recipientID string, window int) ([]domain.Notification, error) {
	var notifications []domain.Notification
	err := r.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		prefix := NotificationPrefix(recipientID)
		seekKey := append(append([]byte{}, prefix...), []byte("9999999999999999999")...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if window > 0 && len(notifications) == window {
				break
			}
			err := it.Item().Value(func(val []byte) error {
				var n domain.Notification
				if err := json.Unmarshal(val, &n); err != nil {
					return err
				}
				notifications = append(notifications, n)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return notifications, err
}

// MarkRead flips a single notification to read. Unknown ids are ignored:
// the flip is one-way and repeat calls are harmless.
func (r NotificationRepository) MarkRead(recipientID string, id uuid.UUID) error {
	return r.db.Update(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := NotificationPrefix(recipientID)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			key := item.KeyCopy(nil)

			var n domain.Notification
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &n)
			})
			if err != nil {
				return err
			}
			if n.ID != id || n.Read {
				continue
			}

			n.Read = true
			bytes, err := json.Marshal(n)
			if err != nil {
				return err
			}
			return txn.Set(key, bytes)
		}
		return nil
	})
}

// UnreadCount derives the generic badge count: unread notifications whose
// type is not "message" (message-type notifications drive the separate
// message badge instead).
func UnreadCount(notifications []domain.Notification) int {
	return lo.CountBy(notifications, func(n domain.Notification) bool {
		return !n.Read && n.Type != domain.TypeMessage
	})
}

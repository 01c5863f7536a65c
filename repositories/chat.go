//go:generate go run go.uber.org/mock/mockgen -source=chat.go -destination=../mocks/mock_chat_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"connectrix/domain"
	"connectrix/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type IChatRepository interface {
	GetOrCreateConversation(a, b string, now time.Time) (domain.Conversation, bool, error)
	GetConversation(id string) (domain.Conversation, error)
	ListConversations(userID string) ([]domain.Conversation, error)
	AppendMessage(message domain.Message) error
	GetMessages(conversationID string, limit int) ([]domain.Message, error)
	MarkMessagesRead(conversationID, readerID string, ids []uuid.UUID) error
}

type ChatRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewChatRepository(db *badger.DB, log *slog.Logger) ChatRepository {
	return ChatRepository{db: db, log: log}
}

// GetOrCreateConversation resolves the conversation for an unordered
// participant pair, creating it when absent. The pair index, not a
// client-supplied id, is the source of truth for lookups.
func (r ChatRepository) GetOrCreateConversation(a, b string, now time.Time) (domain.Conversation, bool, error) {
	var conv domain.Conversation
	var created bool

	err := r.db.Update(func(txn *badger.Txn) error {
		pair := convPairKey(domain.PairKey(a, b))

		item, err := txn.Get(pair)
		if err == nil {
			var convID []byte
			if convID, err = item.ValueCopy(nil); err != nil {
				return err
			}
			conv, err = getConversation(txn, string(convID))
			return err
		}
		if err != badger.ErrKeyNotFound {
			return err
		}

		conv = domain.Conversation{
			ID:             uuid.NewString(),
			ParticipantIDs: []string{a, b},
			ReadBy:         map[string]bool{a: true, b: true},
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		created = true

		if err = putJSON(txn, convKey(conv.ID), conv); err != nil {
			return err
		}
		return txn.Set(pair, []byte(conv.ID))
	})

	return conv, created, err
}

func (r ChatRepository) GetConversation(id string) (domain.Conversation, error) {
	var conv domain.Conversation
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		conv, err = getConversation(txn, id)
		return err
	})
	return conv, err
}

// ListConversations returns the conversations a user participates in,
// most recently updated first (the list-view ordering).
func (r ChatRepository) ListConversations(userID string) ([]domain.Conversation, error) {
	var convs []domain.Conversation
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := ConversationPrefix()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var conv domain.Conversation
				if err := json.Unmarshal(val, &conv); err != nil {
					return err
				}
				if conv.HasParticipant(userID) {
					convs = append(convs, conv)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(convs, func(i, j int) bool {
		return convs[i].UpdatedAt.After(convs[j].UpdatedAt)
	})
	return convs, nil
}

// AppendMessage persists the message and rewrites the conversation summary
// in a single transaction, so the summary always names the relay-accepted
// latest message even when two sends race.
func (r ChatRepository) AppendMessage(message domain.Message) error {
	return r.db.Update(func(txn *badger.Txn) error {
		conv, err := getConversation(txn, message.ConversationID)
		if err != nil {
			return err
		}

		if err = putJSON(txn, messageKey(message.ConversationID, message.SentAt, message.ID), message); err != nil {
			return err
		}

		// A racing older send committing after a newer one must not win
		// the summary.
		if conv.LastMessage == nil || !message.SentAt.Before(conv.UpdatedAt) {
			conv.LastMessage = &domain.MessageSummary{
				Text:      message.Body,
				SenderID:  message.SenderID,
				Timestamp: message.SentAt,
				Type:      message.Kind,
			}
			conv.UpdatedAt = message.SentAt
		}
		if conv.ReadBy == nil {
			conv.ReadBy = make(map[string]bool)
		}
		conv.ReadBy[message.SenderID] = true
		conv.ReadBy[message.ReceiverID] = false

		return putJSON(txn, convKey(conv.ID), conv)
	})
}

// GetMessages returns up to limit of the most recent messages for a
// conversation, in chronological order. A limit <= 0 returns everything.
func (r ChatRepository) GetMessages(conversationID string, limit int) ([]domain.Message, error) {
	var messages []domain.Message
	err := r.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		prefix := messagePrefix(conversationID)
		// Seek past the newest possible key, then walk backwards.
		seekKey := append(append([]byte{}, prefix...), []byte("9999999999999999999")...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(messages) == limit {
				r.log.Debug(fmt.Sprintf("Message limit of %d reached", limit))
				break
			}
			err := it.Item().Value(func(val []byte) error {
				var msg domain.Message
				if err := json.Unmarshal(val, &msg); err != nil {
					return err
				}
				messages = append(messages, msg)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return lo.Reverse(messages), nil
}

// MarkMessagesRead flips the read flag of the targeted messages addressed
// to the reader and marks the conversation-level flag. Flips are one-way
// and the whole operation is idempotent.
func (r ChatRepository) MarkMessagesRead(conversationID, readerID string, ids []uuid.UUID) error {
	wanted := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	return r.db.Update(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := messagePrefix(conversationID)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			key := item.KeyCopy(nil)

			var msg domain.Message
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &msg)
			})
			if err != nil {
				return err
			}

			if _, ok := wanted[msg.ID]; !ok || msg.Read || msg.ReceiverID != readerID {
				continue
			}
			msg.Read = true
			if err = putJSON(txn, key, msg); err != nil {
				return err
			}
		}

		conv, err := getConversation(txn, conversationID)
		if err != nil {
			return err
		}
		if conv.ReadBy == nil {
			conv.ReadBy = make(map[string]bool)
		}
		conv.ReadBy[readerID] = true
		return putJSON(txn, convKey(conv.ID), conv)
	})
}

func getConversation(txn *badger.Txn, id string) (domain.Conversation, error) {
	var conv domain.Conversation
	item, err := txn.Get(convKey(id))
	if err == badger.ErrKeyNotFound {
		return conv, errors.ErrConversationNotFound
	}
	if err != nil {
		return conv, err
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &conv)
	})
	return conv, err
}

func putJSON(txn *badger.Txn, key []byte, value any) error {
	bytes, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return txn.Set(key, bytes)
}

package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"connectrix/contract"
	"connectrix/domain"
	"connectrix/domain/event"
	"connectrix/errors"
	"connectrix/observability"
	"connectrix/repositories"

	"github.com/google/uuid"
)

const notificationPreviewLength = 120

// Static assertion of the relay contract.
var _ contract.IRelay = (*Relay)(nil)

// Relay accepts real-time commands from authenticated sessions, persists
// their effects, and fans resulting events out to room members.
//
// Per send, the state machine is Received -> Validated -> Persisted ->
// Fanned-out -> Acknowledged; a persistence failure surfaces to the sender
// only, while fan-out failures are logged and swallowed since the message
// is already durable. Sender and receiver reconcile on the next full fetch
// or live-query refresh.
type Relay struct {
	log           *slog.Logger
	registry      contract.IRegistry
	chats         repositories.IChatRepository
	notifications repositories.INotificationRepository
	monitor       *observability.Manager
	events        chan event.DomainEvent
}

func NewRelay(log *slog.Logger, registry contract.IRegistry,
	chats repositories.IChatRepository, notifications repositories.INotificationRepository,
	monitor *observability.Manager, bufferSize int) *Relay {
	return &Relay{
		log:           log,
		registry:      registry,
		chats:         chats,
		notifications: notifications,
		monitor:       monitor,
		events:        make(chan event.DomainEvent, bufferSize),
	}
}

// Events exposes the fan-out channel consumed by the EventFanout worker.
func (r *Relay) Events() chan event.DomainEvent {
	return r.events
}

// OpenSession binds an authenticated user to a live connection and joins
// the user's own room so targeted events reach every device.
func (r *Relay) OpenSession(connectionID, userID string, sink contract.EventSink) domain.Session {
	session := r.registry.Register(connectionID, userID, sink)
	r.registry.Join(connectionID, domain.UserRoom(userID))

	r.emit(event.SessionOpened{
		UserID:       userID,
		ConnectionID: connectionID,
		At:           session.JoinedAt,
	})
	return session
}

// CloseSession is idempotent; it fires the presence-offline path only when
// the user's last session is gone.
func (r *Relay) CloseSession(connectionID string) {
	userID, lastOfUser := r.registry.Unregister(connectionID)
	if userID == "" {
		return
	}
	r.emit(event.SessionClosed{
		UserID:       userID,
		ConnectionID: connectionID,
		LastOfUser:   lastOfUser,
		At:           time.Now().UTC(),
	})
}

// JoinChat is a silent join: no response event, idempotent membership.
func (r *Relay) JoinChat(session domain.Session, conversationID string) {
	r.registry.Join(session.ConnectionID, domain.ChatRoom(conversationID))
}

func (r *Relay) SendMessage(ctx context.Context, session domain.Session, cmd domain.SendMessageCommand) (domain.Message, error) {
	if strings.TrimSpace(cmd.Body) == "" {
		r.monitor.MessageRejected()
		return domain.Message{}, errors.ErrEmptyMessage
	}
	// The session's identity is authoritative; a payload claiming another
	// sender is a forgery attempt, not a fixable input.
	if cmd.SenderID != session.UserID {
		r.monitor.MessageRejected()
		return domain.Message{}, errors.ErrSenderMismatch
	}

	now := time.Now().UTC()
	conv, created, err := r.chats.GetOrCreateConversation(cmd.SenderID, cmd.ReceiverID, now)
	if err != nil {
		r.monitor.MessageRejected()
		return domain.Message{}, fmt.Errorf("conversation lookup failed: %w", err)
	}
	if created {
		r.log.Info("Conversation created", "conversation_id", conv.ID)
	}

	message := domain.Message{
		ID:             uuid.New(),
		ConversationID: conv.ID,
		SenderID:       cmd.SenderID,
		ReceiverID:     cmd.ReceiverID,
		Body:           cmd.Body,
		Kind:           cmd.Kind,
		SentAt:         now,
		Read:           false,
	}
	if message.Kind == "" {
		message.Kind = domain.KindText
	}

	if err = r.chats.AppendMessage(message); err != nil {
		r.monitor.MessageRejected()
		return domain.Message{}, fmt.Errorf("message persist failed: %w", err)
	}

	// From here the message is durable: everything below is best-effort.
	if err = r.notifications.Store(messageNotification(message, now)); err != nil {
		r.log.Error("Message notification write failed", "conversation_id", conv.ID, "error", err)
	}

	r.emit(event.NewMessage{
		Message:      message,
		Tag:          cmd.Tag,
		SenderConnID: session.ConnectionID,
	})
	r.emit(event.MessageReceived{
		ReceiverID:     cmd.ReceiverID,
		ConversationID: conv.ID,
		SenderID:       cmd.SenderID,
	})

	r.monitor.MessageRelayed()
	return message, nil
}

func (r *Relay) MarkAsRead(ctx context.Context, session domain.Session, cmd domain.MarkAsReadCommand) error {
	conv, err := r.chats.GetConversation(cmd.ConversationID)
	if err != nil {
		return err
	}
	if !conv.HasParticipant(session.UserID) {
		return errors.ErrNotParticipant
	}

	if err = r.chats.MarkMessagesRead(cmd.ConversationID, session.UserID, cmd.MessageIDs); err != nil {
		return fmt.Errorf("read flip failed: %w", err)
	}
	r.monitor.ReadFlip()

	r.emit(event.MessagesRead{
		ConversationID: cmd.ConversationID,
		ReaderID:       session.UserID,
		MessageIDs:     cmd.MessageIDs,
		ReaderConnID:   session.ConnectionID,
	})
	return nil
}

// Typing is pure ephemeral fan-out: no persistence, no error surface.
func (r *Relay) Typing(session domain.Session, cmd domain.TypingCommand) {
	r.emit(event.UserTyping{
		ConversationID: cmd.ConversationID,
		UserID:         session.UserID,
		IsTyping:       cmd.IsTyping,
		SenderConnID:   session.ConnectionID,
	})
}

func (r *Relay) emit(evt event.DomainEvent) {
	select {
	case r.events <- evt:
	default:
		r.monitor.EventDropped()
		r.log.Warn(fmt.Sprintf("Event channel full, dropping event for room %s", evt.RoomID()))
	}
}

func messageNotification(message domain.Message, now time.Time) domain.Notification {
	// Truncate on rune boundaries so a multi-byte character is never split.
	preview := message.Body
	if runes := []rune(preview); len(runes) > notificationPreviewLength {
		preview = string(runes[:notificationPreviewLength])
	}
	return domain.Notification{
		ID:          uuid.New(),
		RecipientID: message.ReceiverID,
		SenderID:    message.SenderID,
		Type:        domain.TypeMessage,
		Title:       "New message",
		Message:     preview,
		CreatedAt:   now,
	}
}

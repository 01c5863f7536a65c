//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"connectrix/domain"
	"connectrix/domain/event"
)

// EventSink is one consumer of fanned-out events, usually the buffered
// channel behind a live transport connection.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// Worker doesn't protect itself.
// Can be silly, focused.
type Worker interface {
	Run(ctx context.Context) error
}

type WorkerName string

// GetWorkerName uses reflection to retrieve the type name of the worker,
// for logging and supervision purposes.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Stop()
}

// IRegistry maps authenticated users to live connections and groups
// connections into named rooms. Single process, mutex-guarded; scaling to
// several relay processes would swap the implementation, not the contract.
type IRegistry interface {
	Register(connectionID, userID string, sink EventSink) domain.Session
	Unregister(connectionID string) (userID string, lastOfUser bool)
	Lookup(userID string) (connectionID string, ok bool)
	Join(connectionID string, roomID domain.RoomID)
	Leave(connectionID string, roomID domain.RoomID)
	SinksFor(roomID domain.RoomID, excludeConnectionID string) []EventSink
}

// IRelay accepts, persists, and fans out real-time events for one
// authenticated session.
type IRelay interface {
	OpenSession(connectionID, userID string, sink EventSink) domain.Session
	CloseSession(connectionID string)
	JoinChat(session domain.Session, conversationID string)
	SendMessage(ctx context.Context, session domain.Session, cmd domain.SendMessageCommand) (domain.Message, error)
	MarkAsRead(ctx context.Context, session domain.Session, cmd domain.MarkAsReadCommand) error
	Typing(session domain.Session, cmd domain.TypingCommand)
}

// IChatReader is the query side consumed by the HTTP surface.
type IChatReader interface {
	Conversations(userID string) ([]domain.Conversation, error)
	Messages(conversationID string, limit int) ([]domain.Message, error)
	Conversation(conversationID string) (domain.Conversation, error)
}

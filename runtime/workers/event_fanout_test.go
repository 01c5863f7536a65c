package workers

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"connectrix/domain/event"
	"connectrix/runtime"

	"github.com/stretchr/testify/require"
)

type captureSink struct {
	mu     sync.Mutex
	events []event.DomainEvent
}

func (s *captureSink) Consume(_ context.Context, e event.DomainEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *captureSink) Events() []event.DomainEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]event.DomainEvent, len(s.events))
	copy(out, s.events)
	return out
}

func TestEventFanout_RoomAndPermanentSinks(t *testing.T) {
	req := require.New(t)

	registry := runtime.NewRegistry()
	sender := &captureSink{}
	receiver := &captureSink{}
	permanent := &captureSink{}

	registry.Register("conn-sender", "alice", sender)
	registry.Register("conn-receiver", "bob", receiver)

	evt := event.UserTyping{
		ConversationID: "conv-1",
		UserID:         "alice",
		IsTyping:       true,
		SenderConnID:   "conn-sender",
	}
	registry.Join("conn-sender", evt.RoomID())
	registry.Join("conn-receiver", evt.RoomID())

	events := make(chan event.DomainEvent, 4)
	worker := NewEventFanout(slog.Default(), registry, events, time.Second).
		Add(permanent)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		req.NoError(worker.Run(ctx))
		close(done)
	}()

	events <- evt

	req.Eventually(func() bool {
		return len(receiver.Events()) == 1 && len(permanent.Events()) == 1
	}, time.Second, 10*time.Millisecond)

	// The sender's own connection is excluded from the broadcast, but the
	// permanent sink sees every event.
	req.Empty(sender.Events())
	req.Equal(evt, receiver.Events()[0])
	req.Equal(evt, permanent.Events()[0])

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		req.Fail("Fanout worker did not stop on context cancel")
	}
}

func TestEventFanout_StopsOnClosedChannel(t *testing.T) {
	req := require.New(t)

	events := make(chan event.DomainEvent)
	worker := NewEventFanout(slog.Default(), runtime.NewRegistry(), events, time.Second)

	done := make(chan struct{})
	go func() {
		req.NoError(worker.Run(context.Background()))
		close(done)
	}()

	close(events)
	select {
	case <-done:
	case <-time.After(time.Second):
		req.Fail("Fanout worker did not stop on closed channel")
	}
}

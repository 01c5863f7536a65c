package ws

import (
	"context"
	"log/slog"

	"connectrix/domain/event"
)

// Sink is the per-connection event consumer registered on the fanout. It
// encodes events to wire frames and hands them to the write pump through a
// buffered channel; a full buffer drops the frame rather than blocking the
// fanout, since every fact a frame carries is recoverable from the store.
type Sink struct {
	frames chan []byte
	log    *slog.Logger
}

func NewSink(log *slog.Logger, bufferSize int) *Sink {
	return &Sink{frames: make(chan []byte, bufferSize), log: log}
}

func (s *Sink) Consume(ctx context.Context, e event.DomainEvent) error {
	frame, ok := EncodeEvent(e)
	if !ok {
		return nil
	}
	select {
	case s.frames <- frame:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		s.log.Debug("Connection buffer full, dropping frame")
		return nil
	}
}

// Push enqueues an already-encoded frame, used for direct responses
// (acknowledgements, errors) outside the fanout path.
func (s *Sink) Push(frame []byte) {
	select {
	case s.frames <- frame:
	default:
		s.log.Debug("Connection buffer full, dropping direct frame")
	}
}

func (s *Sink) Frames() <-chan []byte {
	return s.frames
}

package workers

import (
	"context"
	"log/slog"
	"time"

	"connectrix/contract"
	"connectrix/domain/event"
)

// Ensure *EventFanout implements the contract.Worker interface at compile
// time. This acts as a static assertion of our architectural rules.
var _ contract.Worker = (*EventFanout)(nil)

// EventFanout delivers domain events to the live members of the event's
// room, plus a fixed set of permanent sinks (presence tracker, metrics).
//
// Delivery is best-effort and fire-and-forget: no acknowledgement, no
// retry, no ordering guarantee across members. EventFanout is not a
// message broker.
type EventFanout struct {
	log            *slog.Logger
	registry       contract.IRegistry
	events         <-chan event.DomainEvent
	permanentSinks []contract.EventSink
	sinkTimeout    time.Duration
}

func NewEventFanout(log *slog.Logger, registry contract.IRegistry,
	events <-chan event.DomainEvent, sinkTimeout time.Duration) *EventFanout {
	return &EventFanout{
		log:         log,
		registry:    registry,
		events:      events,
		sinkTimeout: sinkTimeout,
	}
}

func (w *EventFanout) Add(sinks ...contract.EventSink) *EventFanout {
	w.permanentSinks = append(w.permanentSinks, sinks...)
	return w
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping event fanout")
			return nil
		case evt, ok := <-w.events:
			if !ok {
				w.log.Debug("Event channel closed")
				return nil
			}
			w.fanout(ctx, evt)
		}
	}
}

// fanout resolves the room's sinks at event time; members joining
// concurrently may or may not be included.
func (w *EventFanout) fanout(ctx context.Context, evt event.DomainEvent) {
	exclude := ""
	if scoped, ok := evt.(event.SenderScoped); ok {
		exclude = scoped.ExcludeConnection()
	}

	sinks := w.registry.SinksFor(evt.RoomID(), exclude)
	sinks = append(sinks, w.permanentSinks...)

	for _, sink := range sinks {
		sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
		if err := sink.Consume(sinkCtx, evt); err != nil {
			// The event is already durable where it matters; a slow or
			// gone consumer only loses its real-time hint.
			w.log.Debug("Sink consume failed", "room", evt.RoomID(), "error", err)
		}
		cancel()
	}
}

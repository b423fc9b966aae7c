package workers

import (
	"context"
	"groupchat/contract"
	"groupchat/domain/event"
	"log/slog"
	"sync"
	"time"
)

// EventFanout broadcasts inserted-message events to the registered subscribers.
//
// It provides best-effort fan-out: a sink slower than sinkTimeout misses the
// event, there are no retries and no durability. Each event is delivered to the
// sinks in parallel and Fanout returns once every delivery ended.
type EventFanout struct {
	log         *slog.Logger
	events      chan event.DomainEvent
	registry    contract.IRegistry
	sinkTimeout time.Duration
}

func NewEventFanout(log *slog.Logger, events chan event.DomainEvent,
	registry contract.IRegistry, sinkTimeout time.Duration) *EventFanout {
	return &EventFanout{log: log, events: events, registry: registry, sinkTimeout: sinkTimeout}
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case evt := <-w.events:
			w.Fanout(ctx, evt)
		case <-ctx.Done():
			w.log.Debug("Context done, stopping event fanout")
			return nil
		}
	}
}

// Fanout One delivery for each interested sink
func (w *EventFanout) Fanout(ctx context.Context, evt event.DomainEvent) {
	sinks := w.registry.GetSinksForGroup(evt.GroupID())
	var wg sync.WaitGroup
	for _, sink := range sinks {
		wg.Add(1)
		go func(sink contract.EventSink) {
			defer wg.Done()
			sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
			defer cancel()
			if err := sink.Consume(sinkCtx, evt); err != nil {
				w.log.Warn("Event not delivered", "group_id", evt.GroupID(), "error", err)
			}
		}(sink)
	}
	wg.Wait()
}

package sink

import (
	"context"
	"groupchat/domain/event"
	"log/slog"
)

// ChannelSink hands events over to the goroutine owning a realtime stream.
type ChannelSink struct {
	Events chan event.DomainEvent
	log    *slog.Logger
}

func NewChannelSink(log *slog.Logger, bufferSize int) *ChannelSink {
	return &ChannelSink{Events: make(chan event.DomainEvent, bufferSize), log: log}
}

// Consume is called by the fanout.
// A full buffer drops the event so a slow stream never blocks the others.
func (s *ChannelSink) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case s.Events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		s.log.Warn("Subscriber buffer full, event dropped", "group_id", e.GroupID())
		return nil
	}
}

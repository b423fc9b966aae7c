// Package realtime forwards the backend insert feed into the client.
package realtime

import (
	"context"
	"groupchat/contract"
	"groupchat/domain/event"
	"groupchat/errors"
	"log/slog"
)

// Bridge owns one subscription to the messages insert feed while it runs.
// There is no reconnection: a dropped stream ends Run.
type Bridge struct {
	log      *slog.Logger
	realtime contract.Realtime
	sink     contract.EventSink
	notify   func(event.MessageInserted)
}

// NewBridge forwards every pushed row to sink, then calls notify when it is not nil.
func NewBridge(log *slog.Logger, realtime contract.Realtime, sink contract.EventSink,
	notify func(event.MessageInserted)) *Bridge {
	return &Bridge{log: log, realtime: realtime, sink: sink, notify: notify}
}

// Run blocks until ctx is done or the stream drops.
// The subscription is always terminated before Run returns.
func (b *Bridge) Run(ctx context.Context) error {
	subscription, err := b.realtime.SubscribeMessages(ctx)
	if err != nil {
		b.log.Error("Unable to subscribe to new messages", "error", err)
		return err
	}
	defer subscription.Unsubscribe()
	b.log.Debug("Subscribed to new messages")

	for {
		select {
		case <-ctx.Done():
			b.log.Debug("Context done, leaving the realtime feed")
			return nil
		case evt, ok := <-subscription.Events():
			if !ok {
				b.log.Warn("Realtime feed closed by the backend")
				return errors.ErrSubscriptionClosed
			}
			if err := b.sink.Consume(ctx, evt); err != nil {
				b.log.Warn("Pushed message not applied", "message_id", evt.Message.ID, "error", err)
				continue
			}
			if b.notify != nil {
				b.notify(evt)
			}
		}
	}
}

package client

import (
	"context"
	"groupchat/codec"
	"groupchat/domain/event"
	"log/slog"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// subscription reads the insert feed on its own goroutine.
type subscription struct {
	log    *slog.Logger
	events chan event.MessageInserted
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func newSubscription(log *slog.Logger, stream grpc.ServerStreamingClient[codec.Row], cancel context.CancelFunc) *subscription {
	s := &subscription{
		log:    log,
		events: make(chan event.MessageInserted),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go s.read(stream)
	return s
}

func (s *subscription) Events() <-chan event.MessageInserted {
	return s.events
}

// Unsubscribe ends the stream and waits for the reader to exit. Safe to call twice.
func (s *subscription) Unsubscribe() {
	s.once.Do(func() {
		s.cancel()
		<-s.done
	})
}

func (s *subscription) read(stream grpc.ServerStreamingClient[codec.Row]) {
	defer close(s.done)
	defer close(s.events)
	ctx := stream.Context()
	for {
		row, err := stream.Recv()
		if err != nil {
			if status.Code(err) != codes.Canceled {
				s.log.Warn("Realtime stream ended", "error", err)
			}
			return
		}
		message, err := codec.RowToMessage(row)
		if err != nil {
			s.log.Warn("Unreadable realtime row skipped", "error", err)
			continue
		}
		select {
		case s.events <- event.MessageInserted{Message: message}:
		case <-ctx.Done():
			return
		}
	}
}

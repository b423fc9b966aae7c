package realtime

import (
	"context"
	"groupchat/domain"
	"groupchat/domain/event"
	"groupchat/errors"
	"groupchat/mocks"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fixture struct {
	realtime     *mocks.MockRealtime
	subscription *mocks.MockSubscription
	sink         *mocks.MockEventSink
	events       chan event.MessageInserted
}

func newFixture(t *testing.T) fixture {
	ctrl := gomock.NewController(t)
	f := fixture{
		realtime:     mocks.NewMockRealtime(ctrl),
		subscription: mocks.NewMockSubscription(ctrl),
		sink:         mocks.NewMockEventSink(ctrl),
		events:       make(chan event.MessageInserted),
	}
	f.subscription.EXPECT().Events().Return((<-chan event.MessageInserted)(f.events)).AnyTimes()
	return f
}

func TestBridge_Forwards_Then_Unsubscribes_On_Cancel(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.realtime.EXPECT().SubscribeMessages(gomock.Any()).Return(f.subscription, nil)
	f.subscription.EXPECT().Unsubscribe().Times(1)

	first := event.MessageInserted{Message: domain.Message{ID: 1, GroupID: 1}}
	second := event.MessageInserted{Message: domain.Message{ID: 2, GroupID: 2}}
	f.sink.EXPECT().Consume(gomock.Any(), first).Return(nil)
	f.sink.EXPECT().Consume(gomock.Any(), second).Return(nil)

	notified := make(chan event.MessageInserted, 2)
	bridge := NewBridge(logs.GetLoggerFromLevel(slog.LevelDebug), f.realtime, f.sink,
		func(e event.MessageInserted) { notified <- e })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- bridge.Run(ctx) }()

	f.events <- first
	f.events <- second
	req.Equal(first, <-notified)
	req.Equal(second, <-notified)

	cancel()
	select {
	case err := <-done:
		req.NoError(err)
	case <-time.After(time.Second):
		req.Fail("Bridge did not stop")
	}
}

func TestBridge_Dropped_Stream_Ends_Run(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.realtime.EXPECT().SubscribeMessages(gomock.Any()).Return(f.subscription, nil)
	f.subscription.EXPECT().Unsubscribe().Times(1)

	bridge := NewBridge(logs.GetLoggerFromLevel(slog.LevelDebug), f.realtime, f.sink, nil)
	close(f.events)

	req.ErrorIs(bridge.Run(context.Background()), errors.ErrSubscriptionClosed)
}

func TestBridge_Subscribe_Failure(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.realtime.EXPECT().SubscribeMessages(gomock.Any()).Return(nil, errors.ErrNotAuthenticated)
	f.subscription.EXPECT().Unsubscribe().Times(0)

	bridge := NewBridge(logs.GetLoggerFromLevel(slog.LevelDebug), f.realtime, f.sink, nil)
	req.ErrorIs(bridge.Run(context.Background()), errors.ErrNotAuthenticated)
}

func TestBridge_Sink_Failure_Skips_Notify(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.realtime.EXPECT().SubscribeMessages(gomock.Any()).Return(f.subscription, nil)
	f.subscription.EXPECT().Unsubscribe().Times(1)
	f.sink.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(context.DeadlineExceeded)

	notified := false
	bridge := NewBridge(logs.GetLoggerFromLevel(slog.LevelDebug), f.realtime, f.sink,
		func(event.MessageInserted) { notified = true })

	done := make(chan error)
	go func() { done <- bridge.Run(context.Background()) }()
	f.events <- event.MessageInserted{Message: domain.Message{ID: 1}}
	close(f.events)

	req.ErrorIs(<-done, errors.ErrSubscriptionClosed)
	req.False(notified)
}

package sink

import (
	"context"
	"groupchat/domain"
	"groupchat/domain/event"
	"log/slog"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func TestChannelSink_Consume(t *testing.T) {
	req := require.New(t)
	s := NewChannelSink(logs.GetLoggerFromLevel(slog.LevelDebug), 1)
	evt := event.MessageInserted{Message: domain.Message{ID: 1, GroupID: 2}}

	req.NoError(s.Consume(context.Background(), evt))
	req.Equal(evt, <-s.Events)
}

func TestChannelSink_Drops_When_Full(t *testing.T) {
	req := require.New(t)
	s := NewChannelSink(logs.GetLoggerFromLevel(slog.LevelDebug), 1)
	first := event.MessageInserted{Message: domain.Message{ID: 1}}
	second := event.MessageInserted{Message: domain.Message{ID: 2}}

	req.NoError(s.Consume(context.Background(), first))
	// Given a full buffer, the second event is dropped without error
	req.NoError(s.Consume(context.Background(), second))
	req.Len(s.Events, 1)
	req.Equal(first, <-s.Events)
}

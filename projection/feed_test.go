package projection

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
	"go.uber.org/mock/gomock"
)

var at = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func message(id domain.MessageID, group domain.GroupID, offset time.Duration) domain.Message {
	return domain.Message{ID: id, GroupID: group, UserID: "u1", Content: "hello", CreatedAt: at.Add(offset)}
}

func newFeed(t *testing.T) (*Feed, *mocks.MockMessageStore) {
	store := mocks.NewMockMessageStore(gomock.NewController(t))
	return NewFeed(logs.GetLoggerFromLevel(slog.LevelDebug), store), store
}

func TestBelongsTo(t *testing.T) {
	req := require.New(t)
	group := domain.GroupID(1)

	req.True(BelongsTo(&group)(message(1, 1, 0)))
	req.False(BelongsTo(&group)(message(1, 2, 0)))
	req.False(BelongsTo(nil)(message(1, 1, 0)))
}

func TestFeed_LoadHistory_Ascending(t *testing.T) {
	req := require.New(t)
	feed, store := newFeed(t)
	store.EXPECT().ListMessages(gomock.Any(), domain.GroupID(1)).Return([]domain.Message{
		message(2, 1, time.Minute), message(1, 1, 0), message(3, 1, 2*time.Minute),
	}, nil)

	req.NoError(feed.LoadHistory(context.Background(), 1))

	messages := feed.Messages()
	req.Len(messages, 3)
	for i := 1; i < len(messages); i++ {
		req.False(messages[i].CreatedAt.Before(messages[i-1].CreatedAt))
	}
	selected, ok := feed.Selected()
	req.True(ok)
	req.Equal(domain.GroupID(1), selected)
}

func TestFeed_Switching_Group_Discards_Previous_Sequence_First(t *testing.T) {
	req := require.New(t)
	feed, store := newFeed(t)
	store.EXPECT().ListMessages(gomock.Any(), domain.GroupID(1)).Return([]domain.Message{message(1, 1, 0)}, nil)
	req.NoError(feed.LoadHistory(context.Background(), 1))
	req.Len(feed.Messages(), 1)

	// While group 2 loads, group 1 is already gone
	store.EXPECT().ListMessages(gomock.Any(), domain.GroupID(2)).
		DoAndReturn(func(ctx context.Context, groupID domain.GroupID) ([]domain.Message, error) {
			req.Empty(feed.Messages())
			return []domain.Message{message(5, 2, 0)}, nil
		})
	req.NoError(feed.LoadHistory(context.Background(), 2))
	req.Equal([]domain.Message{message(5, 2, 0)}, feed.Messages())
}

func TestFeed_Stale_History_Discarded(t *testing.T) {
	req := require.New(t)
	feed, store := newFeed(t)
	release := make(chan struct{})
	started := make(chan struct{})

	// Given a slow load of group A
	store.EXPECT().ListMessages(gomock.Any(), domain.GroupID(1)).
		DoAndReturn(func(ctx context.Context, groupID domain.GroupID) ([]domain.Message, error) {
			close(started)
			<-release
			return []domain.Message{message(1, 1, 0)}, nil
		})
	store.EXPECT().ListMessages(gomock.Any(), domain.GroupID(2)).
		Return([]domain.Message{message(2, 2, 0)}, nil)

	done := make(chan error)
	go func() { done <- feed.LoadHistory(context.Background(), 1) }()
	<-started

	// When the user switches to group B and B answers first
	req.NoError(feed.LoadHistory(context.Background(), 2))
	close(release)
	req.NoError(<-done)

	// Then the last intent wins
	req.Equal([]domain.Message{message(2, 2, 0)}, feed.Messages())
	selected, _ := feed.Selected()
	req.Equal(domain.GroupID(2), selected)
}

func TestFeed_LoadHistory_Failure(t *testing.T) {
	req := require.New(t)
	feed, store := newFeed(t)
	store.EXPECT().ListMessages(gomock.Any(), domain.GroupID(1)).Return(nil, errors.ErrBackendUnavailable)

	req.ErrorIs(feed.LoadHistory(context.Background(), 1), errors.ErrBackendUnavailable)
	req.Empty(feed.Messages())
}

// Two live events for different groups used to be both appended; only the
// selected group's message is kept now.
func TestFeed_AppendLive_Only_Selected_Group(t *testing.T) {
	req := require.New(t)
	feed, store := newFeed(t)
	store.EXPECT().ListMessages(gomock.Any(), domain.GroupID(1)).Return(nil, nil)
	req.NoError(feed.LoadHistory(context.Background(), 1))

	// Two realtime inserts for different groups while group A is selected
	req.True(feed.AppendLive(message(10, 1, 0)))
	req.False(feed.AppendLive(message(11, 2, 0)))

	req.Equal([]domain.Message{message(10, 1, 0)}, feed.Messages())
}

func TestFeed_AppendLive_Without_Selection(t *testing.T) {
	req := require.New(t)
	feed, _ := newFeed(t)

	req.False(feed.AppendLive(message(1, 1, 0)))
	req.Empty(feed.Messages())
}

func TestFeed_Local_Append_Then_Echo_Shown_Once(t *testing.T) {
	req := require.New(t)
	feed, store := newFeed(t)
	store.EXPECT().ListMessages(gomock.Any(), domain.GroupID(1)).Return(nil, nil)
	req.NoError(feed.LoadHistory(context.Background(), 1))

	sent := message(4, 1, 0)
	req.True(feed.AppendLocal(sent))
	req.NoError(feed.Consume(context.Background(), event.MessageInserted{Message: sent}))

	req.Equal([]domain.Message{sent}, feed.Messages())
}

func TestFeed_Live_Messages_During_Load_Kept_After_History(t *testing.T) {
	req := require.New(t)
	feed, store := newFeed(t)
	live := message(9, 1, time.Hour)
	echoed := message(2, 1, time.Minute)

	store.EXPECT().ListMessages(gomock.Any(), domain.GroupID(1)).
		DoAndReturn(func(ctx context.Context, groupID domain.GroupID) ([]domain.Message, error) {
			feed.AppendLive(live)
			feed.AppendLive(echoed)
			return []domain.Message{message(1, 1, 0), echoed}, nil
		})

	req.NoError(feed.LoadHistory(context.Background(), 1))
	req.Equal([]domain.Message{message(1, 1, 0), echoed, live}, feed.Messages())
}

func TestFeed_Reset(t *testing.T) {
	req := require.New(t)
	feed, store := newFeed(t)
	store.EXPECT().ListMessages(gomock.Any(), domain.GroupID(1)).Return([]domain.Message{message(1, 1, 0)}, nil)
	req.NoError(feed.LoadHistory(context.Background(), 1))

	feed.Reset()
	req.Empty(feed.Messages())
	_, ok := feed.Selected()
	req.False(ok)
}

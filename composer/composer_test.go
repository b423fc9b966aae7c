package composer

import (
	"context"
	"groupchat/domain"
	"groupchat/errors"
	"groupchat/mocks"
	"groupchat/projection"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var alice = domain.User{ID: "u1", Email: "alice@example.com"}

type fixture struct {
	store  *mocks.MockMessageStore
	users  *mocks.MockUserSource
	groups *mocks.MockGroupSelection
	feed   *mocks.MockLocalFeed
}

func newComposer(t *testing.T) (*Composer, fixture) {
	ctrl := gomock.NewController(t)
	f := fixture{
		store:  mocks.NewMockMessageStore(ctrl),
		users:  mocks.NewMockUserSource(ctrl),
		groups: mocks.NewMockGroupSelection(ctrl),
		feed:   mocks.NewMockLocalFeed(ctrl),
	}
	return NewComposer(logs.GetLoggerFromLevel(slog.LevelDebug), f.store, f.users, f.groups, f.feed), f
}

func TestComposer_Typing(t *testing.T) {
	req := require.New(t)
	c, _ := newComposer(t)

	req.False(c.Typing())
	c.SetText("h")
	req.True(c.Typing())
	req.Equal("h", c.Text())
	c.SetText("")
	req.False(c.Typing())
}

func TestComposer_Submit_Success(t *testing.T) {
	req := require.New(t)
	c, f := newComposer(t)
	c.SetText("  hello  ")
	sent := domain.Message{ID: 3, UserID: "u1", Content: "hello", GroupID: 2, CreatedAt: time.Now()}

	f.users.EXPECT().CurrentUser().Return(alice, true)
	f.groups.EXPECT().Selected().Return(domain.GroupID(2), true)
	f.store.EXPECT().
		InsertMessage(gomock.Any(), domain.NewMessage{Content: "hello", UserID: "u1", GroupID: 2}).
		Return(sent, nil)
	withEmail := sent
	withEmail.AuthorEmail = alice.Email
	f.feed.EXPECT().AppendLocal(withEmail).Return(true)

	message, err := c.Submit(context.Background())
	req.NoError(err)
	req.Equal(withEmail, message)
	req.Empty(c.Text())
}

func TestComposer_Submit_Never_Issues_Mutation_When_Invalid(t *testing.T) {
	t.Run("whitespace only text", func(t *testing.T) {
		req := require.New(t)
		c, f := newComposer(t)
		f.store.EXPECT().InsertMessage(gomock.Any(), gomock.Any()).Times(0)
		c.SetText(" \t\n ")

		_, err := c.Submit(context.Background())
		req.ErrorIs(err, errors.ErrEmptyMessage)
		req.Equal(" \t\n ", c.Text())
	})

	t.Run("no authenticated user", func(t *testing.T) {
		req := require.New(t)
		c, f := newComposer(t)
		f.users.EXPECT().CurrentUser().Return(domain.User{}, false)
		f.store.EXPECT().InsertMessage(gomock.Any(), gomock.Any()).Times(0)
		c.SetText("hello")

		_, err := c.Submit(context.Background())
		req.ErrorIs(err, errors.ErrNotAuthenticated)
		req.Equal("hello", c.Text())
	})

	t.Run("no group selected", func(t *testing.T) {
		req := require.New(t)
		c, f := newComposer(t)
		f.users.EXPECT().CurrentUser().Return(alice, true)
		f.groups.EXPECT().Selected().Return(domain.GroupID(0), false)
		f.store.EXPECT().InsertMessage(gomock.Any(), gomock.Any()).Times(0)
		c.SetText("hello")

		_, err := c.Submit(context.Background())
		req.ErrorIs(err, errors.ErrNoGroupSelected)
		req.Equal("hello", c.Text())
	})
}

func TestComposer_Submit_Failure_Keeps_Input(t *testing.T) {
	req := require.New(t)
	c, f := newComposer(t)
	c.SetText("hello")
	f.users.EXPECT().CurrentUser().Return(alice, true)
	f.groups.EXPECT().Selected().Return(domain.GroupID(2), true)
	f.store.EXPECT().InsertMessage(gomock.Any(), gomock.Any()).Return(domain.Message{}, errors.ErrBackendUnavailable)
	f.feed.EXPECT().AppendLocal(gomock.Any()).Times(0)

	_, err := c.Submit(context.Background())
	req.ErrorIs(err, errors.ErrBackendUnavailable)
	req.Equal("hello", c.Text())
}

func TestComposer_CanSend(t *testing.T) {
	req := require.New(t)
	c, f := newComposer(t)
	req.False(c.CanSend())

	c.SetText("hello")
	f.users.EXPECT().CurrentUser().Return(alice, true).AnyTimes()
	f.groups.EXPECT().Selected().Return(domain.GroupID(0), false)
	req.False(c.CanSend())

	f.groups.EXPECT().Selected().Return(domain.GroupID(1), true)
	req.True(c.CanSend())
}

// The sent message and its realtime echo end up once in the feed.
func TestComposer_Sent_Message_Shown_Once_With_Echo(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	store := mocks.NewMockMessageStore(ctrl)
	users := mocks.NewMockUserSource(ctrl)
	feed := projection.NewFeed(log, store)

	store.EXPECT().ListMessages(gomock.Any(), domain.GroupID(2)).Return(nil, nil)
	req.NoError(feed.LoadHistory(context.Background(), 2))

	sent := domain.Message{ID: 3, UserID: "u1", Content: "hello", GroupID: 2, AuthorEmail: alice.Email}
	users.EXPECT().CurrentUser().Return(alice, true)
	store.EXPECT().InsertMessage(gomock.Any(), gomock.Any()).Return(sent, nil)

	c := NewComposer(log, store, users, feed, feed)
	c.SetText("hello")
	_, err := c.Submit(context.Background())
	req.NoError(err)
	feed.AppendLive(sent)

	req.Empty(c.Text())
	req.Equal([]domain.Message{sent}, feed.Messages())
}

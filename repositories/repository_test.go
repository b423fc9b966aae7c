package repositories

import (
	"context"
	"groupchat/domain"
	"groupchat/errors"
	"log/slog"
	"testing"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func openDB(t *testing.T) *badger.DB {
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func Test_Record_Multiple_Message(t *testing.T) {
	req := require.New(t)
	db := openDB(t)
	repository, err := NewMessageRepository(db, slog.Default(), nil)
	req.NoError(err)
	defer repository.Close()

	group := domain.GroupID(1)
	at := time.Now().UTC()
	authors := []string{"alice", "bob", "clara"}
	var stored []domain.Message
	for i, author := range authors {
		message, err := repository.StoreMessage(domain.NewMessage{
			Content: "this message will self destruct in 5 seconds",
			UserID:  author,
			GroupID: group,
		}, at.Add(time.Duration(i)*time.Minute))
		req.NoError(err)
		stored = append(stored, message)
	}

	fetched, err := repository.GetMessages(group)
	req.NoError(err)
	req.Equal(stored, fetched)
}

func Test_Messages_Ordered_By_Creation_Not_Insertion(t *testing.T) {
	req := require.New(t)
	db := openDB(t)
	repository, err := NewMessageRepository(db, slog.Default(), nil)
	req.NoError(err)
	defer repository.Close()

	at := time.Now().UTC()
	late, err := repository.StoreMessage(domain.NewMessage{Content: "late", UserID: "u", GroupID: 1}, at.Add(time.Hour))
	req.NoError(err)
	early, err := repository.StoreMessage(domain.NewMessage{Content: "early", UserID: "u", GroupID: 1}, at)
	req.NoError(err)
	_, err = repository.StoreMessage(domain.NewMessage{Content: "elsewhere", UserID: "u", GroupID: 2}, at)
	req.NoError(err)

	fetched, err := repository.GetMessages(1)
	req.NoError(err)
	req.Equal([]domain.Message{early, late}, fetched)
}

func Test_Record_Multiple_Message_And_Limit(t *testing.T) {
	req := require.New(t)
	db := openDB(t)
	limit := 2
	repository, err := NewMessageRepository(db, slog.Default(), &limit)
	req.NoError(err)
	defer repository.Close()

	at := time.Now().UTC()
	var stored []domain.Message
	for i := 0; i < 3; i++ {
		message, err := repository.StoreMessage(domain.NewMessage{Content: "hi", UserID: "u", GroupID: 4},
			at.Add(time.Duration(i)*time.Minute))
		req.NoError(err)
		stored = append(stored, message)
	}

	// Then only the most recent messages are kept, still in ascending order
	fetched, err := repository.GetMessages(4)
	req.NoError(err)
	req.Equal(stored[1:], fetched)
}

func Test_Get_Message_By_ID(t *testing.T) {
	req := require.New(t)
	db := openDB(t)
	repository, err := NewMessageRepository(db, slog.Default(), nil)
	req.NoError(err)
	defer repository.Close()

	stored, err := repository.StoreMessage(domain.NewMessage{Content: "find me", UserID: "u", GroupID: 1}, time.Now())
	req.NoError(err)

	fetched, err := repository.GetMessage(stored.ID)
	req.NoError(err)
	req.Equal(stored, fetched)

	_, err = repository.GetMessage(stored.ID + 100)
	req.ErrorIs(err, errors.ErrMessageNotFound)
}

func Test_Groups_Listed_By_Name_With_Duplicates(t *testing.T) {
	req := require.New(t)
	db := openDB(t)
	repository, err := NewGroupRepository(db, slog.Default())
	req.NoError(err)
	defer repository.Close()

	at := time.Now()
	zeta, err := repository.CreateGroup(domain.NewGroup{Name: "zeta", CreatedBy: "u"}, at)
	req.NoError(err)
	alpha, err := repository.CreateGroup(domain.NewGroup{Name: "alpha", CreatedBy: "u"}, at)
	req.NoError(err)
	alphaBis, err := repository.CreateGroup(domain.NewGroup{Name: "alpha", CreatedBy: "v"}, at)
	req.NoError(err)
	req.NotEqual(alpha.ID, alphaBis.ID)

	groups, err := repository.ListGroups()
	req.NoError(err)
	req.Equal([]domain.Group{alpha, alphaBis, zeta}, groups)

	fetched, err := repository.GetGroup(zeta.ID)
	req.NoError(err)
	req.Equal(zeta, fetched)

	_, err = repository.GetGroup(999)
	req.ErrorIs(err, errors.ErrGroupNotFound)
}

func Test_Group_Ids_Survive_Restart(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	db, err := badger.Open(badger.DefaultOptions(dir).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	repository, err := NewGroupRepository(db, slog.Default())
	req.NoError(err)
	first, err := repository.CreateGroup(domain.NewGroup{Name: "first"}, time.Now())
	req.NoError(err)
	req.NoError(repository.Close())
	req.NoError(db.Close())

	db, err = badger.Open(badger.DefaultOptions(dir).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()
	repository, err = NewGroupRepository(db, slog.Default())
	req.NoError(err)
	defer repository.Close()
	second, err := repository.CreateGroup(domain.NewGroup{Name: "second"}, time.Now())
	req.NoError(err)
	req.Greater(second.ID, first.ID)
}

func Test_User_Create_And_Lookup(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openDB(t))

	id, err := repository.CreateUser("Alice@Example.com", "hash")
	req.NoError(err)
	req.NotEmpty(id)

	byEmail, err := repository.GetUserByEmail("alice@example.com")
	req.NoError(err)
	req.Equal(id, byEmail.ID)
	req.Equal("hash", byEmail.PasswordHash)

	byID, err := repository.GetUserByID(id)
	req.NoError(err)
	req.Equal(byEmail, byID)

	_, err = repository.CreateUser("alice@example.com", "other")
	req.ErrorIs(err, errors.ErrUserAlreadyExists)

	_, err = repository.GetUserByEmail("nobody@example.com")
	req.ErrorIs(err, badger.ErrKeyNotFound)
}

func Test_Search_Messages_In_Group(t *testing.T) {
	req := require.New(t)
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	req.NoError(err)
	defer writer.Close()
	index := NewMessageIndex(writer, logs.GetLoggerFromLevel(slog.LevelDebug))

	messages := []domain.Message{
		{ID: 1, GroupID: 1, Content: "We are sending the quarterly report to the whole team tomorrow morning"},
		{ID: 2, GroupID: 1, Content: "lunch at noon"},
		{ID: 3, GroupID: 2, Content: "report for another group"},
	}
	for _, m := range messages {
		req.NoError(index.Index(m))
	}

	ids, err := index.Search(context.Background(), 1, "report", 10)
	req.NoError(err)
	req.Equal([]domain.MessageID{1}, ids)

	ids, err = index.Search(context.Background(), 1, "pizza", 10)
	req.NoError(err)
	req.Empty(ids)
}

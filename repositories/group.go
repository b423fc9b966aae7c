//go:generate go run go.uber.org/mock/mockgen -source=group.go -destination=../mocks/mock_group_repository.go -package=mocks
package repositories

import (
	"groupchat/codec"
	"groupchat/domain"
	"groupchat/errors"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

type IGroupRepository interface {
	CreateGroup(group domain.NewGroup, at time.Time) (domain.Group, error)
	ListGroups() ([]domain.Group, error)
	GetGroup(id domain.GroupID) (domain.Group, error)
}

type GroupRepository struct {
	db  *badger.DB
	seq *badger.Sequence
	log *slog.Logger
}

func NewGroupRepository(db *badger.DB, log *slog.Logger) (*GroupRepository, error) {
	seq, err := db.GetSequence([]byte(groupSequence), sequenceBandwidth)
	if err != nil {
		return nil, err
	}
	return &GroupRepository{db: db, seq: seq, log: log}, nil
}

// Close gives back the ids leased but not used by the sequence.
func (g *GroupRepository) Close() error {
	return g.seq.Release()
}

// CreateGroup stores the group row and its name index in a single transaction.
// Names are not unique, the id breaks ties in the index.
func (g *GroupRepository) CreateGroup(group domain.NewGroup, at time.Time) (domain.Group, error) {
	next, err := g.seq.Next()
	if err != nil {
		return domain.Group{}, err
	}
	created := domain.Group{ID: domain.GroupID(next + 1), Name: group.Name}
	bytes, err := codec.Marshal(codec.GroupToRow(codec.StoredGroup{
		Group:     created,
		CreatedBy: group.CreatedBy,
		CreatedAt: at,
	}))
	if err != nil {
		return domain.Group{}, err
	}
	err = g.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(groupKey(created.ID), bytes); err != nil {
			return err
		}
		return txn.Set(groupNameKey(created.Name, created.ID), nil)
	})
	if err != nil {
		return domain.Group{}, err
	}
	g.log.Debug("Group created", "group_id", created.ID, "name", created.Name)
	return created, nil
}

// ListGroups walks the name index, so groups come out ordered by name ascending.
func (g *GroupRepository) ListGroups() ([]domain.Group, error) {
	var groups []domain.Group
	err := g.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		prefix := []byte(groupNamePrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			id, err := groupIDFromNameKey(it.Item().Key())
			if err != nil {
				return err
			}
			group, err := getGroup(txn, id)
			if err != nil {
				return err
			}
			groups = append(groups, group)
		}
		return nil
	})
	return groups, err
}

func (g *GroupRepository) GetGroup(id domain.GroupID) (domain.Group, error) {
	var group domain.Group
	err := g.db.View(func(txn *badger.Txn) error {
		var err error
		group, err = getGroup(txn, id)
		return err
	})
	return group, err
}

func getGroup(txn *badger.Txn, id domain.GroupID) (domain.Group, error) {
	item, err := txn.Get(groupKey(id))
	if err == badger.ErrKeyNotFound {
		return domain.Group{}, errors.ErrGroupNotFound
	}
	if err != nil {
		return domain.Group{}, err
	}
	var stored codec.StoredGroup
	err = item.Value(func(val []byte) error {
		row, err := codec.Unmarshal(val)
		if err != nil {
			return err
		}
		stored, err = codec.RowToGroup(row)
		return err
	})
	return stored.Group, err
}

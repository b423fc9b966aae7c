//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"fmt"
	"groupchat/codec"
	"groupchat/domain"
	"groupchat/errors"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
)

type IMessageRepository interface {
	StoreMessage(message domain.NewMessage, at time.Time) (domain.Message, error)
	GetMessages(groupID domain.GroupID) ([]domain.Message, error)
	GetMessage(id domain.MessageID) (domain.Message, error)
}

type MessageRepository struct {
	db            *badger.DB
	seq           *badger.Sequence
	log           *slog.Logger
	limitMessages *int
}

// NewMessageRepository keeps at most limitMessages per history read, the most recent ones.
// A nil limit returns the whole history.
func NewMessageRepository(db *badger.DB, log *slog.Logger, limitMessages *int) (*MessageRepository, error) {
	seq, err := db.GetSequence([]byte(messageSequence), sequenceBandwidth)
	if err != nil {
		return nil, err
	}
	return &MessageRepository{db: db, seq: seq, log: log, limitMessages: limitMessages}, nil
}

func (m *MessageRepository) Close() error {
	return m.seq.Release()
}

// StoreMessage persists a message in BadgerDB.
// The key is formatted as "msg:{group}:{timestamp_padded}:{id}" to:
//  1. Ensure chronological sorting using 19-digit zero padding (lexicographical order).
//  2. Keep two messages of the same nanosecond apart thanks to the id.
//
// A secondary key "idx:msg:id:{id}" points back to the primary key.
func (m *MessageRepository) StoreMessage(message domain.NewMessage, at time.Time) (domain.Message, error) {
	next, err := m.seq.Next()
	if err != nil {
		return domain.Message{}, err
	}
	stored := domain.Message{
		ID:        domain.MessageID(next + 1),
		UserID:    message.UserID,
		Content:   message.Content,
		CreatedAt: at.UTC(),
		GroupID:   message.GroupID,
	}
	bytes, err := codec.Marshal(codec.MessageToRow(stored))
	if err != nil {
		return domain.Message{}, err
	}
	key := messageKey(stored.GroupID, stored.CreatedAt, stored.ID)
	err = m.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(key, bytes); err != nil {
			return err
		}
		return txn.Set(messageIDKey(stored.ID), key)
	})
	if err != nil {
		return domain.Message{}, err
	}
	return stored, nil
}

// GetMessages retrieves the messages of a group using a prefix scan.
// Thanks to the padded timestamp in the key, messages come out sorted by time.
// With a limit, the scan runs backwards from the newest message and the page is
// reversed before being returned.
func (m *MessageRepository) GetMessages(groupID domain.GroupID) ([]domain.Message, error) {
	var messages []domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := messageGroupPrefix(groupID)
		options := badger.DefaultIteratorOptions
		options.Prefix = prefix
		options.Reverse = m.limitMessages != nil
		it := txn.NewIterator(options)
		defer it.Close()

		seekKey := prefix
		if options.Reverse {
			seekKey = append(append([]byte{}, prefix...), 0xFF)
		}
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if m.limitMessages != nil && len(messages) == *m.limitMessages {
				m.log.Debug(fmt.Sprintf("Maximum of %d message reached", *m.limitMessages))
				break
			}
			err := it.Item().Value(func(val []byte) error {
				message, err := decodeMessage(val)
				if err != nil {
					return err
				}
				messages = append(messages, message)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if m.limitMessages != nil {
		messages = lo.Reverse(messages)
	}
	return messages, nil
}

func (m *MessageRepository) GetMessage(id domain.MessageID) (domain.Message, error) {
	var message domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		ref, err := txn.Get(messageIDKey(id))
		if err == badger.ErrKeyNotFound {
			return errors.ErrMessageNotFound
		}
		if err != nil {
			return err
		}
		key, err := ref.ValueCopy(nil)
		if err != nil {
			return err
		}
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			message, err = decodeMessage(val)
			return err
		})
	})
	return message, err
}

func decodeMessage(val []byte) (domain.Message, error) {
	row, err := codec.Unmarshal(val)
	if err != nil {
		return domain.Message{}, err
	}
	return codec.RowToMessage(row)
}

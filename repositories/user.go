//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"fmt"
	"groupchat/codec"
	"groupchat/errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IUserRepository interface {
	CreateUser(email, hashedPassword string) (string, error)
	GetUserByEmail(email string) (User, error)
	GetUserByID(id string) (User, error)
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

// User is the repository-level view of an account.
type User = codec.StoredUser

// CreateUser persists the user under its lowercased email with an id index.
// It returns the newly generated User ID
func (u UserRepository) CreateUser(email, hashedPassword string) (string, error) {
	newID := uuid.New().String()
	data, err := codec.Marshal(codec.UserToRow(User{
		ID:           newID,
		Email:        email,
		PasswordHash: hashedPassword,
		CreatedAt:    time.Now().UTC(),
	}))
	if err != nil {
		return "", fmt.Errorf("marshal failed: %w", err)
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		key := userKey(email)
		if _, err := txn.Get(key); err == nil {
			return errors.ErrUserAlreadyExists
		}
		if err := txn.Set(key, data); err != nil {
			return err
		}
		return txn.Set(userIDKey(newID), key)
	})
	if err != nil {
		return "", err
	}
	return newID, nil
}

func (u UserRepository) GetUserByEmail(email string) (User, error) {
	var user User
	err := u.db.View(func(txn *badger.Txn) error {
		var err error
		user, err = getUser(txn, userKey(email))
		return err
	})
	return user, err
}

func (u UserRepository) GetUserByID(id string) (User, error) {
	var user User
	err := u.db.View(func(txn *badger.Txn) error {
		ref, err := txn.Get(userIDKey(id))
		if err != nil {
			return err
		}
		key, err := ref.ValueCopy(nil)
		if err != nil {
			return err
		}
		user, err = getUser(txn, key)
		return err
	})
	return user, err
}

func getUser(txn *badger.Txn, key []byte) (User, error) {
	item, err := txn.Get(key)
	if err != nil {
		return User{}, err // Will be handled as ErrInvalidCredentials by the service
	}
	var user User
	err = item.Value(func(val []byte) error {
		row, err := codec.Unmarshal(val)
		if err != nil {
			return err
		}
		user, err = codec.RowToUser(row)
		return err
	})
	return user, err
}

//go:generate go run go.uber.org/mock/mockgen -source=backend.go -destination=../mocks/mock_backend.go -package=mocks
package contract

import (
	"context"
	"groupchat/domain"
	"groupchat/domain/event"
)

// AuthBackend is the auth side of the backend collaborator as seen by the client.
type AuthBackend interface {
	CurrentSession(ctx context.Context) (*domain.Session, error)
	OnAuthStateChange(listener func(event.AuthStateChanged)) (unsubscribe func())
	SignOut(ctx context.Context) error
}

type GroupStore interface {
	// ListGroups returns every group ordered by name ascending.
	ListGroups(ctx context.Context) ([]domain.Group, error)
	InsertGroup(ctx context.Context, group domain.NewGroup) (domain.Group, error)
}

type MessageStore interface {
	// ListMessages returns the messages of a group, author email joined,
	// ordered by creation time ascending.
	ListMessages(ctx context.Context, groupID domain.GroupID) ([]domain.Message, error)
	InsertMessage(ctx context.Context, message domain.NewMessage) (domain.Message, error)
}

type Searcher interface {
	SearchMessages(ctx context.Context, groupID domain.GroupID, text string) ([]domain.Message, error)
}

// Realtime opens insert subscriptions on the messages table.
type Realtime interface {
	SubscribeMessages(ctx context.Context) (Subscription, error)
}

// Subscription delivers pushed rows until Unsubscribe is called or the stream drops.
// The Events channel is closed in both cases.
type Subscription interface {
	Events() <-chan event.MessageInserted
	Unsubscribe()
}

//go:generate go run go.uber.org/mock/mockgen -source=client.go -destination=../mocks/mock_client.go -package=mocks
package contract

import "groupchat/domain"

// UserSource exposes the signed in user, if any.
type UserSource interface {
	CurrentUser() (domain.User, bool)
}

type GroupSelection interface {
	Selected() (domain.GroupID, bool)
}

// LocalFeed receives the messages the user just sent.
type LocalFeed interface {
	AppendLocal(message domain.Message) bool
}

package event

import (
	"groupchat/domain"
)

type DomainEvent interface {
	GroupID() domain.GroupID
}

// MessageInserted is pushed by the change-feed for every new message row.
type MessageInserted struct {
	Message domain.Message
}

func (m MessageInserted) GroupID() domain.GroupID {
	return m.Message.GroupID
}

type AuthChange int

const (
	SignedIn AuthChange = iota
	TokenRefreshed
	SignedOut
)

func (c AuthChange) String() string {
	switch c {
	case SignedIn:
		return "SIGNED_IN"
	case TokenRefreshed:
		return "TOKEN_REFRESHED"
	default:
		return "SIGNED_OUT"
	}
}

// AuthStateChanged carries the new session; Session is nil once signed out.
type AuthStateChanged struct {
	Change  AuthChange
	Session *domain.Session
}

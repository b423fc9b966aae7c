// Package domain contains core concepts of the chat system.
// This file defines Message rows and related rules.
// Messages are immutable once inserted.
package domain

import (
	"time"
)

type MessageID int64

// Message represents an immutable chat row as the backend returns it,
// author email included.
type Message struct {
	ID          MessageID
	UserID      string
	Content     string
	CreatedAt   time.Time
	GroupID     GroupID
	AuthorEmail string
}

// NewMessage is the insert payload of a message.
type NewMessage struct {
	Content string
	UserID  string
	GroupID GroupID
}

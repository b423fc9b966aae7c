// Package composer holds the text being written and sends it as a message.
package composer

import (
	"context"
	"groupchat/contract"
	"groupchat/domain"
	"groupchat/errors"
	"log/slog"
	"strings"
	"sync"
)

type Composer struct {
	log    *slog.Logger
	store  contract.MessageStore
	users  contract.UserSource
	groups contract.GroupSelection
	feed   contract.LocalFeed

	mu   sync.Mutex
	text string
}

func NewComposer(log *slog.Logger, store contract.MessageStore, users contract.UserSource,
	groups contract.GroupSelection, feed contract.LocalFeed) *Composer {
	return &Composer{log: log, store: store, users: users, groups: groups, feed: feed}
}

func (c *Composer) SetText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text = text
}

func (c *Composer) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}

// Typing is local state only, nothing is sent to the other members.
func (c *Composer) Typing() bool {
	return c.Text() != ""
}

// CanSend tells whether Submit would issue a request.
func (c *Composer) CanSend() bool {
	if strings.TrimSpace(c.Text()) == "" {
		return false
	}
	if _, ok := c.users.CurrentUser(); !ok {
		return false
	}
	_, ok := c.groups.Selected()
	return ok
}

// Submit sends the current text to the selected group.
// Nothing is sent without text, user or group. On success the input is cleared
// and the message is added to the feed; on failure the input is kept.
func (c *Composer) Submit(ctx context.Context) (domain.Message, error) {
	content := strings.TrimSpace(c.Text())
	if content == "" {
		return domain.Message{}, errors.ErrEmptyMessage
	}
	user, ok := c.users.CurrentUser()
	if !ok {
		return domain.Message{}, errors.ErrNotAuthenticated
	}
	groupID, ok := c.groups.Selected()
	if !ok {
		return domain.Message{}, errors.ErrNoGroupSelected
	}

	message, err := c.store.InsertMessage(ctx, domain.NewMessage{
		Content: content,
		UserID:  user.ID,
		GroupID: groupID,
	})
	if err != nil {
		c.log.Error("Message not sent", "group_id", groupID, "error", err)
		return domain.Message{}, err
	}
	if message.AuthorEmail == "" {
		message.AuthorEmail = user.Email
	}

	c.SetText("")
	c.feed.AppendLocal(message)
	return message, nil
}

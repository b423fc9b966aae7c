// Package projection builds the visible message feed of the selected group.
// Handles ordering, deduplication, and stale history responses.
// Does not emit events or interact with UI directly.
package projection

import (
	"context"
	"groupchat/contract"
	"groupchat/domain"
	"groupchat/domain/event"
	"log/slog"
	"slices"
	"sync"
)

// BelongsTo reports whether a message is part of the selected group.
// Nothing belongs to an empty selection.
func BelongsTo(selected *domain.GroupID) func(domain.Message) bool {
	return func(m domain.Message) bool {
		return selected != nil && m.GroupID == *selected
	}
}

// Feed is the ordered sequence of messages of the selected group.
// A message id is present at most once, whichever path brought it in.
type Feed struct {
	log   *slog.Logger
	store contract.MessageStore

	mu         sync.Mutex
	selected   *domain.GroupID
	generation uint64
	messages   []domain.Message
	seen       map[domain.MessageID]struct{}
}

var (
	_ contract.EventSink = (*Feed)(nil)
	_ contract.LocalFeed = (*Feed)(nil)
)

func NewFeed(log *slog.Logger, store contract.MessageStore) *Feed {
	return &Feed{log: log, store: store, seen: make(map[domain.MessageID]struct{})}
}

// LoadHistory selects a group and replaces the feed with its history.
// The previous sequence is dropped before the request is sent. When another
// LoadHistory started in the meantime, this response is discarded.
func (f *Feed) LoadHistory(ctx context.Context, groupID domain.GroupID) error {
	f.mu.Lock()
	f.generation++
	generation := f.generation
	f.selected = &groupID
	f.messages = nil
	f.seen = make(map[domain.MessageID]struct{})
	f.mu.Unlock()

	history, err := f.store.ListMessages(ctx, groupID)
	if err != nil {
		f.log.Error("Unable to load history", "group_id", groupID, "error", err)
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if generation != f.generation {
		f.log.Debug("Stale history discarded", "group_id", groupID, "generation", generation)
		return nil
	}
	history = slices.Clone(history)
	slices.SortStableFunc(history, func(a, b domain.Message) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	// Live messages received while loading come after the history
	live := f.messages
	f.messages = nil
	f.seen = make(map[domain.MessageID]struct{})
	for _, m := range history {
		f.insert(m)
	}
	for _, m := range live {
		f.insert(m)
	}
	return nil
}

// AppendLive appends a message pushed by the realtime feed.
// Messages of other groups and already shown ids are ignored.
func (f *Feed) AppendLive(message domain.Message) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !BelongsTo(f.selected)(message) {
		return false
	}
	return f.insert(message)
}

// AppendLocal appends a message right after it was sent.
// The realtime echo of the same message is then a no-op.
func (f *Feed) AppendLocal(message domain.Message) bool {
	return f.AppendLive(message)
}

func (f *Feed) Consume(_ context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.MessageInserted:
		f.AppendLive(evt.Message)
	}
	return nil
}

func (f *Feed) Messages() []domain.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.messages)
}

func (f *Feed) Selected() (domain.GroupID, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.selected == nil {
		return 0, false
	}
	return *f.selected, true
}

// Reset empties the feed and the selection. Pending loads are discarded.
func (f *Feed) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generation++
	f.selected = nil
	f.messages = nil
	f.seen = make(map[domain.MessageID]struct{})
}

func (f *Feed) insert(message domain.Message) bool {
	if _, ok := f.seen[message.ID]; ok {
		return false
	}
	f.seen[message.ID] = struct{}{}
	f.messages = append(f.messages, message)
	return true
}

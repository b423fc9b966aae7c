package runtime

import (
	"groupchat/contract"
	"groupchat/domain"
	"sync"
)

type subscription struct {
	filter *domain.GroupID
	sink   contract.EventSink
}

// Registry keeps the live subscribers of the messages change-feed.
type Registry struct {
	mu            sync.RWMutex
	Subscriptions map[string]subscription // map subscriber -> filter and sink
}

func NewRegistry() *Registry {
	return &Registry{
		Subscriptions: make(map[string]subscription),
	}
}

// GetSinksForGroup returns the sinks interested in a message of groupID:
// every unfiltered subscriber plus those filtering on that group.
// Returns nil when nobody listens.
func (r *Registry) GetSinksForGroup(groupID domain.GroupID) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var activeSinks []contract.EventSink
	for _, sub := range r.Subscriptions {
		if sub.filter == nil || *sub.filter == groupID {
			activeSinks = append(activeSinks, sub.sink)
		}
	}
	return activeSinks
}

// Subscribe registers a subscriber's sink, replacing any previous one under the same id.
func (r *Registry) Subscribe(subscriberID string, filter *domain.GroupID, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if filter != nil {
		f := *filter
		filter = &f
	}
	r.Subscriptions[subscriberID] = subscription{filter: filter, sink: sink}
}

func (r *Registry) Unsubscribe(subscriberID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.Subscriptions, subscriberID)
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.Subscriptions)
}

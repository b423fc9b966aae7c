// Package session holds the signed in user of the client.
// Other components read it, only the holder changes it.
package session

import (
	"context"
	"groupchat/contract"
	"groupchat/domain"
	"groupchat/domain/event"
	"log/slog"
	"sync"
)

type Holder struct {
	log     *slog.Logger
	backend contract.AuthBackend

	mu          sync.Mutex
	user        *domain.User
	unsubscribe func()
}

var _ contract.UserSource = (*Holder)(nil)

func NewHolder(log *slog.Logger, backend contract.AuthBackend) *Holder {
	return &Holder{log: log, backend: backend}
}

// Start listens to session changes then reads the current session,
// in this order so that no change is missed in between.
func (h *Holder) Start(ctx context.Context) error {
	unsubscribe := h.backend.OnAuthStateChange(h.onAuthStateChange)
	h.mu.Lock()
	h.unsubscribe = unsubscribe
	h.mu.Unlock()

	session, err := h.backend.CurrentSession(ctx)
	if err != nil {
		h.log.Error("Unable to retrieve the current session", "error", err)
		return err
	}
	if session != nil {
		h.setUser(&session.User)
	}
	return nil
}

func (h *Holder) CurrentUser() (domain.User, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.user == nil {
		return domain.User{}, false
	}
	return *h.user, true
}

// SignOut forgets the user first, whatever the backend answers.
// A backend failure is logged and returned, never retried.
func (h *Holder) SignOut(ctx context.Context) error {
	h.setUser(nil)
	if err := h.backend.SignOut(ctx); err != nil {
		h.log.Error("Sign out failed on the backend", "error", err)
		return err
	}
	return nil
}

// Close stops listening to session changes.
func (h *Holder) Close() {
	h.mu.Lock()
	unsubscribe := h.unsubscribe
	h.unsubscribe = nil
	h.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

func (h *Holder) onAuthStateChange(e event.AuthStateChanged) {
	h.log.Debug("Session changed", "change", e.Change)
	if e.Change == event.SignedOut || e.Session == nil {
		h.setUser(nil)
		return
	}
	h.setUser(&e.Session.User)
}

func (h *Holder) setUser(user *domain.User) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if user == nil {
		h.user = nil
		return
	}
	copied := *user
	h.user = &copied
}

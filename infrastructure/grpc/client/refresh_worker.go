package client

import (
	"context"
	"groupchat/domain/event"
	"log/slog"
	"time"
)

// RefreshWorker keeps the session token fresh while the client runs.
// It sleeps until Backend.NextRefresh and wakes up early on any session change.
type RefreshWorker struct {
	log           *slog.Logger
	backend       *Backend
	retryInterval time.Duration
}

func NewRefreshWorker(log *slog.Logger, backend *Backend, retryInterval time.Duration) *RefreshWorker {
	return &RefreshWorker{log: log, backend: backend, retryInterval: retryInterval}
}

func (w *RefreshWorker) Run(ctx context.Context) error {
	changed := make(chan struct{}, 1)
	unsubscribe := w.backend.OnAuthStateChange(func(event.AuthStateChanged) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	for {
		var due <-chan time.Time
		var timer *time.Timer
		if at, ok := w.backend.NextRefresh(); ok {
			timer = time.NewTimer(max(0, at.Sub(w.backend.now())))
			due = timer.C
		}

		select {
		case <-ctx.Done():
			stopTimer(timer)
			return nil
		case <-changed:
			stopTimer(timer)
		case <-due:
			if _, err := w.backend.Refresh(ctx); err != nil {
				w.log.Warn("Token refresh failed", "error", err)
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(w.retryInterval):
				}
			}
		}
	}
}

func stopTimer(timer *time.Timer) {
	if timer != nil {
		timer.Stop()
	}
}

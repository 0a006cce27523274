// Package worker drains asynchronously emitted audit events into the store.
package worker

import (
	"context"
	"log/slog"

	"chamber/internal/audit"
)

// Worker consumes audit events from a channel and persists them. Only
// edge-of-system denial events flow through here; business operations append
// synchronously via the publisher.
type Worker struct {
	store  audit.Store
	inbox  <-chan audit.Event
	logger *slog.Logger
}

func NewWorker(store audit.Store, inbox <-chan audit.Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, inbox: inbox, logger: logger}
}

// Run blocks until the context is cancelled, draining the inbox as events
// arrive. Append failures are logged and skipped rather than stopping the
// worker: a broken async event must not take down denial logging entirely.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, &event); err != nil {
				w.logger.ErrorContext(ctx, "audit worker append failed",
					"action", event.Action,
					"error", err,
				)
			}
		}
	}
}

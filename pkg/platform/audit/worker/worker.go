package worker

import (
	"context"
	"log/slog"

	audit "refurb/pkg/platform/audit"
)

// Worker drains audit events from a channel into a store. A failed append
// is logged and skipped; one bad sink write must not stall the queue.
type Worker struct {
	store  audit.Store
	inbox  <-chan audit.Event
	logger *slog.Logger
}

func NewWorker(store audit.Store, inbox <-chan audit.Event, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{store: store, inbox: inbox, logger: logger}
}

// Run consumes until the inbox is closed. Persisting uses ctx so a shutdown
// deadline bounds the final drain.
func (w *Worker) Run(ctx context.Context) {
	for event := range w.inbox {
		if err := w.store.Append(ctx, event); err != nil {
			w.logger.ErrorContext(ctx, "failed to persist audit event",
				"action", event.Action,
				"subject_id", event.SubjectID,
				"error", err,
			)
		}
	}
}

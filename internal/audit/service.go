// Package audit keeps an append-only trail of account status transitions.
// The single current rejectionReason field on a user loses history on
// re-approval; this trail is the durable record.
package audit

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"docgate/pkg/requestcontext"
)

// Recorder writes status changes. Recording is fail-open: a failed append is
// logged but never blocks the approval or rejection that triggered it.
type Recorder struct {
	store  Store
	logger *slog.Logger
}

func NewRecorder(store Store, logger *slog.Logger) *Recorder {
	return &Recorder{store: store, logger: logger}
}

// RecordStatusChange stamps and appends a transition. Safe to call on a nil
// Recorder so services can treat auditing as optional wiring.
func (r *Recorder) RecordStatusChange(ctx context.Context, change StatusChange) {
	if r == nil {
		return
	}
	if change.ID == "" {
		change.ID = uuid.NewString()
	}
	if change.At.IsZero() {
		change.At = requestcontext.Now(ctx)
	}
	if err := r.store.Append(ctx, change); err != nil {
		r.logger.ErrorContext(ctx, "failed to append status change",
			"user_id", change.UserID,
			"to", change.To,
			"error", err,
		)
	}
}

// History returns a user's transitions, oldest first.
func (r *Recorder) History(ctx context.Context, userID string) ([]StatusChange, error) {
	return r.store.ListByUser(ctx, userID)
}

package audit

import "context"

// Store persists status changes. Append-only: nothing updates or deletes an
// entry once written.
type Store interface {
	Append(ctx context.Context, change StatusChange) error
	ListByUser(ctx context.Context, userID string) ([]StatusChange, error)
}

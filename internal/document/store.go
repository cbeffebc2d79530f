package document

import (
	"context"
	"time"
)

// Store persists documents. List methods return newest-upload first. Both
// update methods are single-record atomic writes; concurrent scoring and
// review resolve by last write wins.
type Store interface {
	Create(ctx context.Context, doc *Document) error
	FindByID(ctx context.Context, id string) (*Document, error)
	ListByUser(ctx context.Context, userID string) ([]*Document, error)
	ListAll(ctx context.Context) ([]*Document, error)
	UpdateVerification(ctx context.Context, id string, status VerificationStatus, result VerificationResult, updatedAt time.Time) (*Document, error)
	ApplyReview(ctx context.Context, id string, status VerificationStatus, review AdminReview, updatedAt time.Time) (*Document, error)
	Delete(ctx context.Context, id string) error
}

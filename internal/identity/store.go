package identity

import "context"

// Store persists users. Implementations return pkg/platform/sentinel errors
// for duplicate and missing records; the service translates those into
// caller-facing domain errors.
//
// UpdateStatus and AppendResult are single-record updates. Concurrent writers
// to the same user rely on the store's per-record atomicity; last write wins,
// which is the documented contract for re-approval and re-rejection.
type Store interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	ListByStatus(ctx context.Context, status Status) ([]*User, error)
	UpdateStatus(ctx context.Context, id string, status Status, rejectionReason string) (*User, error)
	AppendResult(ctx context.Context, id string, record ResultRecord) (*User, error)
}

// AdminStore persists direct admin accounts. The live authentication path
// uses the shared admin code, so nothing reads this store yet; it backs the
// credentialed-admin variant kept for a future per-admin login.
type AdminStore interface {
	Create(ctx context.Context, admin *Admin) error
	FindByEmail(ctx context.Context, email string) (*Admin, error)
}

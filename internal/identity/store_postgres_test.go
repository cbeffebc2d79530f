//go:build integration

package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docgate/pkg/platform/sentinel"
	"docgate/pkg/testutil/containers"
)

func newPostgresStore(t *testing.T) *PostgresStore {
	t.Helper()
	pg := containers.NewPostgresContainer(t)
	require.NoError(t, EnsureSchema(context.Background(), pg.DB))
	return NewPostgresStore(pg.DB)
}

func testUser(email, phone string) *User {
	return &User{
		ID:          uuid.NewString(),
		FirstName:   "Asha",
		LastName:    "Patel",
		Email:       email,
		PhoneNumber: phone,
		Status:      StatusPending,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestPostgresUniqueness(t *testing.T) {
	store := newPostgresStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, testUser("asha@example.com", "1234567890")))

	err := store.Create(ctx, testUser("ASHA@EXAMPLE.COM", "9876543210"))
	assert.ErrorIs(t, err, sentinel.ErrDuplicateEmail)

	// Same digits behind different formatting.
	err = store.Create(ctx, testUser("other@example.com", "+1 (234) 567-890"))
	assert.ErrorIs(t, err, sentinel.ErrDuplicatePhone)
}

func TestPostgresStatusAndResults(t *testing.T) {
	store := newPostgresStore(t)
	ctx := context.Background()

	user := testUser("asha@example.com", "1234567890")
	require.NoError(t, store.Create(ctx, user))

	updated, err := store.UpdateStatus(ctx, user.ID, StatusRejected, "Blurred scan")
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, updated.Status)
	assert.Equal(t, "Blurred scan", updated.RejectionReason)

	updated, err = store.UpdateStatus(ctx, user.ID, StatusApproved, "")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, updated.Status)
	assert.Empty(t, updated.RejectionReason)

	updated, err = store.AppendResult(ctx, user.ID, ResultRecord{
		Name: "Entrance Exam", Institution: "Acme University", Date: time.Now().UTC(),
	})
	require.NoError(t, err)
	require.Len(t, updated.Results, 1)

	updated, err = store.AppendResult(ctx, user.ID, ResultRecord{
		Name: "Finals", Institution: "Acme University", Date: time.Now().UTC(),
	})
	require.NoError(t, err)
	require.Len(t, updated.Results, 2)
	assert.Equal(t, "Entrance Exam", updated.Results[0].Name)

	_, err = store.UpdateStatus(ctx, "missing", StatusApproved, "")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestPostgresLookupsAndListing(t *testing.T) {
	store := newPostgresStore(t)
	ctx := context.Background()

	first := testUser("a@example.com", "1111111111")
	second := testUser("b@example.com", "2222222222")
	second.CreatedAt = first.CreatedAt.Add(time.Second)
	require.NoError(t, store.Create(ctx, first))
	require.NoError(t, store.Create(ctx, second))

	found, err := store.FindByEmail(ctx, "A@EXAMPLE.COM")
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)

	all, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, first.ID, all[0].ID)

	_, err = store.UpdateStatus(ctx, second.ID, StatusApproved, "")
	require.NoError(t, err)

	pending, err := store.ListByStatus(ctx, StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, first.ID, pending[0].ID)
}

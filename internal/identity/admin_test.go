package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docgate/pkg/platform/sentinel"
)

func TestAdminPasswordHashing(t *testing.T) {
	admin := &Admin{ID: uuid.NewString(), Email: "root@example.com"}
	require.NoError(t, admin.SetPassword("hunter2"))

	assert.NotEqual(t, "hunter2", admin.PasswordHash)
	assert.True(t, admin.ComparePassword("hunter2"))
	assert.False(t, admin.ComparePassword("hunter3"))
	assert.False(t, admin.ComparePassword(""))
}

func TestInMemoryAdminStore(t *testing.T) {
	store := NewInMemoryAdminStore()
	ctx := context.Background()

	admin := &Admin{
		ID:        uuid.NewString(),
		Email:     "Root@Example.com",
		Name:      "Root",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, admin.SetPassword("hunter2"))
	require.NoError(t, store.Create(ctx, admin))

	found, err := store.FindByEmail(ctx, "root@EXAMPLE.com")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, found.ID)
	assert.True(t, found.ComparePassword("hunter2"))

	err = store.Create(ctx, &Admin{ID: uuid.NewString(), Email: "root@example.com"})
	assert.ErrorIs(t, err, sentinel.ErrDuplicateEmail)

	_, err = store.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

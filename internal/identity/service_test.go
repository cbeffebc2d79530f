package identity

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docgate/internal/audit"
	dErrors "docgate/pkg/domainerrors"
	"docgate/pkg/requestcontext"
)

func newTestService(t *testing.T) (*Service, *audit.Recorder, *audit.InMemoryStore) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	trail := audit.NewInMemoryStore()
	rec := audit.NewRecorder(trail, logger)
	svc := NewService(NewInMemoryStore(), logger, WithAudit(rec))
	return svc, rec, trail
}

func validRegistration() RegisterRequest {
	return RegisterRequest{
		FirstName:     "Asha",
		LastName:      "Patel",
		Email:         "Asha@Example.com",
		PhoneNumber:   "+1 (234) 567-8901",
		WorkingDomain: "education",
		Organization:  "Acme University",
	}
}

func TestRegisterCreatesPendingUser(t *testing.T) {
	svc, _, _ := newTestService(t)

	registered, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	assert.Equal(t, StatusPending, registered.Status)
	assert.Equal(t, "asha@example.com", registered.Email)
	assert.Equal(t, "Asha", registered.Name)
	assert.NotEmpty(t, registered.ID)

	user, err := svc.Get(context.Background(), registered.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, user.Status)
	assert.Empty(t, user.RejectionReason)
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	missing := validRegistration()
	missing.Organization = ""
	_, err := svc.Register(ctx, missing)
	assert.Equal(t, "Please fill in all fields", dErrors.MessageOf(err))

	badEmail := validRegistration()
	badEmail.Email = "not-an-email"
	_, err = svc.Register(ctx, badEmail)
	assert.Equal(t, "Please enter a valid email address", dErrors.MessageOf(err))

	shortPhone := validRegistration()
	shortPhone.PhoneNumber = "+1 (234) 567"
	_, err = svc.Register(ctx, shortPhone)
	assert.Equal(t, "Please enter a valid phone number (at least 10 digits)", dErrors.MessageOf(err))
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	// Same email, different casing and phone.
	dup := validRegistration()
	dup.Email = "ASHA@EXAMPLE.COM"
	dup.PhoneNumber = "9876543210"
	_, err = svc.Register(ctx, dup)
	assert.True(t, dErrors.Is(err, dErrors.CodeConflict))
	assert.Equal(t, "User with this email already registered", dErrors.MessageOf(err))

	// Same digits, different formatting and email.
	dup = validRegistration()
	dup.Email = "other@example.com"
	dup.PhoneNumber = "12345678901"
	_, err = svc.Register(ctx, dup)
	assert.True(t, dErrors.Is(err, dErrors.CodeConflict))
	assert.Equal(t, "User with this phone number already registered", dErrors.MessageOf(err))
}

func TestApproveClearsRejectionReason(t *testing.T) {
	svc, _, trail := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	rejected, err := svc.Reject(ctx, registered.ID, "Documents incomplete")
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, rejected.Status)
	assert.Equal(t, "Documents incomplete", rejected.RejectionReason)

	// Re-approval after rejection wipes the stored reason.
	approved, err := svc.Approve(ctx, registered.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, approved.Status)
	assert.Empty(t, approved.RejectionReason)

	user, err := svc.Get(ctx, registered.ID)
	require.NoError(t, err)
	assert.Empty(t, user.RejectionReason)

	// The trail keeps what the single reason field lost.
	history, err := trail.ListByUser(ctx, registered.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "rejected", history[0].To)
	assert.Equal(t, "Documents incomplete", history[0].Reason)
	assert.Equal(t, "approved", history[1].To)
}

func TestRejectRequiresReason(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	_, err = svc.Reject(ctx, registered.ID, "  ")
	assert.Equal(t, "User ID and rejection reason are required", dErrors.MessageOf(err))

	_, err = svc.Approve(ctx, "missing")
	assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))
	assert.Equal(t, "User not found", dErrors.MessageOf(err))
}

func TestListPendingExcludesDecided(t *testing.T) {
	svc, _, _ := newTestService(t)
	base := time.Now()

	var ids []string
	for i, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		req := validRegistration()
		req.Email = email
		req.PhoneNumber = "123456789" + string(rune('0'+i))
		ctx := requestcontext.WithTime(context.Background(), base.Add(time.Duration(i)*time.Second))
		registered, err := svc.Register(ctx, req)
		require.NoError(t, err)
		ids = append(ids, registered.ID)
	}

	_, err := svc.Approve(context.Background(), ids[1])
	require.NoError(t, err)

	pending, err := svc.ListPending(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "a@example.com", pending[0].Email)
	assert.Equal(t, "c@example.com", pending[1].Email)
}

func TestAppendAndFetchResults(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	results, err := svc.Results(ctx, registered.ID)
	require.NoError(t, err)
	assert.Empty(t, results)

	_, err = svc.AppendResult(ctx, registered.ID, "Entrance Exam", "")
	assert.Equal(t, "Missing fields", dErrors.MessageOf(err))

	user, err := svc.AppendResult(ctx, registered.ID, "Entrance Exam", "Acme University")
	require.NoError(t, err)
	require.Len(t, user.Results, 1)

	user, err = svc.AppendResult(ctx, registered.ID, "Finals", "Acme University")
	require.NoError(t, err)
	require.Len(t, user.Results, 2)
	assert.Equal(t, "Entrance Exam", user.Results[0].Name)
	assert.Equal(t, "Finals", user.Results[1].Name)
}

func TestProfilesAreRedacted(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	profiles, err := svc.Profiles(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "Asha", profiles[0].Name)
	assert.Equal(t, "asha@example.com", profiles[0].Email)

	profile, err := svc.ProfileByID(ctx, registered.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha", profile.Name)
	assert.Empty(t, profile.ID)
}

func TestGetByEmailIsCaseInsensitive(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	user, err := svc.GetByEmail(ctx, "ASHA@example.COM")
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", user.Email)
}

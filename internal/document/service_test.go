package document

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docgate/internal/identity"
	dErrors "docgate/pkg/domainerrors"
	"docgate/pkg/requestcontext"
)

type fakeBlobStore struct {
	saved    map[string]string
	deleted  []string
	failSave bool
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{saved: make(map[string]string)}
}

func (f *fakeBlobStore) Save(_ context.Context, key string, r io.Reader, _ string) error {
	if f.failSave {
		return errors.New("blob unavailable")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.saved[key] = string(data)
	return nil
}

func (f *fakeBlobStore) Delete(_ context.Context, key string) error {
	delete(f.saved, key)
	f.deleted = append(f.deleted, key)
	return nil
}

type fixture struct {
	svc   *Service
	store *InMemoryStore
	users *identity.InMemoryStore
	blobs *fakeBlobStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := identity.NewInMemoryStore()
	userSvc := identity.NewService(users, logger)
	store := NewInMemoryStore()
	blobs := newFakeBlobStore()
	return &fixture{
		svc:   NewService(store, userSvc, blobs, logger),
		store: store,
		users: users,
		blobs: blobs,
	}
}

func (f *fixture) seedUser(t *testing.T, id string, status identity.Status) {
	t.Helper()
	require.NoError(t, f.users.Create(context.Background(), &identity.User{
		ID:           id,
		FirstName:    "Ravi",
		LastName:     "Kumar",
		Email:        id + "@example.com",
		PhoneNumber:  "123456789" + id[1:],
		Organization: "Acme",
		Status:       status,
		CreatedAt:    time.Now(),
	}))
}

func uploadReq(name, docType string) UploadRequest {
	return UploadRequest{
		DocumentName: name,
		DocumentType: docType,
		File:         strings.NewReader("file-bytes"),
		FileName:     "passport.pdf",
		FileSize:     10,
		MimeType:     "application/pdf",
	}
}

func TestUploadCreatesPendingDocument(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "u1", identity.StatusApproved)

	summary, err := f.svc.Upload(context.Background(), "u1", uploadReq("My Passport", "passport"))
	require.NoError(t, err)

	assert.Equal(t, "My Passport", summary.DocumentName)
	assert.Equal(t, TypePassport, summary.DocumentType)
	assert.Equal(t, StatusPending, summary.VerificationStatus)

	doc, err := f.store.FindByID(context.Background(), summary.ID)
	require.NoError(t, err)
	assert.Equal(t, "u1", doc.UserID)
	assert.Contains(t, f.blobs.saved, doc.FilePath)
	assert.Equal(t, "file-bytes", f.blobs.saved[doc.FilePath])
}

func TestUploadRequiresApprovedAccount(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "u1", identity.StatusPending)
	f.seedUser(t, "u2", identity.StatusRejected)

	for _, id := range []string{"u1", "u2"} {
		_, err := f.svc.Upload(context.Background(), id, uploadReq("Doc", "other"))
		require.Error(t, err)
		assert.True(t, dErrors.Is(err, dErrors.CodeForbidden))
		assert.Equal(t, "Only approved users can upload documents", dErrors.MessageOf(err))
	}
	assert.Empty(t, f.blobs.saved)
}

func TestUploadValidation(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "u1", identity.StatusApproved)
	ctx := context.Background()

	_, err := f.svc.Upload(ctx, "u1", UploadRequest{DocumentType: "passport", File: strings.NewReader("x")})
	assert.Equal(t, "Document name and type are required", dErrors.MessageOf(err))

	_, err = f.svc.Upload(ctx, "u1", UploadRequest{DocumentName: "Doc", DocumentType: "selfie", File: strings.NewReader("x")})
	assert.Equal(t, "Invalid document type", dErrors.MessageOf(err))

	req := uploadReq("Doc", "degree")
	req.File = nil
	_, err = f.svc.Upload(ctx, "u1", req)
	assert.Equal(t, "No file uploaded", dErrors.MessageOf(err))

	_, err = f.svc.Upload(ctx, "missing", uploadReq("Doc", "degree"))
	assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))
}

func TestListOwnNewestFirstWithoutFilePath(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "u1", identity.StatusApproved)
	f.seedUser(t, "u2", identity.StatusApproved)
	base := time.Now()

	for i, name := range []string{"first", "second", "third"} {
		ctx := requestcontext.WithTime(context.Background(), base.Add(time.Duration(i)*time.Minute))
		_, err := f.svc.Upload(ctx, "u1", uploadReq(name, "certificate"))
		require.NoError(t, err)
	}
	_, err := f.svc.Upload(context.Background(), "u2", uploadReq("not-mine", "other"))
	require.NoError(t, err)

	docs, err := f.svc.ListOwn(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "third", docs[0].DocumentName)
	assert.Equal(t, "second", docs[1].DocumentName)
	assert.Equal(t, "first", docs[2].DocumentName)
}

func TestListAllJoinsUploaderProfile(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "u1", identity.StatusApproved)

	_, err := f.svc.Upload(context.Background(), "u1", uploadReq("Doc", "degree"))
	require.NoError(t, err)

	docs, err := f.svc.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.NotNil(t, docs[0].Uploader)
	assert.Equal(t, "Ravi", docs[0].Uploader.FirstName)
	assert.Equal(t, "u1@example.com", docs[0].Uploader.Email)
	assert.Empty(t, docs[0].FilePath)

	perUser, err := f.svc.ListForUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, perUser, 1)
	assert.NotEmpty(t, perUser[0].FilePath)
}

func TestUpdateVerificationDefaults(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "u1", identity.StatusApproved)
	summary, err := f.svc.Upload(context.Background(), "u1", uploadReq("Doc", "aadhar"))
	require.NoError(t, err)

	// Omitted status and confidence take the defaults.
	updated, err := f.svc.UpdateVerification(context.Background(), summary.ID, ScoringUpdate{Details: "looks genuine"})
	require.NoError(t, err)
	assert.Equal(t, StatusVerified, updated.VerificationStatus)
	assert.Equal(t, 0, updated.VerificationResult.Confidence)
	assert.Nil(t, updated.VerificationResult.IsFake)

	isFake := true
	confidence := 87
	updated, err = f.svc.UpdateVerification(context.Background(), summary.ID, ScoringUpdate{
		IsFake:             &isFake,
		Confidence:         &confidence,
		Details:            "template mismatch",
		VerificationStatus: StatusFake,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusFake, updated.VerificationStatus)
	require.NotNil(t, updated.VerificationResult.IsFake)
	assert.True(t, *updated.VerificationResult.IsFake)
	assert.Equal(t, 87, updated.VerificationResult.Confidence)

	_, err = f.svc.UpdateVerification(context.Background(), summary.ID, ScoringUpdate{VerificationStatus: "rejected"})
	assert.Equal(t, "Invalid verification status", dErrors.MessageOf(err))

	_, err = f.svc.UpdateVerification(context.Background(), "missing", ScoringUpdate{})
	assert.Equal(t, "Document not found", dErrors.MessageOf(err))
}

func TestReviewVerdictMapping(t *testing.T) {
	tests := []struct {
		verdict string
		status  VerificationStatus
	}{
		{VerdictApproved, StatusVerified},
		{VerdictRejected, StatusRejected},
		{VerdictNeedsMoreInfo, StatusRejected},
	}
	for _, tt := range tests {
		t.Run(tt.verdict, func(t *testing.T) {
			f := newFixture(t)
			f.seedUser(t, "u1", identity.StatusApproved)
			summary, err := f.svc.Upload(context.Background(), "u1", uploadReq("Doc", "degree"))
			require.NoError(t, err)

			now := time.Now()
			ctx := requestcontext.WithTime(context.Background(), now)
			reviewed, err := f.svc.Review(ctx, summary.ID, tt.verdict, "checked against registry")
			require.NoError(t, err)

			assert.Equal(t, tt.status, reviewed.VerificationStatus)
			// The verdict survives verbatim even when the status maps it away.
			assert.Equal(t, tt.verdict, reviewed.AdminReview.FinalVerdict)
			assert.Equal(t, "checked against registry", reviewed.AdminReview.AdminNotes)
			require.NotNil(t, reviewed.AdminReview.ReviewedAt)
			assert.Equal(t, now.Unix(), reviewed.AdminReview.ReviewedAt.Unix())
		})
	}
}

func TestReviewValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Review(context.Background(), "doc-1", "", "")
	assert.Equal(t, "Document ID and verdict are required", dErrors.MessageOf(err))

	_, err = f.svc.Review(context.Background(), "missing", VerdictApproved, "")
	assert.Equal(t, "Document not found", dErrors.MessageOf(err))
}

func TestDeleteIsOwnerOnly(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "u1", identity.StatusApproved)
	f.seedUser(t, "u2", identity.StatusApproved)
	ctx := context.Background()

	summary, err := f.svc.Upload(ctx, "u1", uploadReq("Doc", "passport"))
	require.NoError(t, err)

	err = f.svc.Delete(ctx, summary.ID, "u2")
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeForbidden))
	assert.Equal(t, "You can only delete your own documents", dErrors.MessageOf(err))

	// Deletion bypasses the state machine: a reviewed document still goes.
	_, err = f.svc.Review(ctx, summary.ID, VerdictApproved, "")
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, summary.ID, "u1"))
	_, err = f.store.FindByID(ctx, summary.ID)
	require.Error(t, err)
	assert.Empty(t, f.blobs.saved)

	err = f.svc.Delete(ctx, summary.ID, "u1")
	assert.Equal(t, "Document not found", dErrors.MessageOf(err))
}

func TestUploadBlobFailureLeavesNoRecord(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "u1", identity.StatusApproved)
	f.blobs.failSave = true

	_, err := f.svc.Upload(context.Background(), "u1", uploadReq("Doc", "other"))
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeInternal))

	docs, err := f.store.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, docs)
}

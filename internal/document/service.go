// Package document tracks uploaded artifacts through the verification state
// machine: pending, then scorer states, then a terminal admin verdict.
package document

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/google/uuid"

	"docgate/internal/blob"
	"docgate/internal/identity"
	"docgate/internal/platform/metrics"
	dErrors "docgate/pkg/domainerrors"
	"docgate/pkg/platform/sentinel"
	"docgate/pkg/requestcontext"
)

// UploadRequest carries one multipart upload. File is the single file
// field's stream.
type UploadRequest struct {
	DocumentName string
	DocumentType string
	File         io.Reader
	FileName     string
	FileSize     int64
	MimeType     string
}

// ScoringUpdate is what the external scorer (or an admin acting as one)
// writes. Nil pointers take the defaults: status verified, confidence 0.
type ScoringUpdate struct {
	IsFake             *bool
	Confidence         *int
	Details            string
	VerificationStatus VerificationStatus
}

// Service applies the verification lifecycle on top of a Store. Ownership is
// fixed at upload; only the owner deletes.
type Service struct {
	store   Store
	users   *identity.Service
	blobs   blob.Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(store Store, users *identity.Service, blobs blob.Store, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{store: store, users: users, blobs: blobs, logger: logger}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Upload stores the file and creates a pending document owned by userID.
// Only approved accounts may upload.
func (s *Service) Upload(ctx context.Context, userID string, req UploadRequest) (*Summary, error) {
	if req.DocumentName == "" || req.DocumentType == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "Document name and type are required")
	}
	if !Type(req.DocumentType).Valid() {
		return nil, dErrors.New(dErrors.CodeValidation, "Invalid document type")
	}
	if req.File == nil {
		return nil, dErrors.New(dErrors.CodeValidation, "No file uploaded")
	}

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Status != identity.StatusApproved {
		return nil, dErrors.New(dErrors.CodeForbidden, "Only approved users can upload documents")
	}

	now := requestcontext.Now(ctx)
	doc := &Document{
		ID:                 uuid.NewString(),
		UserID:             userID,
		DocumentName:       strings.TrimSpace(req.DocumentName),
		DocumentType:       Type(req.DocumentType),
		FilePath:           blobKey(userID, req.FileName),
		FileSize:           req.FileSize,
		MimeType:           req.MimeType,
		UploadDate:         now,
		VerificationStatus: StatusPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.blobs.Save(ctx, doc.FilePath, req.File, req.MimeType); err != nil {
		return nil, dErrors.Internal(err)
	}
	if err := s.store.Create(ctx, doc); err != nil {
		// The blob is orphaned on a store failure; remove it best effort.
		if cleanupErr := s.blobs.Delete(ctx, doc.FilePath); cleanupErr != nil {
			s.logger.ErrorContext(ctx, "orphaned blob cleanup failed", "key", doc.FilePath, "error", cleanupErr)
		}
		return nil, dErrors.Internal(err)
	}

	s.metrics.IncDocumentsUploaded()
	s.logger.InfoContext(ctx, "document uploaded", "document_id", doc.ID, "user_id", userID, "type", doc.DocumentType)

	return &Summary{
		ID:                 doc.ID,
		DocumentName:       doc.DocumentName,
		DocumentType:       doc.DocumentType,
		UploadDate:         doc.UploadDate,
		VerificationStatus: doc.VerificationStatus,
	}, nil
}

// ListOwn returns the caller's documents newest first, without the stored
// file path.
func (s *Service) ListOwn(ctx context.Context, userID string) ([]Owned, error) {
	docs, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, dErrors.Internal(err)
	}
	out := make([]Owned, 0, len(docs))
	for _, doc := range docs {
		out = append(out, ownedView(doc))
	}
	return out, nil
}

// ListAll returns every document with its uploader's profile, newest first.
func (s *Service) ListAll(ctx context.Context) ([]Reviewed, error) {
	docs, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, dErrors.Internal(err)
	}
	return s.withUploaders(ctx, docs, false), nil
}

// ListForUser is the admin view of one user's documents. Unlike the owner
// listing it includes the stored file path.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]Reviewed, error) {
	docs, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, dErrors.Internal(err)
	}
	return s.withUploaders(ctx, docs, true), nil
}

// UpdateVerification writes a scoring result. Status defaults to verified
// and confidence to 0 when the scorer omits them; re-applying the same
// update overwrites in place.
func (s *Service) UpdateVerification(ctx context.Context, documentID string, update ScoringUpdate) (*Reviewed, error) {
	if documentID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "Document ID is required")
	}
	status := update.VerificationStatus
	if status == "" {
		status = StatusVerified
	}
	if !ValidScoringStatus(status) {
		return nil, dErrors.New(dErrors.CodeValidation, "Invalid verification status")
	}
	result := VerificationResult{
		IsFake:  update.IsFake,
		Details: update.Details,
	}
	if update.Confidence != nil {
		result.Confidence = *update.Confidence
	}

	doc, err := s.store.UpdateVerification(ctx, documentID, status, result, requestcontext.Now(ctx))
	if err != nil {
		return nil, translateLookup(err)
	}

	s.metrics.IncDocumentsScored()
	s.logger.InfoContext(ctx, "document scored", "document_id", documentID, "status", status)

	view := reviewedView(doc, nil, true)
	return &view, nil
}

// Review writes the terminal admin verdict. The verdict string is stored
// verbatim; the status mapping is approved to verified, anything else to
// rejected.
func (s *Service) Review(ctx context.Context, documentID, finalVerdict, adminNotes string) (*Reviewed, error) {
	if documentID == "" || finalVerdict == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "Document ID and verdict are required")
	}
	status := StatusRejected
	if finalVerdict == VerdictApproved {
		status = StatusVerified
	}
	now := requestcontext.Now(ctx)
	review := AdminReview{
		ReviewedAt:   &now,
		AdminNotes:   adminNotes,
		FinalVerdict: finalVerdict,
	}

	doc, err := s.store.ApplyReview(ctx, documentID, status, review, now)
	if err != nil {
		return nil, translateLookup(err)
	}

	s.metrics.IncDocumentVerdict(finalVerdict)
	s.logger.InfoContext(ctx, "document reviewed", "document_id", documentID, "verdict", finalVerdict, "status", status)

	view := reviewedView(doc, s.uploaderOf(ctx, doc.UserID), true)
	return &view, nil
}

// Delete removes a document and its stored file. Only the owner may delete,
// in any verification state.
func (s *Service) Delete(ctx context.Context, documentID, callerID string) error {
	doc, err := s.store.FindByID(ctx, documentID)
	if err != nil {
		return translateLookup(err)
	}
	if doc.UserID != callerID {
		return dErrors.New(dErrors.CodeForbidden, "You can only delete your own documents")
	}
	if err := s.store.Delete(ctx, documentID); err != nil {
		return translateLookup(err)
	}
	// The record is gone; a leftover blob is a cleanup concern, not a
	// failure the owner can act on.
	if err := s.blobs.Delete(ctx, doc.FilePath); err != nil {
		s.logger.ErrorContext(ctx, "blob delete failed", "key", doc.FilePath, "error", err)
	}

	s.logger.InfoContext(ctx, "document deleted", "document_id", documentID, "user_id", callerID)
	return nil
}

func (s *Service) withUploaders(ctx context.Context, docs []*Document, includePath bool) []Reviewed {
	uploaders := make(map[string]*Uploader)
	out := make([]Reviewed, 0, len(docs))
	for _, doc := range docs {
		uploader, ok := uploaders[doc.UserID]
		if !ok {
			uploader = s.uploaderOf(ctx, doc.UserID)
			uploaders[doc.UserID] = uploader
		}
		out = append(out, reviewedView(doc, uploader, includePath))
	}
	return out
}

// uploaderOf resolves a profile for admin listings. A missing user yields a
// nil uploader rather than failing the listing.
func (s *Service) uploaderOf(ctx context.Context, userID string) *Uploader {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil
	}
	return &Uploader{
		ID:           user.ID,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Email:        user.Email,
		Organization: user.Organization,
	}
}

func ownedView(doc *Document) Owned {
	return Owned{
		ID:                 doc.ID,
		DocumentName:       doc.DocumentName,
		DocumentType:       doc.DocumentType,
		FileSize:           doc.FileSize,
		MimeType:           doc.MimeType,
		UploadDate:         doc.UploadDate,
		VerificationStatus: doc.VerificationStatus,
		VerificationResult: doc.VerificationResult,
		AdminReview:        doc.AdminReview,
	}
}

func reviewedView(doc *Document, uploader *Uploader, includePath bool) Reviewed {
	view := Reviewed{Owned: ownedView(doc), Uploader: uploader}
	if includePath {
		view.FilePath = doc.FilePath
	}
	return view
}

func blobKey(userID, fileName string) string {
	ext := path.Ext(fileName)
	return "uploads/" + userID + "/" + uuid.NewString() + ext
}

func translateLookup(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "Document not found")
	}
	return dErrors.Internal(err)
}

package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"docgate/internal/document"
	dErrors "docgate/pkg/domainerrors"
	"docgate/pkg/requestcontext"
)

// maxUploadBytes bounds one multipart upload.
const maxUploadBytes = 10 << 20

// DocumentHandler serves the /api/documents subtree.
type DocumentHandler struct {
	docs   *document.Service
	logger *slog.Logger
}

func NewDocumentHandler(docs *document.Service, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{docs: docs, logger: logger}
}

func (h *DocumentHandler) Routes(userGuard, adminGuard func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(adminGuard)
		r.Get("/admin/all-documents", h.handleAllDocuments)
		r.Get("/admin/user/{userId}", h.handleUserDocuments)
		r.Patch("/admin/verify/{documentId}", h.handleUpdateVerification)
		r.Patch("/admin/review/{documentId}", h.handleReview)
	})

	r.Group(func(r chi.Router) {
		r.Use(userGuard)
		r.Post("/upload", h.handleUpload)
		r.Get("/my-documents", h.handleMyDocuments)
		r.Delete("/{documentId}", h.handleDelete)
	})

	return r
}

func (h *DocumentHandler) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, r, h.logger, dErrors.New(dErrors.CodeValidation, "Invalid upload request"))
		return
	}

	req := document.UploadRequest{
		DocumentName: r.FormValue("documentName"),
		DocumentType: r.FormValue("documentType"),
	}
	file, header, err := r.FormFile("document")
	if err == nil {
		defer file.Close()
		req.File = file
		req.FileName = header.Filename
		req.FileSize = header.Size
		req.MimeType = header.Header.Get("Content-Type")
	}

	summary, uploadErr := h.docs.Upload(r.Context(), requestcontext.UserID(r.Context()), req)
	if uploadErr != nil {
		writeError(w, r, h.logger, uploadErr)
		return
	}
	respondOK(w, envelope{
		"message":  "Document uploaded successfully",
		"document": summary,
	})
}

func (h *DocumentHandler) handleMyDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.docs.ListOwn(r.Context(), requestcontext.UserID(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respondData(w, docs)
}

func (h *DocumentHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	err := h.docs.Delete(r.Context(), chi.URLParam(r, "documentId"), requestcontext.UserID(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respondOK(w, envelope{"message": "Document deleted successfully"})
}

func (h *DocumentHandler) handleAllDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.docs.ListAll(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respondData(w, docs)
}

func (h *DocumentHandler) handleUserDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.docs.ListForUser(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respondData(w, docs)
}

func (h *DocumentHandler) handleUpdateVerification(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IsFake             *bool  `json:"isFake"`
		Confidence         *int   `json:"confidence"`
		Details            string `json:"details"`
		VerificationStatus string `json:"verificationStatus"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	doc, err := h.docs.UpdateVerification(r.Context(), chi.URLParam(r, "documentId"), document.ScoringUpdate{
		IsFake:             req.IsFake,
		Confidence:         req.Confidence,
		Details:            req.Details,
		VerificationStatus: document.VerificationStatus(req.VerificationStatus),
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respondOK(w, envelope{
		"message":  "Document verification updated",
		"document": doc,
	})
}

func (h *DocumentHandler) handleReview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FinalVerdict string `json:"finalVerdict"`
		AdminNotes   string `json:"adminNotes"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	doc, err := h.docs.Review(r.Context(), chi.URLParam(r, "documentId"), req.FinalVerdict, req.AdminNotes)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respondOK(w, envelope{
		"message":  "Document reviewed successfully",
		"document": doc,
	})
}

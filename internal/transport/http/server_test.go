package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"docgate/internal/audit"
	"docgate/internal/blob"
	"docgate/internal/document"
	"docgate/internal/email"
	"docgate/internal/identity"
	"docgate/internal/otp"
	"docgate/internal/platform/middleware"
	"docgate/internal/token"
)

const testAdminCode = "admin@123"

type testServer struct {
	handler http.Handler
	users   *identity.Service
	docs    *document.Service
	tokens  *token.Issuer
}

type memoryBlobs struct {
	saved map[string][]byte
}

func (m *memoryBlobs) Save(_ context.Context, key string, r io.Reader, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.saved[key] = data
	return nil
}

func (m *memoryBlobs) Delete(_ context.Context, key string) error {
	delete(m.saved, key)
	return nil
}

var _ blob.Store = (*memoryBlobs)(nil)

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	trail := audit.NewRecorder(audit.NewInMemoryStore(), logger)
	users := identity.NewService(identity.NewInMemoryStore(), logger, identity.WithAudit(trail))
	otpSvc := otp.NewService(users, otp.NewInMemoryStore(), email.NoopSender{}, logger, otp.WithCodeExposure())
	docs := document.NewService(document.NewInMemoryStore(), users, &memoryBlobs{saved: map[string][]byte{}}, logger)

	tokens, err := token.New(token.Config{Secret: "test-secret"})
	require.NoError(t, err)

	handler := NewRouter(RouterConfig{
		Users:      NewUserHandler(users, otpSvc, tokens, trail, testAdminCode, logger),
		Documents:  NewDocumentHandler(docs, logger),
		UserGuard:  middleware.RequireUser(tokens, users, logger),
		AdminGuard: middleware.RequireAdmin(tokens, logger),
		Logger:     logger,
	})

	return &testServer{handler: handler, users: users, docs: docs, tokens: tokens}
}

func (s *testServer) do(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	var body map[string]any
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func (s *testServer) doJSON(t *testing.T, method, path string, payload any, bearer string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	return s.do(t, req)
}

// register creates an account and returns its id.
func (s *testServer) register(t *testing.T, email, phone string) string {
	t.Helper()
	rec, body := s.doJSON(t, http.MethodPost, "/api/users/register", map[string]string{
		"firstname":     "Asha",
		"lastname":      "Patel",
		"email":         email,
		"phoneNumber":   phone,
		"workingDomain": "education",
		"organization":  "Acme University",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	user := body["user"].(map[string]any)
	return user["id"].(string)
}

// adminToken authenticates with the shared code and returns the token.
func (s *testServer) adminToken(t *testing.T) string {
	t.Helper()
	rec, body := s.doJSON(t, http.MethodPost, "/api/users/admin/authenticate", map[string]string{
		"adminCode": testAdminCode,
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	return body["token"].(string)
}

// login approves nothing; it runs the OTP flow for an already approved user
// and returns the session token.
func (s *testServer) login(t *testing.T, email string) string {
	t.Helper()
	rec, body := s.doJSON(t, http.MethodPost, "/api/users/send-otp", map[string]string{"email": email}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	code := body["debugOtp"].(string)

	rec, body = s.doJSON(t, http.MethodPost, "/api/users/verify-otp", map[string]string{
		"email": email,
		"otp":   code,
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	return body["token"].(string)
}

// approve flips a user to approved through the admin endpoint.
func (s *testServer) approve(t *testing.T, userID string) {
	t.Helper()
	rec, _ := s.doJSON(t, http.MethodPost, "/api/users/admin/approve-user", map[string]string{
		"userId": userID,
	}, s.adminToken(t))
	require.Equal(t, http.StatusOK, rec.Code)
}

// uploadDocument posts a multipart upload and returns the response.
func (s *testServer) uploadDocument(t *testing.T, bearer, name, docType string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("documentName", name))
	require.NoError(t, mw.WriteField("documentType", docType))
	part, err := mw.CreateFormFile("document", "scan.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 fake"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/documents/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	return s.do(t, req)
}

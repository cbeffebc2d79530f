package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"docgate/internal/audit"
	"docgate/internal/identity"
	"docgate/internal/otp"
	"docgate/internal/token"
	dErrors "docgate/pkg/domainerrors"
	"docgate/pkg/requestcontext"
)

// UserHandler serves the /api/users subtree: registration, OTP login, the
// caller's own data, and the admin approval endpoints.
type UserHandler struct {
	users     *identity.Service
	otp       *otp.Service
	tokens    *token.Issuer
	audit     *audit.Recorder
	adminCode string
	logger    *slog.Logger
}

func NewUserHandler(users *identity.Service, otpSvc *otp.Service, tokens *token.Issuer, auditRec *audit.Recorder, adminCode string, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		users:     users,
		otp:       otpSvc,
		tokens:    tokens,
		audit:     auditRec,
		adminCode: adminCode,
		logger:    logger,
	}
}

// Routes mounts the subtree. The /{id} route is registered last so it cannot
// shadow the named routes.
func (h *UserHandler) Routes(userGuard, adminGuard func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/admin/authenticate", h.handleAdminAuthenticate)
	r.Group(func(r chi.Router) {
		r.Use(adminGuard)
		r.Get("/admin/pending-users", h.handlePendingUsers)
		r.Post("/admin/approve-user", h.handleApproveUser)
		r.Post("/admin/reject-user", h.handleRejectUser)
		r.Get("/admin/status-history/{userId}", h.handleStatusHistory)
	})

	r.Post("/register", h.handleRegister)
	r.Post("/send-otp", h.handleSendOTP)
	r.Post("/verify-otp", h.handleVerifyOTP)
	r.Post("/logout", h.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(userGuard)
		r.Get("/me", h.handleMe)
		r.Get("/results", h.handleFetchResults)
		r.Post("/results", h.handleAppendResult)
		r.Get("/", h.handleListUsers)
		r.Get("/{id}", h.handleGetUser)
	})

	return r
}

func (h *UserHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req identity.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	registered, err := h.users.Register(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respondOK(w, envelope{
		"message": "Registration successful! Your account is pending admin approval.",
		"user":    registered,
	})
}

func (h *UserHandler) handleSendOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	result, err := h.otp.Issue(r.Context(), req.Email)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	payload := envelope{
		"message":   result.Message,
		"otpSentTo": result.SentTo,
	}
	if result.DebugCode != "" {
		payload["debugOtp"] = result.DebugCode
	}
	respondOK(w, payload)
}

func (h *UserHandler) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	user, err := h.otp.Verify(r.Context(), req.Email, req.OTP)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	signed, expiresAt, err := h.tokens.IssueUser(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, h.logger, dErrors.Internal(err))
		return
	}
	setSessionCookie(w, UserCookieName, signed, expiresAt)
	respondOK(w, envelope{
		"token": signed,
		"user": envelope{
			"name":  user.DisplayName(),
			"email": user.Email,
		},
	})
}

func (h *UserHandler) handleLogout(w http.ResponseWriter, _ *http.Request) {
	clearSessionCookie(w, UserCookieName)
	respondOK(w, envelope{"message": "Logged out successfully"})
}

func (h *UserHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), requestcontext.UserID(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respondData(w, envelope{
		"name":  user.DisplayName(),
		"email": user.Email,
	})
}

func (h *UserHandler) handleFetchResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.users.Results(r.Context(), requestcontext.UserID(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respondData(w, results)
}

func (h *UserHandler) handleAppendResult(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Institution string `json:"institution"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	user, err := h.users.AppendResult(r.Context(), requestcontext.UserID(r.Context()), req.Name, req.Institution)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respondData(w, user)
}

func (h *UserHandler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.users.Profiles(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respondData(w, profiles)
}

func (h *UserHandler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	profile, err := h.users.ProfileByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respondData(w, envelope{
		"name":  profile.Name,
		"email": profile.Email,
	})
}

func (h *UserHandler) handleAdminAuthenticate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AdminCode string `json:"adminCode"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if req.AdminCode == "" {
		writeError(w, r, h.logger, dErrors.New(dErrors.CodeValidation, "Admin code is required"))
		return
	}
	if h.adminCode == "" || req.AdminCode != h.adminCode {
		writeError(w, r, h.logger, dErrors.New(dErrors.CodeUnauthorized, "Invalid admin code"))
		return
	}
	signed, expiresAt, err := h.tokens.IssueAdmin(r.Context())
	if err != nil {
		writeError(w, r, h.logger, dErrors.Internal(err))
		return
	}
	setSessionCookie(w, AdminCookieName, signed, expiresAt)
	respondOK(w, envelope{
		"message": "Admin authenticated successfully",
		"token":   signed,
	})
}

func (h *UserHandler) handlePendingUsers(w http.ResponseWriter, r *http.Request) {
	pending, err := h.users.ListPending(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respondData(w, pending)
}

func (h *UserHandler) handleApproveUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if req.UserID == "" {
		writeError(w, r, h.logger, dErrors.New(dErrors.CodeValidation, "User ID is required"))
		return
	}
	summary, err := h.users.Approve(r.Context(), req.UserID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respondOK(w, envelope{
		"message": "User approved successfully",
		"data":    summary,
	})
}

func (h *UserHandler) handleRejectUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
		Reason string `json:"reason"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if req.UserID == "" || req.Reason == "" {
		writeError(w, r, h.logger, dErrors.New(dErrors.CodeValidation, "User ID and rejection reason are required"))
		return
	}
	summary, err := h.users.Reject(r.Context(), req.UserID, req.Reason)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respondOK(w, envelope{
		"message": "User rejected successfully",
		"data":    summary,
	})
}

func (h *UserHandler) handleStatusHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.audit.History(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, r, h.logger, dErrors.Internal(err))
		return
	}
	respondData(w, history)
}

// Cookie names for the two token classes. The middleware package reads the
// same names.
const (
	UserCookieName  = "token"
	AdminCookieName = "adminToken"
)

// Cookies are cross-site-sendable because the frontend is served from a
// different origin. SameSite=None requires Secure.
func setSessionCookie(w http.ResponseWriter, name, value string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}

func clearSessionCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}

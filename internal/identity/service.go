// Package identity owns user records: registration with uniqueness
// enforcement, redacted read projections, and the admin approval workflow.
package identity

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"

	"docgate/internal/audit"
	"docgate/internal/platform/metrics"
	dErrors "docgate/pkg/domainerrors"
	"docgate/pkg/platform/sentinel"
	"docgate/pkg/requestcontext"
)

// minPhoneDigits is the minimum count of digits after stripping formatting.
const minPhoneDigits = 10

// RegisterRequest carries a registration candidate. All fields are required.
type RegisterRequest struct {
	FirstName     string `json:"firstname"`
	LastName      string `json:"lastname"`
	Email         string `json:"email"`
	PhoneNumber   string `json:"phoneNumber"`
	WorkingDomain string `json:"workingDomain"`
	Organization  string `json:"organization"`
}

// Service applies the account lifecycle rules on top of a Store.
type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	audit   *audit.Recorder
}

type Option func(*Service)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithAudit wires the append-only status-change trail.
func WithAudit(rec *audit.Recorder) Option {
	return func(s *Service) { s.audit = rec }
}

func NewService(store Store, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{store: store, logger: logger}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Register validates the candidate and persists a pending user. No token is
// issued on registration; access starts only after approval plus OTP login.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Registered, error) {
	if req.FirstName == "" || req.LastName == "" || req.Email == "" ||
		req.PhoneNumber == "" || req.WorkingDomain == "" || req.Organization == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "Please fill in all fields")
	}
	if !govalidator.IsEmail(req.Email) {
		return nil, dErrors.New(dErrors.CodeValidation, "Please enter a valid email address")
	}
	if len(PhoneDigits(req.PhoneNumber)) < minPhoneDigits {
		return nil, dErrors.New(dErrors.CodeValidation, "Please enter a valid phone number (at least 10 digits)")
	}

	user := &User{
		ID:            uuid.NewString(),
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		Email:         NormalizeEmail(req.Email),
		PhoneNumber:   strings.TrimSpace(req.PhoneNumber),
		Organization:  strings.TrimSpace(req.Organization),
		WorkingDomain: strings.TrimSpace(req.WorkingDomain),
		Status:        StatusPending,
		CreatedAt:     requestcontext.Now(ctx),
	}

	if err := s.store.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrDuplicateEmail):
			return nil, dErrors.New(dErrors.CodeConflict, "User with this email already registered")
		case errors.Is(err, sentinel.ErrDuplicatePhone):
			return nil, dErrors.New(dErrors.CodeConflict, "User with this phone number already registered")
		default:
			return nil, dErrors.Internal(err)
		}
	}

	s.metrics.IncUsersRegistered()
	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID)

	return &Registered{
		ID:     user.ID,
		Name:   user.FirstName,
		Email:  user.Email,
		Status: user.Status,
	}, nil
}

// Get returns the full user record for internal callers (guards, OTP flow).
func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, translateLookup(err)
	}
	return user, nil
}

// GetByEmail resolves a user for the OTP flow; the email is matched
// case-insensitively.
func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return nil, translateLookup(err)
	}
	return user, nil
}

// Profiles lists every user as a name/email projection.
func (s *Service) Profiles(ctx context.Context) ([]Profile, error) {
	users, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Internal(err)
	}
	out := make([]Profile, 0, len(users))
	for _, u := range users {
		out = append(out, Profile{ID: u.ID, Name: u.DisplayName(), Email: u.Email})
	}
	return out, nil
}

// ProfileByID returns one user's name/email projection.
func (s *Service) ProfileByID(ctx context.Context, id string) (*Profile, error) {
	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, translateLookup(err)
	}
	return &Profile{Name: user.DisplayName(), Email: user.Email}, nil
}

// AppendResult adds an entry to the caller's result history.
func (s *Service) AppendResult(ctx context.Context, userID, name, institution string) (*User, error) {
	if name == "" || institution == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "Missing fields")
	}
	record := ResultRecord{Name: name, Institution: institution, Date: requestcontext.Now(ctx)}
	user, err := s.store.AppendResult(ctx, userID, record)
	if err != nil {
		return nil, translateLookup(err)
	}
	return user, nil
}

// Results returns the caller's result history.
func (s *Service) Results(ctx context.Context, userID string) ([]ResultRecord, error) {
	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return nil, translateLookup(err)
	}
	if user.Results == nil {
		return []ResultRecord{}, nil
	}
	return user.Results, nil
}

// Approve moves a user to approved and clears any stored rejection reason,
// including on re-approval after a rejection.
func (s *Service) Approve(ctx context.Context, userID string) (*StatusSummary, error) {
	prev, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return nil, translateLookup(err)
	}
	user, err := s.store.UpdateStatus(ctx, userID, StatusApproved, "")
	if err != nil {
		return nil, translateLookup(err)
	}

	s.metrics.IncUsersApproved()
	s.audit.RecordStatusChange(ctx, audit.StatusChange{
		UserID: userID,
		From:   string(prev.Status),
		To:     string(StatusApproved),
		Actor:  "admin",
	})
	s.logger.InfoContext(ctx, "user approved", "user_id", userID)

	return statusSummary(user), nil
}

// Reject moves a user to rejected with a mandatory reason, stored verbatim.
func (s *Service) Reject(ctx context.Context, userID, reason string) (*StatusSummary, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "User ID and rejection reason are required")
	}
	prev, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return nil, translateLookup(err)
	}
	user, err := s.store.UpdateStatus(ctx, userID, StatusRejected, reason)
	if err != nil {
		return nil, translateLookup(err)
	}

	s.metrics.IncUsersRejected()
	s.audit.RecordStatusChange(ctx, audit.StatusChange{
		UserID: userID,
		From:   string(prev.Status),
		To:     string(StatusRejected),
		Reason: reason,
		Actor:  "admin",
	})
	s.logger.InfoContext(ctx, "user rejected", "user_id", userID)

	return statusSummary(user), nil
}

// ListPending returns all unapproved registrations for admin review.
func (s *Service) ListPending(ctx context.Context) ([]PendingUser, error) {
	users, err := s.store.ListByStatus(ctx, StatusPending)
	if err != nil {
		return nil, dErrors.Internal(err)
	}
	out := make([]PendingUser, 0, len(users))
	for _, u := range users {
		out = append(out, PendingUser{
			ID:            u.ID,
			FirstName:     u.FirstName,
			LastName:      u.LastName,
			Email:         u.Email,
			WorkingDomain: u.WorkingDomain,
			Organization:  u.Organization,
			Status:        u.Status,
			CreatedAt:     u.CreatedAt,
		})
	}
	return out, nil
}

func statusSummary(u *User) *StatusSummary {
	return &StatusSummary{
		ID:              u.ID,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Email:           u.Email,
		Status:          u.Status,
		RejectionReason: u.RejectionReason,
	}
}

func translateLookup(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "User not found")
	}
	return dErrors.Internal(err)
}

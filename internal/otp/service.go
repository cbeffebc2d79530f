// Package otp issues and verifies the one-time passcodes that gate user
// login. One challenge is outstanding per user at most; issuing overwrites
// it and verifying consumes it.
package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"docgate/internal/email"
	"docgate/internal/identity"
	"docgate/internal/platform/metrics"
	dErrors "docgate/pkg/domainerrors"
	"docgate/pkg/platform/sentinel"
	"docgate/pkg/requestcontext"
)

// Validity is how long an issued code stays usable.
const Validity = 5 * time.Minute

// IssueResult reports an issuance back to the caller. DebugCode is set only
// when the service runs with debug exposure enabled.
type IssueResult struct {
	Message   string
	SentTo    []string
	DebugCode string
}

// Service implements the per-user challenge lifecycle. Both issuance and
// verification apply the account-status gate first: pending and rejected
// accounts never reach code handling.
type Service struct {
	users   *identity.Service
	store   Store
	sender  email.Sender
	logger  *slog.Logger
	metrics *metrics.Metrics
	// exposeCode echoes the raw code in responses and logs. Only for
	// non-production deployments.
	exposeCode bool
}

type Option func(*Service)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithCodeExposure enables returning and logging raw codes. Never enable in
// production.
func WithCodeExposure() Option {
	return func(s *Service) { s.exposeCode = true }
}

func NewService(users *identity.Service, store Store, sender email.Sender, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{users: users, store: store, sender: sender, logger: logger}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Issue generates a fresh code for an approved user, delivers it when email
// is configured, and stores the challenge. Delivery being unconfigured is
// not an error; the result reports an empty SentTo instead.
func (s *Service) Issue(ctx context.Context, userEmail string) (*IssueResult, error) {
	if userEmail == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "Email is required")
	}
	user, err := s.users.GetByEmail(ctx, userEmail)
	if err != nil {
		return nil, err
	}
	if err := gateStatus(user, issueGate); err != nil {
		return nil, err
	}

	code, err := generateCode()
	if err != nil {
		return nil, dErrors.Internal(err)
	}

	sentTo := []string{}
	if s.sender.Enabled() {
		text := fmt.Sprintf("Your OTP code is %s", code)
		html := fmt.Sprintf("<p>Your OTP code is <strong>%s</strong></p>", code)
		if err := s.sender.Send(ctx, user.Email, "Your Login OTP", text, html); err != nil {
			s.logger.ErrorContext(ctx, "otp delivery failed", "user_id", user.ID, "error", err)
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Failed to process OTP")
		}
		sentTo = []string{"email"}
	}

	challenge := Challenge{
		Code:      code,
		ExpiresAt: requestcontext.Now(ctx).Add(Validity),
		SentTo:    sentTo,
	}
	if err := s.store.Put(ctx, user.ID, challenge); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Failed to process OTP")
	}

	s.metrics.IncOTPIssued()
	if s.exposeCode {
		s.logger.InfoContext(ctx, "otp issued", "user_id", user.ID, "email", user.Email, "code", code)
	} else {
		s.logger.InfoContext(ctx, "otp issued", "user_id", user.ID)
	}

	result := &IssueResult{SentTo: sentTo}
	if s.sender.Enabled() {
		result.Message = "OTP sent successfully"
	} else {
		result.Message = "OTP generated (email not configured)"
	}
	if s.exposeCode {
		result.DebugCode = code
	}
	return result, nil
}

// Verify checks the supplied code against the outstanding challenge and
// consumes it on success, returning the authenticated user so the caller can
// mint a session token. All code failures collapse into one message; a
// caller learns the code was wrong, not why.
func (s *Service) Verify(ctx context.Context, userEmail, code string) (*identity.User, error) {
	if userEmail == "" || code == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "Email and OTP are required")
	}
	user, err := s.users.GetByEmail(ctx, userEmail)
	if err != nil {
		return nil, err
	}
	if err := gateStatus(user, verifyGate); err != nil {
		return nil, err
	}

	challenge, err := s.store.Get(ctx, user.ID)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Internal(err)
	}
	// Exact string comparison; numeric coercion would break leading zeros.
	if challenge == nil || challenge.Code != code || requestcontext.Now(ctx).After(challenge.ExpiresAt) {
		s.metrics.IncOTPFailed()
		return nil, dErrors.New(dErrors.CodeValidation, "Invalid or expired OTP")
	}

	// Single use: the challenge goes away before the token is minted.
	if err := s.store.Delete(ctx, user.ID); err != nil {
		return nil, dErrors.Internal(err)
	}

	s.metrics.IncOTPVerified()
	s.logger.InfoContext(ctx, "otp verified", "user_id", user.ID)
	return user, nil
}

type gateVariant int

const (
	issueGate gateVariant = iota
	verifyGate
)

// gateStatus enforces the account-status gate. The two flows surface
// slightly different wording but identical policy, so a caller cannot infer
// more from one endpoint than the other.
func gateStatus(user *identity.User, variant gateVariant) error {
	switch user.Status {
	case identity.StatusPending:
		if variant == issueGate {
			return dErrors.New(dErrors.CodeForbidden, "Your account is pending admin approval. Please wait for confirmation email.")
		}
		return dErrors.New(dErrors.CodeForbidden, "Your account is pending admin approval. Please wait for confirmation.")
	case identity.StatusRejected:
		reason := user.RejectionReason
		if reason == "" {
			reason = "Not specified"
		}
		if variant == issueGate {
			return dErrors.Newf(dErrors.CodeForbidden, "Your account has been rejected by the admin. Reason: %s", reason)
		}
		return dErrors.Newf(dErrors.CodeForbidden, "Your account has been rejected. Reason: %s", reason)
	}
	return nil
}

// generateCode samples a 6-digit code uniformly from [100000, 999999].
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+100000), nil
}

// Package token mints and validates the two session token classes: user
// tokens bound to a user id and admin tokens bound to a role claim only.
// The classes are not interchangeable; each carries only its own claim.
package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"docgate/pkg/requestcontext"
)

const (
	// UserTTL keeps a logged-in user authenticated for four weeks; expiry
	// forces a fresh OTP login.
	UserTTL = 28 * 24 * time.Hour
	// AdminTTL is deliberately short; admins re-enter the shared code.
	AdminTTL = 4 * time.Hour

	RoleAdmin = "admin"
)

// devFallbackSecret keeps local setups working without configuration. A
// production deployment must configure a real secret; see New.
const devFallbackSecret = "docgate-dev-secret-do-not-use-in-production"

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrWrongAudience = errors.New("token class mismatch")
)

// Config controls signing. Production with an empty Secret is a startup
// error, never a silent fallback.
type Config struct {
	Secret     string
	Production bool
}

// Issuer signs and verifies HS256 session tokens.
type Issuer struct {
	secret []byte
}

func New(cfg Config) (*Issuer, error) {
	if cfg.Secret == "" {
		if cfg.Production {
			return nil, errors.New("token: signing secret required in production")
		}
		cfg.Secret = devFallbackSecret
	}
	return &Issuer{secret: []byte(cfg.Secret)}, nil
}

type userClaims struct {
	ID string `json:"id"`
	jwt.RegisteredClaims
}

type adminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// IssueUser mints a token bound to a user id, valid for UserTTL from the
// request clock. Returns the token and its expiry for the cookie.
func (i *Issuer) IssueUser(ctx context.Context, userID string) (string, time.Time, error) {
	now := requestcontext.Now(ctx)
	expiresAt := now.Add(UserTTL)
	claims := userClaims{
		ID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign user token: %w", err)
	}
	return signed, expiresAt, nil
}

// IssueAdmin mints a role-claim token. No admin identity is embedded; the
// token proves "is an admin", not which one.
func (i *Issuer) IssueAdmin(ctx context.Context) (string, time.Time, error) {
	now := requestcontext.Now(ctx)
	expiresAt := now.Add(AdminTTL)
	claims := adminClaims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign admin token: %w", err)
	}
	return signed, expiresAt, nil
}

// VerifyUser validates signature and expiry and returns the embedded user
// id. An admin token fails here: it has no id claim.
func (i *Issuer) VerifyUser(ctx context.Context, tokenString string) (string, error) {
	claims := &userClaims{}
	if err := i.parse(ctx, tokenString, claims); err != nil {
		return "", err
	}
	if claims.ID == "" {
		return "", ErrWrongAudience
	}
	return claims.ID, nil
}

// VerifyAdmin validates signature, expiry, and the admin role claim. A user
// token fails the role check.
func (i *Issuer) VerifyAdmin(ctx context.Context, tokenString string) error {
	claims := &adminClaims{}
	if err := i.parse(ctx, tokenString, claims); err != nil {
		return err
	}
	if claims.Role != RoleAdmin {
		return ErrWrongAudience
	}
	return nil
}

func (i *Issuer) parse(ctx context.Context, tokenString string, claims jwt.Claims) error {
	parsed, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return requestcontext.Now(ctx) }),
	)
	if err != nil || !parsed.Valid {
		return ErrInvalidToken
	}
	return nil
}

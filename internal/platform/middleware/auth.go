package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"docgate/internal/identity"
	"docgate/internal/token"
	"docgate/pkg/requestcontext"
)

// Cookie names for the two token classes.
const (
	UserCookie  = "token"
	AdminCookie = "adminToken"
)

// UserResolver re-checks that the token's subject still exists.
// *identity.Service satisfies it.
type UserResolver interface {
	Get(ctx context.Context, id string) (*identity.User, error)
}

// RequireUser admits requests carrying a valid user token, from the cookie
// or an Authorization header, and puts the user id on the context. Every
// failure collapses into one message so callers cannot probe which check
// tripped.
func RequireUser(issuer *token.Issuer, users UserResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			raw := extractToken(r, UserCookie)
			if raw == "" {
				writeEnvelope(w, http.StatusUnauthorized, "Please authenticate")
				return
			}
			userID, err := issuer.VerifyUser(ctx, raw)
			if err != nil {
				logger.WarnContext(ctx, "user auth failed", "error", err, "request_id", requestcontext.RequestID(ctx))
				writeEnvelope(w, http.StatusUnauthorized, "Please authenticate")
				return
			}
			if _, err := users.Get(ctx, userID); err != nil {
				logger.WarnContext(ctx, "user auth failed, unknown subject", "user_id", userID, "request_id", requestcontext.RequestID(ctx))
				writeEnvelope(w, http.StatusUnauthorized, "Please authenticate")
				return
			}
			next.ServeHTTP(w, r.WithContext(requestcontext.WithUserID(ctx, userID)))
		})
	}
}

// RequireAdmin admits requests carrying a valid admin role token. No admin
// identity is attached; the guard authorizes "is an admin".
func RequireAdmin(issuer *token.Issuer, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			raw := extractToken(r, AdminCookie)
			if raw == "" {
				writeEnvelope(w, http.StatusUnauthorized, "Admin token not provided")
				return
			}
			if err := issuer.VerifyAdmin(ctx, raw); err != nil {
				logger.WarnContext(ctx, "admin auth failed", "error", err, "request_id", requestcontext.RequestID(ctx))
				if errors.Is(err, token.ErrWrongAudience) {
					writeEnvelope(w, http.StatusForbidden, "Not authorized as admin")
					return
				}
				writeEnvelope(w, http.StatusUnauthorized, "Invalid or expired admin token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractToken prefers the cookie and falls back to a bearer header.
func extractToken(r *http.Request, cookieName string) string {
	if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return after
	}
	return ""
}

func writeEnvelope(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": message,
	})
}

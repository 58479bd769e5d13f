package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	sessiondomain "club-pass-go/internal/domain/session"
	"club-pass-go/pkg/logger"
)

type TokenResolver interface {
	Resolve(ctx context.Context, token string) (*sessiondomain.Identity, error)
}

type Identity struct {
	MemberNumber string
	Role         string
	Token        string
}

type SessionAuth struct {
	sessions TokenResolver
	log      logger.Logger
}

type contextKey int

const identityKey contextKey = iota

func NewSessionAuth(sessions TokenResolver, log logger.Logger) *SessionAuth {
	return &SessionAuth{sessions: sessions, log: log}
}

func (a *SessionAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
			return
		}

		resolved, err := a.sessions.Resolve(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, sessiondomain.ErrTokenExpired):
				writeError(w, http.StatusUnauthorized, "token_expired", "token expired")
			case errors.Is(err, sessiondomain.ErrTokenInvalid):
				writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
			default:
				a.log.InternalError("auth: resolve token failed", err)
				writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
			}
			return
		}

		identity := Identity{
			MemberNumber: resolved.MemberNumber,
			Role:         resolved.Role,
			Token:        token,
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

// RequireAdmin guards admin-only routes; it assumes Middleware already ran.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
			return
		}
		if identity.Role != "admin" {
			writeError(w, http.StatusForbidden, "admin_required", "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	if !ok || identity.MemberNumber == "" {
		return Identity{}, false
	}
	return identity, true
}

func bearerToken(value string) (string, bool) {
	parts := strings.Fields(value)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

// Package middleware provides HTTP middlewares for session resolution and
// logging.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/atinyakov/GolfClubAuctions/internal/models"
	"github.com/atinyakov/GolfClubAuctions/internal/session"
	"go.uber.org/zap"
)

// CookieName is the cookie carrying the session token.
const CookieName = "session"

type ctxKey string

const tokenKey ctxKey = "token"

// Resolver turns a session token into an identity.
type Resolver interface {
	Resolve(ctx context.Context, token string) (*models.Identity, error)
}

// TokenFromRequest returns the bearer token, or the session cookie when no
// Authorization header is present.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

// SessionAuth creates a session holder for every request and resolves the
// request's credential into it. Requests without a valid credential carry an
// Absent session; they are never rejected here.
func SessionAuth(resolver Resolver, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			holder := session.NewHolder()
			token := TokenFromRequest(r)

			switch {
			case token == "":
				holder.Clear()
			default:
				id, err := resolver.Resolve(r.Context(), token)
				if err != nil {
					holder.Clear()
					if !errors.Is(err, models.ErrUnauthenticated) {
						// The credential may still be valid; keep the cookie.
						log.Warn("failed to resolve session", zap.Error(err))
						break
					}
					if r.Header.Get("Authorization") == "" {
						ClearSessionCookie(w)
					}
					break
				}
				holder.Set(*id)
			}

			ctx := session.WithHolder(r.Context(), holder)
			if holder.Current().SignedIn() {
				ctx = context.WithValue(ctx, tokenKey, token)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession rejects requests without a signed-in identity with 401.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !SessionFrom(r).SignedIn() {
			http.Error(w, models.ErrUnauthenticated.Error(), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SessionFrom returns the request's session snapshot.
func SessionFrom(r *http.Request) session.Session {
	return session.Current(r.Context())
}

// IdentityFrom returns the signed-in identity, or nil.
func IdentityFrom(r *http.Request) *models.Identity {
	s := SessionFrom(r)
	if !s.SignedIn() {
		return nil
	}
	return s.Identity
}

// TokenFromContext returns the verified token of the request, or "".
func TokenFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(tokenKey).(string); ok {
		return s
	}
	return ""
}

// SetSessionCookie stores token in an HttpOnly cookie.
func SetSessionCookie(w http.ResponseWriter, token string, maxAge int, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

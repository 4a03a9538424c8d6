package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"chatsql_backend/internal/common"
	"chatsql_backend/internal/common/security"
	"chatsql_backend/internal/platform/session"

	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const SessionCtxKey contextKey = "session"

// SessionCookie writes the cookie carrying the signed session token.
type SessionCookie struct {
	TTL    time.Duration
	Secure bool
}

func (c SessionCookie) Set(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     security.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(c.TTL.Seconds()),
		Expires:  time.Now().Add(c.TTL),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c SessionCookie) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     security.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Sessions resolves the session named by the cookie or a Bearer token and
// stores it in the request context. Requests without a valid session pass
// through anonymously. A live session has its ttl and cookie refreshed.
func Sessions(store session.Store, cookie SessionCookie) func(http.Handler) http.Handler {
	verify := jwtauth.Verify(security.TokenAuth, jwtauth.TokenFromHeader, security.TokenFromSessionCookie)
	return func(next http.Handler) http.Handler {
		return verify(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			if err != nil || token == nil {
				next.ServeHTTP(w, r)
				return
			}
			sid, err := security.GetSessionIDFromClaims(claims)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			sess, err := store.Get(r.Context(), sid)
			if err != nil {
				if errors.Is(err, session.ErrNotFound) {
					next.ServeHTTP(w, r)
					return
				}
				common.RespondWithServiceError(w, err)
				return
			}

			if err := store.Touch(r.Context(), sid, cookie.TTL); err != nil {
				common.Logger().Warn("session: failed to refresh ttl", "error", err)
			}
			if raw := security.TokenFromSessionCookie(r); raw != "" {
				cookie.Set(w, raw)
			}

			ctx := context.WithValue(r.Context(), SessionCtxKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		}))
	}
}

// InstructorCheck reports whether userID currently holds the instructor role.
type InstructorCheck func(ctx context.Context, userID int64) (bool, error)

// InstructorOnly rejects callers that are not instructors with 403.
func InstructorOnly(check InstructorCheck) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, err := check(r.Context(), UserIDFromContext(r.Context()))
			if err != nil {
				common.RespondWithServiceError(w, err)
				return
			}
			if !ok {
				common.RespondWithError(w, http.StatusForbidden, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SessionFromContext returns nil for anonymous requests.
func SessionFromContext(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(SessionCtxKey).(*session.Session)
	return sess
}

// UserIDFromContext returns 0 for anonymous requests.
func UserIDFromContext(ctx context.Context) int64 {
	if sess := SessionFromContext(ctx); sess != nil {
		return sess.UserID
	}
	return 0
}

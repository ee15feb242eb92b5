package middlewares

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/taskhub/internal/auth"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// SessionCookie is the name of the cookie carrying the signed session.
const SessionCookie = "session"

// Keep these interfaces small so tests can fake them easily.
type SessionVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type IdentityLoader interface {
	Get(ctx context.Context, id int64) (user.User, error)
}

type AuthMiddleware struct {
	sessions SessionVerifier
	revoked  RevocationChecker
	users    IdentityLoader
}

func NewAuthMiddleware(sessions SessionVerifier, revoked RevocationChecker, users IdentityLoader) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions, revoked: revoked, users: users}
}

// RequireAuth resolves the session cookie into the current user record. The
// record is reloaded on every request, so role and existence are always
// current.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(SessionCookie)
		if err != nil || raw == "" {
			abortError(c, http.StatusUnauthorized, "unauthorized", "Not authenticated")
			return
		}

		claims, err := m.sessions.Verify(raw)
		if err != nil {
			abortError(c, http.StatusUnauthorized, "unauthorized", "Invalid or expired session")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		revoked, err := m.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			slog.ErrorContext(ctx, "session revocation check failed", "err", err)
			abortError(c, http.StatusInternalServerError, "internal_error", "Could not verify session")
			return
		}
		if revoked {
			abortError(c, http.StatusUnauthorized, "unauthorized", "Session has ended")
			return
		}

		id, err := claims.UserID()
		if err != nil {
			abortError(c, http.StatusUnauthorized, "unauthorized", "Invalid or expired session")
			return
		}

		u, err := m.users.Get(ctx, id)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				abortError(c, http.StatusUnauthorized, "unauthorized", "Session user no longer exists")
				return
			}
			slog.ErrorContext(ctx, "session user lookup failed", "err", err, "user_id", id)
			abortError(c, http.StatusInternalServerError, "internal_error", "Could not verify session")
			return
		}

		c.Set(CtxUser, u)
		c.Set(CtxSession, claims)

		c.Next()
	}
}

func UserFromContext(c *gin.Context) (user.User, bool) {
	v, ok := c.Get(CtxUser)
	if !ok {
		return user.User{}, false
	}
	u, ok := v.(user.User)
	return u, ok
}

func SessionFromContext(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(CtxSession)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

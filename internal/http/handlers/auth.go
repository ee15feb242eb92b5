package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/taskhub/internal/auth"
	"github.com/geocoder89/taskhub/internal/config"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/geocoder89/taskhub/internal/service"
	"github.com/gin-gonic/gin"
)

type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (user.User, error)
}

type SessionIssuer interface {
	Issue(u user.User) (string, *auth.Claims, error)
	Verify(token string) (*auth.Claims, error)
}

type SessionRevoker interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
}

// LoginObserver counts login outcomes. *observability.Prom satisfies it.
type LoginObserver interface {
	ObserveLogin(result string)
}

type AuthHandler struct {
	users    Authenticator
	sessions SessionIssuer
	revoker  SessionRevoker
	obs      LoginObserver
	secure   bool
}

func NewAuthHandler(users Authenticator, sessions SessionIssuer, revoker SessionRevoker, obs LoginObserver, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		users:    users,
		sessions: sessions,
		revoker:  revoker,
		obs:      obs,
		secure:   secureCookie,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) observe(result string) {
	if h.obs != nil {
		h.obs.ObserveLogin(result)
	}
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest
	if !BindJSON(ctx, &req) {
		return
	}

	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	u, err := h.users.Authenticate(cctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.observe("invalid")
			RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
			return
		}
		h.observe("error")
		RespondErr(ctx, err, "Could not log in")
		return
	}

	raw, claims, err := h.sessions.Issue(u)
	if err != nil {
		h.observe("error")
		RespondErr(ctx, err, "Could not create session")
		return
	}

	h.setSessionCookie(ctx, raw, claims.ExpiresAt.Time)
	h.observe("ok")

	slog.InfoContext(ctx.Request.Context(), "user logged in", "user_id", u.ID, "role", string(u.Role))

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    u.Summary(),
	})
}

// Logout always succeeds. A valid session is revoked until its expiry.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	raw, err := ctx.Cookie(middlewares.SessionCookie)
	if err == nil && raw != "" {
		if claims, err := h.sessions.Verify(raw); err == nil {
			cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
			defer cancel()

			if err := h.revoker.Revoke(cctx, claims.ID, claims.ExpiresAt.Time); err != nil {
				slog.WarnContext(cctx, "session revoke failed", "err", err)
			}
		}
	}

	h.clearSessionCookie(ctx)
	ctx.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (h *AuthHandler) Me(ctx *gin.Context) {
	u, ok := currentUser(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, u.Summary())
}

func (h *AuthHandler) setSessionCookie(ctx *gin.Context, raw string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())

	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(
		middlewares.SessionCookie,
		raw,
		maxAge,
		"/",
		"",
		h.secure,
		true, // HttpOnly.
	)
}

func (h *AuthHandler) clearSessionCookie(ctx *gin.Context) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(
		middlewares.SessionCookie,
		"",
		-1,
		"/",
		"",
		h.secure,
		true,
	)
}

package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/taskhub/internal/config"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type UsersService interface {
	List(ctx context.Context, actor user.User) ([]user.User, error)
	Create(ctx context.Context, actor user.User, req user.CreateUserRequest) (user.User, error)
}

type UsersHandler struct {
	svc UsersService
}

func NewUsersHandler(svc UsersService) *UsersHandler {
	return &UsersHandler{svc: svc}
}

func (h *UsersHandler) ListUsers(ctx *gin.Context) {
	u, ok := currentUser(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	users, err := h.svc.List(cctx, u)
	if err != nil {
		RespondErr(ctx, err, "Could not list users")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, users)
}

func (h *UsersHandler) CreateUser(ctx *gin.Context) {
	u, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req user.CreateUserRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	created, err := h.svc.Create(cctx, u, req)
	if err != nil {
		RespondErr(ctx, err, "Could not create user")
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

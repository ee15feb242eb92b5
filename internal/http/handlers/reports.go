package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/taskhub/internal/config"
	"github.com/geocoder89/taskhub/internal/domain/report"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type ReportsService interface {
	General(ctx context.Context, actor user.User) (report.GeneralMetrics, error)
	Project(ctx context.Context, actor user.User, id int64) (report.ProjectMetrics, error)
	User(ctx context.Context, actor user.User, userID int64) (report.UserMetrics, error)
}

type ReportsHandler struct {
	svc ReportsService
}

func NewReportsHandler(svc ReportsService) *ReportsHandler {
	return &ReportsHandler{svc: svc}
}

func (h *ReportsHandler) General(ctx *gin.Context) {
	u, ok := currentUser(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 5*time.Second)
	defer cancel()

	m, err := h.svc.General(cctx, u)
	if err != nil {
		RespondErr(ctx, err, "Could not compute report")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, m)
}

func (h *ReportsHandler) Project(ctx *gin.Context) {
	u, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 5*time.Second)
	defer cancel()

	m, err := h.svc.Project(cctx, u, id)
	if err != nil {
		RespondErr(ctx, err, "Could not compute report")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, m)
}

func (h *ReportsHandler) User(ctx *gin.Context) {
	u, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 5*time.Second)
	defer cancel()

	m, err := h.svc.User(cctx, u, id)
	if err != nil {
		RespondErr(ctx, err, "Could not compute report")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, m)
}

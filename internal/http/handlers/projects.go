package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/taskhub/internal/config"
	"github.com/geocoder89/taskhub/internal/domain/project"
	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type ProjectsService interface {
	List(ctx context.Context, actor user.User) ([]project.Project, error)
	Get(ctx context.Context, actor user.User, id int64) (project.WithProgress, error)
	Create(ctx context.Context, actor user.User, req project.CreateProjectRequest) (project.Project, error)
	Update(ctx context.Context, actor user.User, id int64, p project.Patch) (project.Project, error)
	Board(ctx context.Context, actor user.User, id int64) (task.Board, error)
}

type ProjectsHandler struct {
	svc ProjectsService
}

func NewProjectsHandler(svc ProjectsService) *ProjectsHandler {
	return &ProjectsHandler{svc: svc}
}

func (h *ProjectsHandler) ListProjects(ctx *gin.Context) {
	u, ok := currentUser(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	projects, err := h.svc.List(cctx, u)
	if err != nil {
		RespondErr(ctx, err, "Could not list projects")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, projects)
}

func (h *ProjectsHandler) GetProject(ctx *gin.Context) {
	u, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	p, err := h.svc.Get(cctx, u, id)
	if err != nil {
		RespondErr(ctx, err, "Could not fetch project")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, p)
}

func (h *ProjectsHandler) CreateProject(ctx *gin.Context) {
	u, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req project.CreateProjectRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	p, err := h.svc.Create(cctx, u, req)
	if err != nil {
		RespondErr(ctx, err, "Could not create project")
		return
	}

	ctx.JSON(http.StatusCreated, p)
}

func (h *ProjectsHandler) UpdateProject(ctx *gin.Context) {
	u, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req project.Patch
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	p, err := h.svc.Update(cctx, u, id, req)
	if err != nil {
		RespondErr(ctx, err, "Could not update project")
		return
	}

	ctx.JSON(http.StatusOK, p)
}

func (h *ProjectsHandler) GetBoard(ctx *gin.Context) {
	u, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	board, err := h.svc.Board(cctx, u, id)
	if err != nil {
		RespondErr(ctx, err, "Could not load board")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, board)
}

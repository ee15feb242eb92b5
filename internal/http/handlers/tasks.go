package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/geocoder89/taskhub/internal/config"
	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/service"
	"github.com/gin-gonic/gin"
)

type TasksService interface {
	List(ctx context.Context, actor user.User, q service.ListQuery) ([]task.Task, error)
	Get(ctx context.Context, actor user.User, id int64) (task.Task, error)
	Create(ctx context.Context, actor user.User, req task.CreateTaskRequest) (task.Task, error)
	Update(ctx context.Context, actor user.User, id int64, p task.Patch) (task.Task, error)
}

// StatusObserver counts status writes. *observability.Prom satisfies it.
type StatusObserver interface {
	ObserveStatusChange(status string)
}

type TasksHandler struct {
	svc TasksService
	obs StatusObserver
}

func NewTasksHandler(svc TasksService, obs StatusObserver) *TasksHandler {
	return &TasksHandler{svc: svc, obs: obs}
}

// parseListQuery reads proyecto_id and estado. It answers 400 itself.
func parseListQuery(ctx *gin.Context) (service.ListQuery, bool) {
	var q service.ListQuery

	if raw := ctx.Query("proyecto_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			RespondBadRequest(ctx, "Invalid proyecto_id", gin.H{"field": "proyecto_id", "rule": "positive_integer"})
			return q, false
		}
		q.ProjectID = &id
	}

	if raw := ctx.Query("estado"); raw != "" {
		st, err := task.ParseStatus(raw)
		if err != nil {
			RespondErr(ctx, err, "Invalid estado")
			return q, false
		}
		q.Status = &st
	}

	return q, true
}

func (h *TasksHandler) ListTasks(ctx *gin.Context) {
	u, ok := currentUser(ctx)
	if !ok {
		return
	}
	q, ok := parseListQuery(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	tasks, err := h.svc.List(cctx, u, q)
	if err != nil {
		RespondErr(ctx, err, "Could not list tasks")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, tasks)
}

func (h *TasksHandler) GetTask(ctx *gin.Context) {
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

	t, err := h.svc.Get(cctx, u, id)
	if err != nil {
		RespondErr(ctx, err, "Could not fetch task")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, t)
}

func (h *TasksHandler) CreateTask(ctx *gin.Context) {
	u, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req task.CreateTaskRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	t, err := h.svc.Create(cctx, u, req)
	if err != nil {
		RespondErr(ctx, err, "Could not create task")
		return
	}

	ctx.JSON(http.StatusCreated, t)
}

func (h *TasksHandler) UpdateTask(ctx *gin.Context) {
	u, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req task.Patch
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	t, err := h.svc.Update(cctx, u, id, req)
	if err != nil {
		RespondErr(ctx, err, "Could not update task")
		return
	}

	if h.obs != nil && req.Status.Has() && t.Status == req.Status.Value {
		h.obs.ObserveStatusChange(string(t.Status))
	}

	ctx.JSON(http.StatusOK, t)
}

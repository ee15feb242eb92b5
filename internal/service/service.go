// Package service holds the use cases behind the HTTP endpoints. Every call
// takes the acting user explicitly and applies the per-resource checks from
// authz on top of the endpoint role gate.
package service

import (
	"context"
	"time"

	"github.com/geocoder89/taskhub/internal/apperr"
	"github.com/geocoder89/taskhub/internal/authz"
	"github.com/geocoder89/taskhub/internal/domain/project"
	"github.com/geocoder89/taskhub/internal/domain/report"
	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
)

type UserStore interface {
	Create(ctx context.Context, name, email, passwordHash string, role user.Role) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id int64) (user.User, error)
	Exists(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context) ([]user.User, error)
}

type ProjectStore interface {
	Create(ctx context.Context, np project.NewProject) (project.Project, error)
	GetByID(ctx context.Context, id int64) (project.Project, error)
	List(ctx context.Context, filter project.ListFilter) ([]project.Project, error)
	Update(ctx context.Context, id int64, p project.Patch) (project.Project, error)
	Count(ctx context.Context) (int, error)
}

type TaskStore interface {
	Create(ctx context.Context, nt task.NewTask) (task.Task, error)
	GetByID(ctx context.Context, id int64) (task.Task, error)
	List(ctx context.Context, filter task.ListFilter) ([]task.Task, error)
	UpdateFields(ctx context.Context, id int64, p task.Patch, now time.Time) (task.Task, error)
	SetStatus(ctx context.Context, id int64, status task.Status, now time.Time) (task.Task, error)
	IsAssignedInProject(ctx context.Context, projectID, userID int64) (bool, error)
	ProgressCounts(ctx context.Context, projectID int64) (done, total int, err error)
}

type ReportStore interface {
	TaskCounts(ctx context.Context, scope report.Scope, today string) (report.TaskCounts, error)
}

var (
	errAdminOnly    = apperr.Forbidden("Administrator role required")
	errManagerOnly  = apperr.Forbidden("Administrator or Manager role required")
	errNoProject    = apperr.Forbidden("You do not have access to this project")
	errNoTask       = apperr.Forbidden("You do not have access to this task")
	errNoUserReport = apperr.Forbidden("You can only view your own report")
)

// projectGate resolves a project and then checks access, in that order.
type projectGate struct {
	projects ProjectStore
	engine   *authz.Engine
}

func (g projectGate) load(ctx context.Context, actor user.User, id int64) (project.Project, error) {
	p, err := g.projects.GetByID(ctx, id)
	if err != nil {
		return project.Project{}, err
	}

	ok, err := g.engine.CanAccessProject(ctx, actor, &p)
	if err != nil {
		return project.Project{}, err
	}
	if !ok {
		return project.Project{}, errNoProject
	}
	return p, nil
}

func clock(now func() time.Time) func() time.Time {
	if now == nil {
		return time.Now
	}
	return now
}

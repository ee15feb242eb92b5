package service

import (
	"context"
	"strings"
	"time"

	"github.com/geocoder89/taskhub/internal/authz"
	"github.com/geocoder89/taskhub/internal/domain/project"
	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
)

type ProjectService struct {
	gate  projectGate
	tasks TaskStore
	users UserStore
	now   func() time.Time
}

func NewProjectService(projects ProjectStore, tasks TaskStore, users UserStore, engine *authz.Engine, now func() time.Time) *ProjectService {
	return &ProjectService{
		gate:  projectGate{projects: projects, engine: engine},
		tasks: tasks,
		users: users,
		now:   clock(now),
	}
}

// List returns the projects visible to actor, newest first.
func (s *ProjectService) List(ctx context.Context, actor user.User) ([]project.Project, error) {
	var filter project.ListFilter

	switch actor.Role {
	case user.RoleAdministrator:
	case user.RoleManager:
		filter.OwnerID = &actor.ID
	case user.RoleCollaborator:
		filter.AssigneeID = &actor.ID
	default:
		return []project.Project{}, nil
	}

	return s.gate.projects.List(ctx, filter)
}

func (s *ProjectService) Get(ctx context.Context, actor user.User, id int64) (project.WithProgress, error) {
	p, err := s.gate.load(ctx, actor, id)
	if err != nil {
		return project.WithProgress{}, err
	}

	done, total, err := s.tasks.ProgressCounts(ctx, p.ID)
	if err != nil {
		return project.WithProgress{}, err
	}

	return project.WithProgress{Project: p, Progress: task.ComputeProgress(done, total)}, nil
}

// Create registers a project. Managers always own what they create;
// Administrators may name another owner.
func (s *ProjectService) Create(ctx context.Context, actor user.User, req project.CreateProjectRequest) (project.Project, error) {
	if !authz.CanCreateIn(actor.Role) {
		return project.Project{}, errManagerOnly
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return project.Project{}, project.ErrMissingName
	}
	if err := req.Validate(); err != nil {
		return project.Project{}, err
	}

	ownerID := actor.ID
	if actor.IsAdmin() && req.OwnerID != nil && *req.OwnerID != actor.ID {
		ok, err := s.users.Exists(ctx, *req.OwnerID)
		if err != nil {
			return project.Project{}, err
		}
		if !ok {
			return project.Project{}, project.ErrOwnerNotFound
		}
		ownerID = *req.OwnerID
	}

	return s.gate.projects.Create(ctx, project.NewProject{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		OwnerID:     ownerID,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Status:      project.StatusActive,
		CreatedAt:   s.now(),
	})
}

func (s *ProjectService) Update(ctx context.Context, actor user.User, id int64, p project.Patch) (project.Project, error) {
	if !authz.CanCreateIn(actor.Role) {
		return project.Project{}, errManagerOnly
	}

	cur, err := s.gate.load(ctx, actor, id)
	if err != nil {
		return project.Project{}, err
	}

	if err := p.Validate(cur); err != nil {
		return project.Project{}, err
	}

	return s.gate.projects.Update(ctx, id, p)
}

// Board groups the project's tasks by status, each stamped with overdue.
func (s *ProjectService) Board(ctx context.Context, actor user.User, id int64) (task.Board, error) {
	p, err := s.gate.load(ctx, actor, id)
	if err != nil {
		return task.Board{}, err
	}

	tasks, err := s.tasks.List(ctx, task.ListFilter{ProjectID: &p.ID})
	if err != nil {
		return task.Board{}, err
	}

	now := s.now()
	for i := range tasks {
		tasks[i].Stamp(now)
	}
	return task.GroupBoard(p.ID, tasks), nil
}

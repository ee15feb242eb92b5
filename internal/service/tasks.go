package service

import (
	"context"
	"strings"
	"time"

	"github.com/geocoder89/taskhub/internal/authz"
	"github.com/geocoder89/taskhub/internal/domain/dates"
	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
)

type TaskService struct {
	gate   projectGate
	tasks  TaskStore
	users  UserStore
	engine *authz.Engine
	now    func() time.Time
}

func NewTaskService(tasks TaskStore, projects ProjectStore, users UserStore, engine *authz.Engine, now func() time.Time) *TaskService {
	return &TaskService{
		gate:   projectGate{projects: projects, engine: engine},
		tasks:  tasks,
		users:  users,
		engine: engine,
		now:    clock(now),
	}
}

// ListQuery is the parsed query string of a task listing.
type ListQuery struct {
	ProjectID *int64
	Status    *task.Status
}

// List scopes by project when one is given, and by role otherwise.
func (s *TaskService) List(ctx context.Context, actor user.User, q ListQuery) ([]task.Task, error) {
	filter := task.ListFilter{Status: q.Status}

	if q.ProjectID != nil {
		p, err := s.gate.load(ctx, actor, *q.ProjectID)
		if err != nil {
			return nil, err
		}
		filter.ProjectID = &p.ID
	} else {
		switch actor.Role {
		case user.RoleAdministrator:
		case user.RoleManager:
			filter.OwnerID = &actor.ID
		case user.RoleCollaborator:
			filter.AssigneeID = &actor.ID
		default:
			return []task.Task{}, nil
		}
	}

	tasks, err := s.tasks.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	now := s.now()
	for i := range tasks {
		tasks[i].Stamp(now)
	}
	return tasks, nil
}

func (s *TaskService) Get(ctx context.Context, actor user.User, id int64) (task.Task, error) {
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return task.Task{}, err
	}

	p, err := s.gate.projects.GetByID(ctx, t.ProjectID)
	if err != nil {
		return task.Task{}, err
	}

	ok, err := s.engine.CanViewTask(ctx, actor, t, &p)
	if err != nil {
		return task.Task{}, err
	}
	if !ok {
		return task.Task{}, errNoTask
	}

	t.Stamp(s.now())
	return t, nil
}

func (s *TaskService) Create(ctx context.Context, actor user.User, req task.CreateTaskRequest) (task.Task, error) {
	if !authz.CanCreateIn(actor.Role) {
		return task.Task{}, errManagerOnly
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return task.Task{}, task.ErrMissingTitle
	}
	priority := req.PriorityOrDefault()
	if !priority.Valid() {
		return task.Task{}, task.ErrInvalidPriority
	}
	if req.DueDate != nil && !dates.Valid(*req.DueDate) {
		return task.Task{}, task.ErrInvalidDueDate
	}

	p, err := s.gate.load(ctx, actor, req.ProjectID)
	if err != nil {
		return task.Task{}, err
	}

	if err := s.checkAssignee(ctx, req.AssigneeID); err != nil {
		return task.Task{}, err
	}

	created, err := s.tasks.Create(ctx, task.NewTask{
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		ProjectID:   p.ID,
		AssigneeID:  req.AssigneeID,
		CreatorID:   actor.ID,
		Priority:    priority,
		DueDate:     req.DueDate,
		CreatedAt:   s.now(),
	})
	if err != nil {
		return task.Task{}, err
	}

	created.Stamp(s.now())
	return created, nil
}

// Update applies p within the actor's access level. An assignee can only
// move the status; every other field in the patch is dropped.
func (s *TaskService) Update(ctx context.Context, actor user.User, id int64, p task.Patch) (task.Task, error) {
	cur, access, err := s.access(ctx, actor, id)
	if err != nil {
		return task.Task{}, err
	}

	switch access {
	case authz.AssigneeStatusOnly:
		p = p.StatusOnly()
		if err := p.Validate(); err != nil {
			return task.Task{}, err
		}
		if !p.Status.Has() {
			cur.Stamp(s.now())
			return cur, nil
		}
		return s.setStatus(ctx, id, p.Status.Value)
	case authz.FullEdit:
		if err := p.Validate(); err != nil {
			return task.Task{}, err
		}
		if p.AssigneeID.Has() {
			if err := s.checkAssignee(ctx, &p.AssigneeID.Value); err != nil {
				return task.Task{}, err
			}
		}

		updated, err := s.tasks.UpdateFields(ctx, id, p, s.now())
		if err != nil {
			return task.Task{}, err
		}
		updated.Stamp(s.now())
		return updated, nil
	default:
		return task.Task{}, errNoTask
	}
}

// SetStatus moves a task to status. Any access level may do it.
func (s *TaskService) SetStatus(ctx context.Context, actor user.User, id int64, status task.Status) (task.Task, error) {
	if !status.Valid() {
		return task.Task{}, task.ErrInvalidStatus
	}

	_, access, err := s.access(ctx, actor, id)
	if err != nil {
		return task.Task{}, err
	}
	if access == authz.Denied {
		return task.Task{}, errNoTask
	}

	return s.setStatus(ctx, id, status)
}

func (s *TaskService) setStatus(ctx context.Context, id int64, status task.Status) (task.Task, error) {
	updated, err := s.tasks.SetStatus(ctx, id, status, s.now())
	if err != nil {
		return task.Task{}, err
	}
	updated.Stamp(s.now())
	return updated, nil
}

func (s *TaskService) access(ctx context.Context, actor user.User, id int64) (task.Task, authz.TaskAccess, error) {
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return task.Task{}, authz.Denied, err
	}

	p, err := s.gate.projects.GetByID(ctx, t.ProjectID)
	if err != nil {
		return task.Task{}, authz.Denied, err
	}

	access, err := s.engine.CanMutateTask(ctx, actor, t, &p)
	if err != nil {
		return task.Task{}, authz.Denied, err
	}
	return t, access, nil
}

func (s *TaskService) checkAssignee(ctx context.Context, id *int64) error {
	if id == nil {
		return nil
	}
	ok, err := s.users.Exists(ctx, *id)
	if err != nil {
		return err
	}
	if !ok {
		return task.ErrAssigneeNotFound
	}
	return nil
}

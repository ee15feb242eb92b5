// Package authz holds the per-resource access predicates. Endpoint role
// gating lives in the HTTP middlewares; both tiers are always evaluated.
package authz

import (
	"context"
	"fmt"

	"github.com/geocoder89/taskhub/internal/domain/project"
	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
)

// AssignmentChecker answers whether a user is assignee of any task in a project.
type AssignmentChecker interface {
	IsAssignedInProject(ctx context.Context, projectID, userID int64) (bool, error)
}

type TaskAccess int

const (
	Denied TaskAccess = iota
	AssigneeStatusOnly
	FullEdit
)

func (a TaskAccess) String() string {
	switch a {
	case AssigneeStatusOnly:
		return "assignee_status_only"
	case FullEdit:
		return "full_edit"
	default:
		return "denied"
	}
}

// Engine is stateless; every decision reads ownership and assignment as of
// the current request.
type Engine struct {
	assignments AssignmentChecker
}

func NewEngine(assignments AssignmentChecker) *Engine {
	return &Engine{assignments: assignments}
}

func (e *Engine) CanAccessProject(ctx context.Context, id user.User, p *project.Project) (bool, error) {
	if p == nil {
		return false, nil
	}

	switch id.Role {
	case user.RoleAdministrator:
		return true, nil
	case user.RoleManager:
		return p.OwnerID == id.ID, nil
	case user.RoleCollaborator:
		ok, err := e.assignments.IsAssignedInProject(ctx, p.ID, id.ID)
		if err != nil {
			return false, fmt.Errorf("check assignment: %w", err)
		}
		return ok, nil
	default:
		return false, nil
	}
}

// CanMutateTask needs the task's project for the Administrator/Manager path.
func (e *Engine) CanMutateTask(ctx context.Context, id user.User, t task.Task, p *project.Project) (TaskAccess, error) {
	switch id.Role {
	case user.RoleCollaborator:
		if t.AssignedTo(id.ID) {
			return AssigneeStatusOnly, nil
		}
		return Denied, nil
	case user.RoleAdministrator, user.RoleManager:
		ok, err := e.CanAccessProject(ctx, id, p)
		if err != nil {
			return Denied, err
		}
		if ok {
			return FullEdit, nil
		}
		return Denied, nil
	default:
		return Denied, nil
	}
}

func (e *Engine) CanViewTask(ctx context.Context, id user.User, t task.Task, p *project.Project) (bool, error) {
	if id.Role == user.RoleCollaborator && t.AssignedTo(id.ID) {
		return true, nil
	}
	return e.CanAccessProject(ctx, id, p)
}

// CanViewUserReport allows self-service and Administrators.
func CanViewUserReport(id user.User, userID int64) bool {
	switch id.Role {
	case user.RoleAdministrator:
		return true
	case user.RoleManager, user.RoleCollaborator:
		return id.ID == userID
	default:
		return false
	}
}

// CanCreateIn reports whether a role may create projects and tasks at all.
func CanCreateIn(r user.Role) bool {
	switch r {
	case user.RoleAdministrator, user.RoleManager:
		return true
	case user.RoleCollaborator:
		return false
	default:
		return false
	}
}

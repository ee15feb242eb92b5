package task

import (
	"math"
	"strings"
	"time"

	"github.com/geocoder89/taskhub/internal/apperr"
	"github.com/geocoder89/taskhub/internal/domain/dates"
	"github.com/geocoder89/taskhub/internal/domain/patch"
)

type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "InProgress"
	StatusDone       Status = "Done"
)

// Statuses lists the kanban columns in board order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusDone}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusDone:
		return true
	}
	return false
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", ErrInvalidStatus
	}
	return st, nil
}

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Task struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ProjectID    int64     `json:"projectId"`
	ProjectName  string    `json:"projectName"`
	AssigneeID   *int64    `json:"assigneeId"`
	AssigneeName *string   `json:"assigneeName"`
	CreatorID    int64     `json:"creatorId"`
	CreatorName  string    `json:"creatorName"`
	Status       Status    `json:"status"`
	Priority     Priority  `json:"priority"`
	DueDate      *string   `json:"dueDate"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Overdue      bool      `json:"overdue"`
}

// IsOverdue is true for an unfinished task whose due date is before today.
// It is derived at read time and never stored.
func IsOverdue(t Task, today string) bool {
	if t.Status == StatusDone {
		return false
	}
	if t.DueDate == nil || *t.DueDate == "" {
		return false
	}
	return dates.Before(*t.DueDate, today)
}

// AssignedTo reports whether userID is the task's assignee.
func (t Task) AssignedTo(userID int64) bool {
	return t.AssigneeID != nil && *t.AssigneeID == userID
}

// Stamp fills the derived fields for the given clock reading.
func (t *Task) Stamp(now time.Time) {
	t.Overdue = IsOverdue(*t, dates.Today(now))
}

// ComputeProgress is the rounded share of done tasks, 0 for no tasks.
func ComputeProgress(done, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(done) / float64(total)))
}

var (
	ErrNotFound         = apperr.NotFound("task_not_found", "Task not found")
	ErrInvalidStatus    = apperr.Validation("invalid_status", "Status must be one of Pending, InProgress, Done")
	ErrInvalidPriority  = apperr.Validation("invalid_priority", "Priority must be one of Low, Medium, High")
	ErrInvalidDueDate   = apperr.Validation("invalid_due_date", "dueDate must use the YYYY-MM-DD format")
	ErrMissingTitle     = apperr.Validation("missing_title", "title must not be empty")
	ErrAssigneeNotFound = apperr.Validation("assignee_not_found", "assigneeId does not reference an existing user")
)

// ListFilter narrows a task listing. Nil fields do not filter.
type ListFilter struct {
	ProjectID  *int64
	Status     *Status
	AssigneeID *int64
	OwnerID    *int64
}

type CreateTaskRequest struct {
	Title       string  `json:"title" binding:"required,max=200"`
	Description string  `json:"description" binding:"omitempty,max=4000"`
	ProjectID   int64   `json:"projectId" binding:"required,min=1"`
	AssigneeID  *int64  `json:"assigneeId" binding:"omitempty,min=1"`
	Priority    string  `json:"priority" binding:"omitempty,oneof=Low Medium High"`
	DueDate     *string `json:"dueDate" binding:"omitempty,datetime=2006-01-02"`
}

func (r CreateTaskRequest) PriorityOrDefault() Priority {
	if r.Priority == "" {
		return PriorityMedium
	}
	return Priority(r.Priority)
}

// NewTask is the insert shape. Status is always Pending on creation.
type NewTask struct {
	Title       string
	Description string
	ProjectID   int64
	AssigneeID  *int64
	CreatorID   int64
	Priority    Priority
	DueDate     *string
	CreatedAt   time.Time
}

// Patch is a partial update. Null clears description, assigneeId and dueDate.
type Patch struct {
	Title       patch.Field[string]   `json:"title"`
	Description patch.Field[string]   `json:"description"`
	AssigneeID  patch.Field[int64]    `json:"assigneeId"`
	Priority    patch.Field[Priority] `json:"priority"`
	DueDate     patch.Field[string]   `json:"dueDate"`
	Status      patch.Field[Status]   `json:"status"`
}

// StatusOnly drops every field except status.
func (p Patch) StatusOnly() Patch {
	return Patch{Status: p.Status}
}

// Validate rejects malformed present fields. Null on a field that cannot be
// null is dropped.
func (p *Patch) Validate() error {
	if p.Title.Null {
		p.Title = patch.Field[string]{}
	}
	if p.Priority.Null {
		p.Priority = patch.Field[Priority]{}
	}
	if p.Status.Null {
		p.Status = patch.Field[Status]{}
	}

	if p.Title.Has() {
		p.Title.Value = strings.TrimSpace(p.Title.Value)
		if p.Title.Value == "" {
			return ErrMissingTitle
		}
	}
	if p.Priority.Has() && !p.Priority.Value.Valid() {
		return ErrInvalidPriority
	}
	if p.Status.Has() && !p.Status.Value.Valid() {
		return ErrInvalidStatus
	}
	if p.DueDate.Has() && !dates.Valid(p.DueDate.Value) {
		return ErrInvalidDueDate
	}
	return nil
}

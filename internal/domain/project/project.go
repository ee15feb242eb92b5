package project

import (
	"strings"
	"time"

	"github.com/geocoder89/taskhub/internal/apperr"
	"github.com/geocoder89/taskhub/internal/domain/dates"
	"github.com/geocoder89/taskhub/internal/domain/patch"
)

type Status string

const (
	StatusActive    Status = "Active"
	StatusPaused    Status = "Paused"
	StatusCompleted Status = "Completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusPaused, StatusCompleted:
		return true
	}
	return false
}

type Project struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     int64     `json:"ownerId"`
	OwnerName   string    `json:"ownerName"`
	StartDate   string    `json:"startDate"`
	EndDate     string    `json:"endDate"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// WithProgress is the detail view: a project plus its completion percentage.
type WithProgress struct {
	Project
	Progress int `json:"progress"`
}

var (
	ErrNotFound      = apperr.NotFound("project_not_found", "Project not found")
	ErrInvalidStatus = apperr.Validation("invalid_status", "Status must be one of Active, Paused, Completed")
	ErrInvalidDate   = apperr.Validation("invalid_date", "Dates must use the YYYY-MM-DD format")
	ErrDateRange     = apperr.Validation("invalid_date_range", "endDate must not be before startDate")
	ErrOwnerNotFound = apperr.Validation("owner_not_found", "ownerId does not reference an existing user")
	ErrMissingName   = apperr.Validation("missing_name", "name must not be empty")
)

// ListFilter narrows a project listing. Nil fields do not filter.
type ListFilter struct {
	OwnerID    *int64
	AssigneeID *int64
}

type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	Description string `json:"description" binding:"omitempty,max=2000"`
	OwnerID     *int64 `json:"ownerId" binding:"omitempty,min=1"`
	StartDate   string `json:"startDate" binding:"required,datetime=2006-01-02"`
	EndDate     string `json:"endDate" binding:"required,datetime=2006-01-02"`
}

func (r CreateProjectRequest) Validate() error {
	if dates.Before(r.EndDate, r.StartDate) {
		return ErrDateRange
	}
	return nil
}

// NewProject is the insert shape after ownership has been resolved.
type NewProject struct {
	Name        string
	Description string
	OwnerID     int64
	StartDate   string
	EndDate     string
	Status      Status
	CreatedAt   time.Time
}

// Patch is a partial update. Only present fields are written.
type Patch struct {
	Name        patch.Field[string] `json:"name"`
	Description patch.Field[string] `json:"description"`
	StartDate   patch.Field[string] `json:"startDate"`
	EndDate     patch.Field[string] `json:"endDate"`
	Status      patch.Field[Status] `json:"status"`
}

// Validate checks present fields and the resulting date range against cur.
func (p *Patch) Validate(cur Project) error {
	if p.Name.Has() {
		p.Name.Value = strings.TrimSpace(p.Name.Value)
		if p.Name.Value == "" {
			return ErrMissingName
		}
	}
	if p.StartDate.Has() && !dates.Valid(p.StartDate.Value) {
		return ErrInvalidDate
	}
	if p.EndDate.Has() && !dates.Valid(p.EndDate.Value) {
		return ErrInvalidDate
	}
	if p.Status.Has() && !p.Status.Value.Valid() {
		return ErrInvalidStatus
	}

	start, end := cur.StartDate, cur.EndDate
	if p.StartDate.Has() {
		start = p.StartDate.Value
	}
	if p.EndDate.Has() {
		end = p.EndDate.Value
	}
	if dates.Before(end, start) {
		return ErrDateRange
	}
	return nil
}

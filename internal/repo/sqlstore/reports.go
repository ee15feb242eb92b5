package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/geocoder89/taskhub/internal/domain/report"
	"github.com/geocoder89/taskhub/internal/domain/task"
)

// ReportsRepo aggregates task counts. Overdue uses the same rule as
// task.IsOverdue, evaluated against the caller's today.
type ReportsRepo struct {
	db *DB
}

func NewReportsRepo(db *DB) *ReportsRepo {
	return &ReportsRepo{db: db}
}

func (r *ReportsRepo) TaskCounts(ctx context.Context, scope report.Scope, today string) (report.TaskCounts, error) {
	query := `SELECT status, COUNT(*),
		COALESCE(SUM(CASE WHEN status <> ? AND due_date IS NOT NULL AND due_date <> '' AND due_date < ? THEN 1 ELSE 0 END), 0)
	FROM tasks`
	args := []any{string(task.StatusDone), today}

	switch {
	case scope.ProjectID != nil:
		query += ` WHERE project_id = ?`
		args = append(args, *scope.ProjectID)
	case scope.AssigneeID != nil:
		query += ` WHERE assignee_id = ?`
		args = append(args, *scope.AssigneeID)
	}
	query += ` GROUP BY status`

	counts := report.TaskCounts{ByStatus: make(map[task.Status]int, len(task.Statuses))}
	err := r.db.query(ctx, "reports.task_counts", query, args, func(rows *sql.Rows) error {
		var status task.Status
		var n, overdue int
		if err := rows.Scan(&status, &n, &overdue); err != nil {
			return err
		}
		counts.ByStatus[status] = n
		counts.Total += n
		counts.Overdue += overdue
		if status == task.StatusDone {
			counts.Done = n
		}
		return nil
	})
	if err != nil {
		return report.TaskCounts{}, fmt.Errorf("count tasks: %w", err)
	}

	counts.ByStatus = report.FillStatuses(counts.ByStatus)
	return counts, nil
}

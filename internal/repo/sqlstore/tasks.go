package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/task"
)

type TasksRepo struct {
	db *DB
}

func NewTasksRepo(db *DB) *TasksRepo {
	return &TasksRepo{db: db}
}

const taskSelect = `SELECT t.id, t.title, COALESCE(t.description, ''), t.project_id, p.name,
	t.assignee_id, a.name, t.creator_id, c.name,
	t.status, t.priority, t.due_date, t.created_at, t.updated_at
FROM tasks t
JOIN projects p ON p.id = t.project_id
JOIN users c ON c.id = t.creator_id
LEFT JOIN users a ON a.id = t.assignee_id`

type taskRow struct {
	t            task.Task
	assigneeID   sql.NullInt64
	assigneeName sql.NullString
	dueDate      sql.NullString
	createdAt    dbTime
	updatedAt    dbTime
}

func (row *taskRow) dest() []any {
	return []any{
		&row.t.ID, &row.t.Title, &row.t.Description, &row.t.ProjectID, &row.t.ProjectName,
		&row.assigneeID, &row.assigneeName, &row.t.CreatorID, &row.t.CreatorName,
		&row.t.Status, &row.t.Priority, &row.dueDate, &row.createdAt, &row.updatedAt,
	}
}

func (row *taskRow) task() task.Task {
	t := row.t
	if row.assigneeID.Valid {
		id := row.assigneeID.Int64
		t.AssigneeID = &id
	}
	if row.assigneeName.Valid {
		name := row.assigneeName.String
		t.AssigneeName = &name
	}
	if row.dueDate.Valid {
		due := row.dueDate.String
		t.DueDate = &due
	}
	t.CreatedAt = row.createdAt.Time
	t.UpdatedAt = row.updatedAt.Time
	return t
}

func (r *TasksRepo) Create(ctx context.Context, nt task.NewTask) (task.Task, error) {
	ts := formatTime(nt.CreatedAt)

	var id int64
	_, err := r.db.queryRowFound(ctx, "tasks.create",
		`INSERT INTO tasks (title, description, project_id, assignee_id, creator_id, status, priority, due_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		[]any{
			nt.Title, nt.Description, nt.ProjectID, nullInt(nt.AssigneeID), nt.CreatorID,
			string(task.StatusPending), string(nt.Priority), nullString(nt.DueDate), ts, ts,
		},
		&id,
	)
	if err != nil {
		return task.Task{}, fmt.Errorf("insert task: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *TasksRepo) GetByID(ctx context.Context, id int64) (task.Task, error) {
	var row taskRow

	found, err := r.db.queryRowFound(ctx, "tasks.get", taskSelect+` WHERE t.id = ?`, []any{id}, row.dest()...)
	if err != nil {
		return task.Task{}, fmt.Errorf("select task: %w", err)
	}
	if !found {
		return task.Task{}, task.ErrNotFound
	}
	return row.task(), nil
}

func (r *TasksRepo) List(ctx context.Context, filter task.ListFilter) ([]task.Task, error) {
	var conds []string
	var args []any

	if filter.ProjectID != nil {
		conds = append(conds, "t.project_id = ?")
		args = append(args, *filter.ProjectID)
	}
	if filter.Status != nil {
		conds = append(conds, "t.status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.AssigneeID != nil {
		conds = append(conds, "t.assignee_id = ?")
		args = append(args, *filter.AssigneeID)
	}
	if filter.OwnerID != nil {
		conds = append(conds, "p.owner_id = ?")
		args = append(args, *filter.OwnerID)
	}

	query := taskSelect
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY t.created_at DESC, t.id DESC"

	out := make([]task.Task, 0)
	err := r.db.query(ctx, "tasks.list", query, args, func(rows *sql.Rows) error {
		var row taskRow
		if err := rows.Scan(row.dest()...); err != nil {
			return err
		}
		out = append(out, row.task())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return out, nil
}

// UpdateFields writes the present patch fields and bumps updated_at, in one
// statement. Last write wins.
func (r *TasksRepo) UpdateFields(ctx context.Context, id int64, p task.Patch, now time.Time) (task.Task, error) {
	var description any = p.Description.Value
	if p.Description.Null {
		description = nil
	}
	var assignee any = p.AssigneeID.Value
	if p.AssigneeID.Null {
		assignee = nil
	}
	var due any = p.DueDate.Value
	if p.DueDate.Null {
		due = nil
	}

	res, err := r.db.exec(ctx, "tasks.update",
		`UPDATE tasks SET
			title = CASE WHEN ? THEN ? ELSE title END,
			description = CASE WHEN ? THEN ? ELSE description END,
			assignee_id = CASE WHEN ? THEN ? ELSE assignee_id END,
			priority = CASE WHEN ? THEN ? ELSE priority END,
			due_date = CASE WHEN ? THEN ? ELSE due_date END,
			status = CASE WHEN ? THEN ? ELSE status END,
			updated_at = ?
		WHERE id = ?`,
		p.Title.Has(), p.Title.Value,
		p.Description.Set, description,
		p.AssigneeID.Set, assignee,
		p.Priority.Has(), string(p.Priority.Value),
		p.DueDate.Set, due,
		p.Status.Has(), string(p.Status.Value),
		formatTime(now),
		id,
	)
	if err != nil {
		return task.Task{}, fmt.Errorf("update task: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return task.Task{}, fmt.Errorf("update task: %w", err)
	}
	if n == 0 {
		return task.Task{}, task.ErrNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *TasksRepo) SetStatus(ctx context.Context, id int64, status task.Status, now time.Time) (task.Task, error) {
	res, err := r.db.exec(ctx, "tasks.set_status",
		`UPDATE tasks SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), formatTime(now), id,
	)
	if err != nil {
		return task.Task{}, fmt.Errorf("set task status: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return task.Task{}, fmt.Errorf("set task status: %w", err)
	}
	if n == 0 {
		return task.Task{}, task.ErrNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *TasksRepo) IsAssignedInProject(ctx context.Context, projectID, userID int64) (bool, error) {
	var assigned bool
	found, err := r.db.queryRowFound(ctx, "tasks.is_assigned",
		`SELECT `+assignedToProject+` FROM projects p WHERE p.id = ?`,
		[]any{userID, projectID},
		&assigned,
	)
	if err != nil {
		return false, fmt.Errorf("check assignment: %w", err)
	}
	return found && assigned, nil
}

// ProgressCounts returns done and total tasks for a project.
func (r *TasksRepo) ProgressCounts(ctx context.Context, projectID int64) (done, total int, err error) {
	_, err = r.db.queryRowFound(ctx, "tasks.progress",
		`SELECT COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0), COUNT(*)
		FROM tasks WHERE project_id = ?`,
		[]any{string(task.StatusDone), projectID},
		&done, &total,
	)
	if err != nil {
		return 0, 0, fmt.Errorf("count progress: %w", err)
	}
	return done, total, nil
}

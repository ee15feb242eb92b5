package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/geocoder89/taskhub/internal/domain/project"
)

// assignedToProject is the collaborator relation: the bound user is assignee
// of at least one task in project p. Listing and access checks both use it.
const assignedToProject = `EXISTS (SELECT 1 FROM tasks a WHERE a.project_id = p.id AND a.assignee_id = ?)`

type ProjectsRepo struct {
	db *DB
}

func NewProjectsRepo(db *DB) *ProjectsRepo {
	return &ProjectsRepo{db: db}
}

const projectSelect = `SELECT p.id, p.name, COALESCE(p.description, ''), p.owner_id, u.name,
	p.start_date, p.end_date, p.status, p.created_at
FROM projects p
JOIN users u ON u.id = p.owner_id`

func scanProject(p *project.Project, created *dbTime) []any {
	return []any{&p.ID, &p.Name, &p.Description, &p.OwnerID, &p.OwnerName, &p.StartDate, &p.EndDate, &p.Status, created}
}

func (r *ProjectsRepo) Create(ctx context.Context, np project.NewProject) (project.Project, error) {
	var id int64
	_, err := r.db.queryRowFound(ctx, "projects.create",
		`INSERT INTO projects (name, description, owner_id, start_date, end_date, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		[]any{np.Name, np.Description, np.OwnerID, np.StartDate, np.EndDate, string(np.Status), formatTime(np.CreatedAt)},
		&id,
	)
	if err != nil {
		return project.Project{}, fmt.Errorf("insert project: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *ProjectsRepo) GetByID(ctx context.Context, id int64) (project.Project, error) {
	var p project.Project
	var created dbTime

	found, err := r.db.queryRowFound(ctx, "projects.get", projectSelect+` WHERE p.id = ?`, []any{id}, scanProject(&p, &created)...)
	if err != nil {
		return project.Project{}, fmt.Errorf("select project: %w", err)
	}
	if !found {
		return project.Project{}, project.ErrNotFound
	}

	p.CreatedAt = created.Time
	return p, nil
}

func (r *ProjectsRepo) List(ctx context.Context, filter project.ListFilter) ([]project.Project, error) {
	var conds []string
	var args []any

	if filter.OwnerID != nil {
		conds = append(conds, "p.owner_id = ?")
		args = append(args, *filter.OwnerID)
	}
	if filter.AssigneeID != nil {
		conds = append(conds, assignedToProject)
		args = append(args, *filter.AssigneeID)
	}

	query := projectSelect
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY p.created_at DESC, p.id DESC"

	out := make([]project.Project, 0)
	err := r.db.query(ctx, "projects.list", query, args, func(rows *sql.Rows) error {
		var p project.Project
		var created dbTime
		if err := rows.Scan(scanProject(&p, &created)...); err != nil {
			return err
		}
		p.CreatedAt = created.Time
		out = append(out, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return out, nil
}

// Update writes only the fields present in the patch, in one statement.
func (r *ProjectsRepo) Update(ctx context.Context, id int64, p project.Patch) (project.Project, error) {
	var description any = p.Description.Value
	if p.Description.Null {
		description = nil
	}

	res, err := r.db.exec(ctx, "projects.update",
		`UPDATE projects SET
			name = CASE WHEN ? THEN ? ELSE name END,
			description = CASE WHEN ? THEN ? ELSE description END,
			start_date = CASE WHEN ? THEN ? ELSE start_date END,
			end_date = CASE WHEN ? THEN ? ELSE end_date END,
			status = CASE WHEN ? THEN ? ELSE status END
		WHERE id = ?`,
		p.Name.Has(), p.Name.Value,
		p.Description.Set, description,
		p.StartDate.Has(), p.StartDate.Value,
		p.EndDate.Has(), p.EndDate.Value,
		p.Status.Has(), string(p.Status.Value),
		id,
	)
	if err != nil {
		return project.Project{}, fmt.Errorf("update project: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return project.Project{}, fmt.Errorf("update project: %w", err)
	}
	if n == 0 {
		return project.Project{}, project.ErrNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *ProjectsRepo) Count(ctx context.Context) (int, error) {
	var n int
	if _, err := r.db.queryRowFound(ctx, "projects.count", `SELECT COUNT(*) FROM projects`, nil, &n); err != nil {
		return 0, fmt.Errorf("count projects: %w", err)
	}
	return n, nil
}

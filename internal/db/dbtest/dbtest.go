// Package dbtest provides migrated in-memory SQLite stores for tests.
package dbtest

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/geocoder89/taskhub/internal/db"
	"github.com/geocoder89/taskhub/internal/domain/project"
	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/repo/sqlstore"
)

var seq atomic.Int64

// Epoch is the creation time of every fixture row.
var Epoch = time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)

// Store bundles the repositories over one fresh database.
type Store struct {
	SQL      *sql.DB
	DB       *sqlstore.DB
	Users    *sqlstore.UsersRepo
	Projects *sqlstore.ProjectsRepo
	Tasks    *sqlstore.TasksRepo
	Reports  *sqlstore.ReportsRepo
}

func New(t testing.TB) *Store {
	t.Helper()
	ctx := context.Background()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := "file:" + name + "_" + strconv.FormatInt(seq.Add(1), 10) + "?mode=memory&cache=shared"

	conn, err := db.OpenSQLite(ctx, dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.Migrate(ctx, conn, sqlstore.SQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	d := sqlstore.New(conn, sqlstore.SQLite, nil)
	return &Store{
		SQL:      conn,
		DB:       d,
		Users:    sqlstore.NewUsersRepo(d),
		Projects: sqlstore.NewProjectsRepo(d),
		Tasks:    sqlstore.NewTasksRepo(d),
		Reports:  sqlstore.NewReportsRepo(d),
	}
}

// User inserts a user with a placeholder hash.
func (s *Store) User(t testing.TB, name string, role user.Role) user.User {
	t.Helper()
	email := strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com"
	u, err := s.Users.Create(context.Background(), name, email, "x", role)
	if err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

func (s *Store) Project(t testing.TB, name string, ownerID int64) project.Project {
	t.Helper()
	p, err := s.Projects.Create(context.Background(), project.NewProject{
		Name:      name,
		OwnerID:   ownerID,
		StartDate: "2025-01-01",
		EndDate:   "2025-12-31",
		Status:    project.StatusActive,
		CreatedAt: Epoch,
	})
	if err != nil {
		t.Fatalf("create project %s: %v", name, err)
	}
	return p
}

// Task inserts a Pending task. assignee may be nil.
func (s *Store) Task(t testing.TB, title string, projectID, creatorID int64, assignee *int64, due *string) task.Task {
	t.Helper()
	tk, err := s.Tasks.Create(context.Background(), task.NewTask{
		Title:      title,
		ProjectID:  projectID,
		AssigneeID: assignee,
		CreatorID:  creatorID,
		Priority:   task.PriorityMedium,
		DueDate:    due,
		CreatedAt:  Epoch,
	})
	if err != nil {
		t.Fatalf("create task %s: %v", title, err)
	}
	return tk
}

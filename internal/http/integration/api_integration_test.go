package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/taskhub/internal/auth"
	"github.com/geocoder89/taskhub/internal/config"
	"github.com/geocoder89/taskhub/internal/db"
	"github.com/geocoder89/taskhub/internal/db/dbtest"
	"github.com/geocoder89/taskhub/internal/domain/project"
	"github.com/geocoder89/taskhub/internal/domain/report"
	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
	apphttp "github.com/geocoder89/taskhub/internal/http"
	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/geocoder89/taskhub/internal/security"
	"github.com/geocoder89/taskhub/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() config.Config {
	return config.Config{
		Env:             "test",
		SessionSecret:   "test-secret-key",
		SessionTTL:      time.Hour,
		AdminName:       "Administrador",
		AdminEmail:      "admin@proyectos.com",
		AdminPassword:   "admin123",
		BcryptCost:      bcrypt.MinCost,
		CORSOrigins:     []string{"http://localhost:5000"},
		LoginRateLimit:  100,
		LoginRateWindow: time.Minute,
		MaxBodyBytes:    1 << 20,
	}
}

type app struct {
	t      *testing.T
	router *gin.Engine
}

func setupApp(t *testing.T) *app {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	store := dbtest.New(t)
	hasher := security.NewHasher(cfg.BcryptCost)

	seed := db.AdminSeed{Name: cfg.AdminName, Email: cfg.AdminEmail, Password: cfg.AdminPassword}
	if err := db.EnsureAdminUser(context.Background(), store.Users, hasher, seed); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	reg := prometheus.NewRegistry()
	router := apphttp.NewRouter(apphttp.Deps{
		Config:   cfg,
		Store:    store.DB,
		Sessions: auth.NewManager(cfg.SessionSecret, cfg.SessionTTL),
		Revoker:  session.NewMemory(),
		Hasher:   hasher,
		Registry: reg,
		Prom:     observability.NewProm(reg),
	})

	return &app{t: t, router: router}
}

// client is one logged-in browser.
type client struct {
	app    *app
	cookie *http.Cookie
}

func (a *app) do(method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	a.t.Helper()

	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			a.t.Fatalf("marshal body: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *app) login(email, password string) *client {
	a.t.Helper()

	w := a.do(http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": password}, nil)
	if w.Code != http.StatusOK {
		a.t.Fatalf("login %s: status %d body=%s", email, w.Code, w.Body.String())
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == middlewares.SessionCookie && c.Value != "" {
			return &client{app: a, cookie: c}
		}
	}
	a.t.Fatalf("login %s: no session cookie", email)
	return nil
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.app.t.Helper()
	return c.app.do(method, path, body, c.cookie)
}

// must decodes a response with the expected status into out.
func must[T any](t *testing.T, w *httptest.ResponseRecorder, status int) T {
	t.Helper()

	var out T
	if w.Code != status {
		t.Fatalf("status %d, want %d body=%s", w.Code, status, w.Body.String())
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v body=%s", err, w.Body.String())
	}
	return out
}

type team struct {
	admin            *client
	manager, collab  *client
	managerID        int64
	collabID         int64
	otherCollabID    int64
	project          project.Project
	unassignedProjID int64
}

// setupTeam creates a manager and two collaborators through the API, then a
// project owned by the manager with one task assigned to collab.
func setupTeam(t *testing.T) (*app, team) {
	t.Helper()

	a := setupApp(t)
	var tm team
	tm.admin = a.login("admin@proyectos.com", "admin123")

	mkUser := func(name, email, role string) int64 {
		u := must[user.User](t, tm.admin.do(http.MethodPost, "/api/usuarios", map[string]string{
			"name": name, "email": email, "password": "secret1", "role": role,
		}), http.StatusCreated)
		return u.ID
	}
	tm.managerID = mkUser("Maria", "maria@example.com", "Manager")
	tm.collabID = mkUser("Carlos", "carlos@example.com", "Collaborator")
	tm.otherCollabID = mkUser("Lucia", "lucia@example.com", "")

	tm.manager = a.login("maria@example.com", "secret1")
	tm.collab = a.login("carlos@example.com", "secret1")

	tm.project = must[project.Project](t, tm.manager.do(http.MethodPost, "/api/proyectos", map[string]any{
		"name": "Website", "startDate": "2025-01-01", "endDate": "2025-12-31",
	}), http.StatusCreated)

	other := must[project.Project](t, tm.admin.do(http.MethodPost, "/api/proyectos", map[string]any{
		"name": "Internal", "startDate": "2025-01-01", "endDate": "2025-06-30",
	}), http.StatusCreated)
	tm.unassignedProjID = other.ID

	return a, tm
}

func (tm team) newTask(t *testing.T, title string, assignee *int64, due string) task.Task {
	t.Helper()
	body := map[string]any{"title": title, "projectId": tm.project.ID}
	if assignee != nil {
		body["assigneeId"] = *assignee
	}
	if due != "" {
		body["dueDate"] = due
	}
	return must[task.Task](t, tm.manager.do(http.MethodPost, "/api/tareas", body), http.StatusCreated)
}

func TestAuthFlow(t *testing.T) {
	a := setupApp(t)

	w := a.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "admin@proyectos.com", "password": "wrong"}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: status %d", w.Code)
	}

	w = a.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "ADMIN@proyectos.com", "password": "admin123"}, nil)
	resp := must[struct {
		Message string       `json:"message"`
		User    user.Summary `json:"user"`
	}](t, w, http.StatusOK)
	if resp.User.Role != user.RoleAdministrator || resp.User.Name != "Administrador" {
		t.Fatalf("unexpected user: %+v", resp.User)
	}

	admin := a.login("admin@proyectos.com", "admin123")
	me := must[user.Summary](t, admin.do(http.MethodGet, "/api/auth/me", nil), http.StatusOK)
	if me.Email != "admin@proyectos.com" {
		t.Fatalf("me: %+v", me)
	}

	if w := a.do(http.MethodGet, "/api/auth/me", nil, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous me: status %d", w.Code)
	}

	if w := admin.do(http.MethodPost, "/api/auth/logout", nil); w.Code != http.StatusOK {
		t.Fatalf("logout: status %d", w.Code)
	}
	if w := admin.do(http.MethodGet, "/api/auth/me", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("revoked session should be rejected, got %d", w.Code)
	}
	if w := admin.do(http.MethodPost, "/api/auth/logout", nil); w.Code != http.StatusOK {
		t.Fatalf("second logout: status %d", w.Code)
	}
}

func TestUsersAdminOnly(t *testing.T) {
	a, tm := setupTeam(t)

	users := must[[]user.User](t, tm.admin.do(http.MethodGet, "/api/usuarios", nil), http.StatusOK)
	if len(users) != 4 {
		t.Fatalf("want 4 users, got %d", len(users))
	}
	if strings.Contains(tm.admin.do(http.MethodGet, "/api/usuarios", nil).Body.String(), "password") {
		t.Fatalf("user list leaks password hashes")
	}

	for _, c := range []*client{tm.manager, tm.collab} {
		if w := c.do(http.MethodGet, "/api/usuarios", nil); w.Code != http.StatusForbidden {
			t.Fatalf("non-admin list users: status %d", w.Code)
		}
	}

	w := tm.admin.do(http.MethodPost, "/api/usuarios", map[string]string{
		"name": "Dup", "email": "maria@example.com", "password": "secret1",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate email: status %d body=%s", w.Code, w.Body.String())
	}

	// a normal user login still works with the created password
	a.login("lucia@example.com", "secret1")
}

func TestProjectAccess(t *testing.T) {
	_, tm := setupTeam(t)

	if tm.project.OwnerID != tm.managerID {
		t.Fatalf("manager must own the project they create, owner=%d", tm.project.OwnerID)
	}

	path := fmt.Sprintf("/api/proyectos/%d", tm.project.ID)

	// collaborator with no tasks in the project
	if w := tm.collab.do(http.MethodGet, path, nil); w.Code != http.StatusForbidden {
		t.Fatalf("unassigned collaborator: status %d", w.Code)
	}
	if w := tm.collab.do(http.MethodPost, "/api/proyectos", map[string]any{
		"name": "Nope", "startDate": "2025-01-01", "endDate": "2025-02-01",
	}); w.Code != http.StatusForbidden {
		t.Fatalf("collaborator create project: status %d", w.Code)
	}

	tm.newTask(t, "Design", &tm.collabID, "")

	got := must[project.WithProgress](t, tm.collab.do(http.MethodGet, path, nil), http.StatusOK)
	if got.ID != tm.project.ID || got.Progress != 0 {
		t.Fatalf("unexpected project: %+v", got)
	}

	list := must[[]project.Project](t, tm.collab.do(http.MethodGet, "/api/proyectos", nil), http.StatusOK)
	if len(list) != 1 || list[0].ID != tm.project.ID {
		t.Fatalf("collaborator should see only the assigned project, got %+v", list)
	}

	if w := tm.manager.do(http.MethodGet, fmt.Sprintf("/api/proyectos/%d", tm.unassignedProjID), nil); w.Code != http.StatusForbidden {
		t.Fatalf("manager on foreign project: status %d", w.Code)
	}
	if w := tm.admin.do(http.MethodGet, "/api/proyectos/9999", nil); w.Code != http.StatusNotFound {
		t.Fatalf("missing project: status %d", w.Code)
	}

	w := tm.manager.do(http.MethodPost, "/api/proyectos", map[string]any{
		"name": "Backwards", "startDate": "2025-05-01", "endDate": "2025-01-01",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("end before start: status %d", w.Code)
	}

	updated := must[project.Project](t, tm.manager.do(http.MethodPut, path, map[string]any{"status": "Paused"}), http.StatusOK)
	if updated.Status != project.StatusPaused || updated.Name != "Website" {
		t.Fatalf("partial update: %+v", updated)
	}
}

func TestTaskLifecycle(t *testing.T) {
	_, tm := setupTeam(t)

	tk := tm.newTask(t, "Write copy", &tm.collabID, "2020-01-01")
	if tk.Status != task.StatusPending || tk.Priority != task.PriorityMedium {
		t.Fatalf("defaults: %+v", tk)
	}
	if !tk.Overdue {
		t.Fatalf("a past due date must be overdue")
	}

	path := fmt.Sprintf("/api/tareas/%d", tk.ID)

	// collaborator can only move status; other fields are ignored
	got := must[task.Task](t, tm.collab.do(http.MethodPut, path, map[string]any{
		"status": "InProgress", "title": "Hijacked",
	}), http.StatusOK)
	if got.Status != task.StatusInProgress || got.Title != "Write copy" {
		t.Fatalf("status-only update: %+v", got)
	}

	if w := tm.collab.do(http.MethodPut, path, map[string]any{"status": "Blocked"}); w.Code != http.StatusBadRequest {
		t.Fatalf("invalid status: code %d", w.Code)
	}

	done := must[task.Task](t, tm.collab.do(http.MethodPut, path, map[string]any{"status": "Done"}), http.StatusOK)
	if done.Overdue {
		t.Fatalf("done tasks are never overdue")
	}

	// the manager may edit everything and clear the assignee
	edited := must[task.Task](t, tm.manager.do(http.MethodPut, path, map[string]any{
		"title": "Final copy", "assigneeId": nil, "priority": "High",
	}), http.StatusOK)
	if edited.Title != "Final copy" || edited.AssigneeID != nil || edited.Priority != task.PriorityHigh {
		t.Fatalf("full edit: %+v", edited)
	}

	// unassigned now, the collaborator lost access
	if w := tm.collab.do(http.MethodGet, path, nil); w.Code != http.StatusForbidden {
		t.Fatalf("collaborator after unassign: status %d", w.Code)
	}

	if w := tm.collab.do(http.MethodPost, "/api/tareas", map[string]any{
		"title": "x", "projectId": tm.project.ID,
	}); w.Code != http.StatusForbidden {
		t.Fatalf("collaborator create task: status %d", w.Code)
	}

	if w := tm.manager.do(http.MethodPost, "/api/tareas", map[string]any{
		"title": "x", "projectId": tm.project.ID, "assigneeId": 9999,
	}); w.Code != http.StatusBadRequest {
		t.Fatalf("unknown assignee: status %d", w.Code)
	}
}

func TestTaskListAndBoard(t *testing.T) {
	_, tm := setupTeam(t)

	a := tm.newTask(t, "A", &tm.collabID, "")
	tm.newTask(t, "B", &tm.otherCollabID, "")
	c := tm.newTask(t, "C", nil, "")

	must[task.Task](t, tm.manager.do(http.MethodPut, fmt.Sprintf("/api/tareas/%d", c.ID), map[string]any{"status": "Done"}), http.StatusOK)

	mine := must[[]task.Task](t, tm.collab.do(http.MethodGet, "/api/tareas", nil), http.StatusOK)
	if len(mine) != 1 || mine[0].ID != a.ID {
		t.Fatalf("collaborator list: %+v", mine)
	}

	done := must[[]task.Task](t, tm.manager.do(http.MethodGet, fmt.Sprintf("/api/tareas?proyecto_id=%d&estado=Done", tm.project.ID), nil), http.StatusOK)
	if len(done) != 1 || done[0].ID != c.ID {
		t.Fatalf("filtered list: %+v", done)
	}

	board := must[task.Board](t, tm.manager.do(http.MethodGet, fmt.Sprintf("/api/proyectos/%d/tablero", tm.project.ID), nil), http.StatusOK)
	if len(board.Pending) != 2 || len(board.InProgress) != 0 || len(board.Done) != 1 {
		t.Fatalf("board columns: %d/%d/%d", len(board.Pending), len(board.InProgress), len(board.Done))
	}

	detail := must[project.WithProgress](t, tm.manager.do(http.MethodGet, fmt.Sprintf("/api/proyectos/%d", tm.project.ID), nil), http.StatusOK)
	if detail.Progress != 33 {
		t.Fatalf("progress = %d, want 33", detail.Progress)
	}
}

func TestReports(t *testing.T) {
	a, tm := setupTeam(t)

	a1 := tm.newTask(t, "A", &tm.collabID, "2020-01-01")
	tm.newTask(t, "B", &tm.collabID, "")
	must[task.Task](t, tm.collab.do(http.MethodPut, fmt.Sprintf("/api/tareas/%d", a1.ID), map[string]any{"status": "Done"}), http.StatusOK)
	tm.newTask(t, "C", nil, "2020-01-01")

	general := must[report.GeneralMetrics](t, tm.admin.do(http.MethodGet, "/api/reportes/generales", nil), http.StatusOK)

	if general.TotalProjects != 2 || general.TotalTasks != 3 || general.CompletedTasks != 1 || general.OverdueTasks != 1 {
		t.Fatalf("general report: %+v", general)
	}
	if general.TasksByStatus[task.StatusPending] != 2 || general.TasksByStatus[task.StatusInProgress] != 0 {
		t.Fatalf("tasksByStatus: %v", general.TasksByStatus)
	}
	if general.CompletionPercentage != 33 {
		t.Fatalf("completion = %d", general.CompletionPercentage)
	}

	if w := tm.manager.do(http.MethodGet, "/api/reportes/generales", nil); w.Code != http.StatusForbidden {
		t.Fatalf("manager general report: status %d", w.Code)
	}

	if w := tm.manager.do(http.MethodGet, fmt.Sprintf("/api/reportes/proyecto/%d", tm.project.ID), nil); w.Code != http.StatusOK {
		t.Fatalf("owner project report: status %d", w.Code)
	}
	if w := tm.manager.do(http.MethodGet, fmt.Sprintf("/api/reportes/proyecto/%d", tm.unassignedProjID), nil); w.Code != http.StatusForbidden {
		t.Fatalf("foreign project report: status %d", w.Code)
	}

	mine := must[report.UserMetrics](t, tm.collab.do(http.MethodGet, fmt.Sprintf("/api/reportes/usuario/%d", tm.collabID), nil), http.StatusOK)
	if mine.UserID != tm.collabID || mine.TotalTasks != 2 || mine.CompletedTasks != 1 {
		t.Fatalf("user report: %+v", mine)
	}

	if w := tm.collab.do(http.MethodGet, fmt.Sprintf("/api/reportes/usuario/%d", tm.otherCollabID), nil); w.Code != http.StatusForbidden {
		t.Fatalf("other user's report: status %d", w.Code)
	}
	if w := tm.admin.do(http.MethodGet, "/api/reportes/usuario/9999", nil); w.Code != http.StatusNotFound {
		t.Fatalf("unknown user report: status %d", w.Code)
	}

	// logins and status writes land in the registry
	metrics := a.do(http.MethodGet, "/metrics", nil, nil)
	if metrics.Code != http.StatusOK {
		t.Fatalf("metrics: status %d", metrics.Code)
	}
	for _, name := range []string{"taskhub_auth_logins_total", "taskhub_tasks_status_changes_total", "taskhub_http_requests_total"} {
		if !strings.Contains(metrics.Body.String(), name) {
			t.Fatalf("metrics missing %s", name)
		}
	}
}

func TestRequestGuards(t *testing.T) {
	a, tm := setupTeam(t)

	req := httptest.NewRequest(http.MethodPost, "/api/proyectos", strings.NewReader(`name=x`))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(tm.manager.cookie)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("form body: status %d", w.Code)
	}

	if w := a.do(http.MethodGet, "/api/tareas", nil, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous list: status %d", w.Code)
	}
	if w := a.do(http.MethodGet, "/api/nope", nil, nil); w.Code != http.StatusNotFound {
		t.Fatalf("unknown route: status %d", w.Code)
	}

	w = a.do(http.MethodGet, "/healthz", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("healthz: status %d", w.Code)
	}
	if w := a.do(http.MethodGet, "/readyz", nil, nil); w.Code != http.StatusOK {
		t.Fatalf("readyz: status %d", w.Code)
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("security headers missing: %v", w.Header())
	}
	if w.Header().Get("X-Request-Id") == "" {
		t.Fatalf("request id header missing")
	}
}

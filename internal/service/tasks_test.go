package service_test

import (
	"context"
	"testing"

	"github.com/geocoder89/taskhub/internal/apperr"
	"github.com/geocoder89/taskhub/internal/domain/patch"
	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/service"
)

func TestTaskCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.tasks.Create(ctx, f.m1, task.CreateTaskRequest{Title: " Ship it ", ProjectID: f.alpha, AssigneeID: &f.collab.ID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != task.StatusPending || created.Priority != task.PriorityMedium {
		t.Fatalf("expected defaults, got %+v", created)
	}
	if created.Title != "Ship it" || created.CreatorID != f.m1.ID {
		t.Fatalf("unexpected task %+v", created)
	}

	tests := []struct {
		name string
		req  task.CreateTaskRequest
		want apperr.Kind
	}{
		{"unknown project", task.CreateTaskRequest{Title: "x", ProjectID: 999}, apperr.KindNotFound},
		{"foreign project", task.CreateTaskRequest{Title: "x", ProjectID: f.beta}, apperr.KindAuthorization},
		{"blank title", task.CreateTaskRequest{Title: "  ", ProjectID: f.alpha}, apperr.KindValidation},
		{"unknown assignee", task.CreateTaskRequest{Title: "x", ProjectID: f.alpha, AssigneeID: ptr(int64(999))}, apperr.KindValidation},
		{"bad priority", task.CreateTaskRequest{Title: "x", ProjectID: f.alpha, Priority: "Urgent"}, apperr.KindValidation},
		{"bad due date", task.CreateTaskRequest{Title: "x", ProjectID: f.alpha, DueDate: ptr("01/02/2025")}, apperr.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.tasks.Create(ctx, f.m1, tt.req)
			assertKind(t, err, tt.want)
		})
	}

	_, err = f.tasks.Create(ctx, f.collab, task.CreateTaskRequest{Title: "x", ProjectID: f.alpha})
	assertKind(t, err, apperr.KindAuthorization)
}

func TestTaskCollaboratorStatusOnlyUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tk := f.store.Task(t, "Original", f.alpha, f.m1.ID, &f.collab.ID, nil)

	got, err := f.tasks.Update(ctx, f.collab, tk.ID, task.Patch{
		Title:  patch.Of("Hijacked"),
		Status: patch.Of(task.StatusDone),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Title != "Original" {
		t.Fatalf("title must be ignored for assignee, got %q", got.Title)
	}
	if got.Status != task.StatusDone {
		t.Fatalf("expected Done, got %s", got.Status)
	}

	unchanged, err := f.tasks.Update(ctx, f.collab, tk.ID, task.Patch{Title: patch.Of("Again")})
	if err != nil {
		t.Fatalf("update without status: %v", err)
	}
	if unchanged.Title != "Original" || !unchanged.UpdatedAt.Equal(got.UpdatedAt) {
		t.Fatalf("patch without status must be a no-op: %+v", unchanged)
	}

	_, err = f.tasks.Update(ctx, f.collab, tk.ID, task.Patch{Status: patch.Of(task.Status("Blocked"))})
	assertKind(t, err, apperr.KindValidation)
}

func TestTaskUpdateDenied(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tk := f.store.Task(t, "t", f.alpha, f.m1.ID, nil, nil)

	_, err := f.tasks.Update(ctx, f.collab, tk.ID, task.Patch{Status: patch.Of(task.StatusDone)})
	assertKind(t, err, apperr.KindAuthorization)

	_, err = f.tasks.Update(ctx, f.m2, tk.ID, task.Patch{Title: patch.Of("x")})
	assertKind(t, err, apperr.KindAuthorization)

	_, err = f.tasks.Update(ctx, f.m1, 999, task.Patch{Title: patch.Of("x")})
	assertKind(t, err, apperr.KindNotFound)
}

func TestTaskFullEdit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tk := f.store.Task(t, "t", f.alpha, f.m1.ID, &f.collab.ID, ptr("2025-05-01"))

	got, err := f.tasks.Update(ctx, f.m1, tk.ID, task.Patch{
		Title:      patch.Of("Renamed"),
		Priority:   patch.Of(task.PriorityLow),
		AssigneeID: patch.Null[int64](),
		DueDate:    patch.Null[string](),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Title != "Renamed" || got.Priority != task.PriorityLow || got.AssigneeID != nil || got.DueDate != nil {
		t.Fatalf("unexpected task %+v", got)
	}
	if !got.UpdatedAt.After(tk.UpdatedAt) {
		t.Fatalf("updatedAt must advance")
	}

	_, err = f.tasks.Update(ctx, f.admin, tk.ID, task.Patch{AssigneeID: patch.Of(int64(999))})
	assertKind(t, err, apperr.KindValidation)
}

func TestTaskSetStatusIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tk := f.store.Task(t, "t", f.alpha, f.m1.ID, nil, nil)

	first, err := f.tasks.SetStatus(ctx, f.admin, tk.ID, task.StatusInProgress)
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	second, err := f.tasks.SetStatus(ctx, f.admin, tk.ID, task.StatusInProgress)
	if err != nil {
		t.Fatalf("set status again: %v", err)
	}
	if second.Status != task.StatusInProgress || second.UpdatedAt.Before(first.UpdatedAt) {
		t.Fatalf("unexpected second result %+v", second)
	}

	back, err := f.tasks.SetStatus(ctx, f.admin, tk.ID, task.StatusPending)
	if err != nil || back.Status != task.StatusPending {
		t.Fatalf("any transition must be allowed: %+v %v", back, err)
	}

	_, err = f.tasks.SetStatus(ctx, f.admin, tk.ID, task.Status("Archived"))
	assertKind(t, err, apperr.KindValidation)
}

func TestTaskGetAndList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	mine := f.store.Task(t, "mine", f.beta, f.m2.ID, &f.collab.ID, ptr("2025-01-01"))
	f.store.Task(t, "other", f.beta, f.m2.ID, nil, nil)
	f.store.Task(t, "alpha", f.alpha, f.m1.ID, nil, nil)

	got, err := f.tasks.Get(ctx, f.collab, mine.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.Overdue {
		t.Fatalf("expected overdue task")
	}

	_, err = f.tasks.Get(ctx, f.m1, mine.ID)
	assertKind(t, err, apperr.KindAuthorization)

	_, err = f.tasks.Get(ctx, f.m1, 999)
	assertKind(t, err, apperr.KindNotFound)

	tests := []struct {
		name  string
		actor user.User
		query service.ListQuery
		want  int
	}{
		{"admin sees all", f.admin, service.ListQuery{}, 3},
		{"manager sees owned projects", f.m1, service.ListQuery{}, 1},
		{"collaborator sees assigned", f.collab, service.ListQuery{}, 1},
		{"collaborator sees whole accessible project", f.collab, service.ListQuery{ProjectID: &f.beta}, 2},
		{"status filter", f.admin, service.ListQuery{Status: ptr(task.StatusDone)}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.tasks.List(ctx, tt.actor, tt.query)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(got) != tt.want {
				t.Fatalf("expected %d tasks, got %d", tt.want, len(got))
			}
		})
	}

	_, err = f.tasks.List(ctx, f.collab, service.ListQuery{ProjectID: &f.alpha})
	assertKind(t, err, apperr.KindAuthorization)

	_, err = f.tasks.List(ctx, f.m1, service.ListQuery{ProjectID: ptr(int64(999))})
	assertKind(t, err, apperr.KindNotFound)
}

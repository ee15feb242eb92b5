package task

import "testing"

func TestGroupBoard(t *testing.T) {
	tasks := []Task{
		{ID: 1, Status: StatusDone},
		{ID: 2, Status: StatusPending},
		{ID: 3, Status: StatusInProgress},
		{ID: 4, Status: StatusPending},
	}

	b := GroupBoard(7, tasks)

	if b.ProjectID != 7 {
		t.Fatalf("unexpected project id %d", b.ProjectID)
	}
	if len(b.Pending) != 2 || b.Pending[0].ID != 2 || b.Pending[1].ID != 4 {
		t.Fatalf("unexpected pending column %+v", b.Pending)
	}
	if len(b.InProgress) != 1 || len(b.Done) != 1 {
		t.Fatalf("unexpected columns %+v", b)
	}

	empty := GroupBoard(1, nil)
	if empty.Pending == nil || empty.InProgress == nil || empty.Done == nil {
		t.Fatalf("empty columns must be non-nil so they encode as []")
	}
}

package project_test

import (
	"errors"
	"testing"

	"github.com/geocoder89/taskhub/internal/domain/patch"
	"github.com/geocoder89/taskhub/internal/domain/project"
)

func TestPatchValidate(t *testing.T) {
	cur := project.Project{StartDate: "2026-01-01", EndDate: "2026-06-30"}

	tests := []struct {
		name    string
		patch   project.Patch
		wantErr error
	}{
		{"empty", project.Patch{}, nil},
		{"status_ok", project.Patch{Status: patch.Of(project.StatusPaused)}, nil},
		{"status_bad", project.Patch{Status: patch.Of(project.Status("Activo"))}, project.ErrInvalidStatus},
		{"blank_name", project.Patch{Name: patch.Of(" ")}, project.ErrMissingName},
		{"bad_date", project.Patch{EndDate: patch.Of("30/06/2026")}, project.ErrInvalidDate},
		{"end_before_current_start", project.Patch{EndDate: patch.Of("2025-12-31")}, project.ErrDateRange},
		{"start_after_current_end", project.Patch{StartDate: patch.Of("2026-07-01")}, project.ErrDateRange},
		{"move_both", project.Patch{StartDate: patch.Of("2027-01-01"), EndDate: patch.Of("2027-02-01")}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.patch.Validate(cur)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateRequestValidate(t *testing.T) {
	req := project.CreateProjectRequest{Name: "Web", StartDate: "2026-03-01", EndDate: "2026-02-01"}
	if err := req.Validate(); !errors.Is(err, project.ErrDateRange) {
		t.Fatalf("expected date range error, got %v", err)
	}

	req.EndDate = "2026-03-01"
	if err := req.Validate(); err != nil {
		t.Fatalf("same-day project should be valid: %v", err)
	}
}

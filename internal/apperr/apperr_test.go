package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/geocoder89/taskhub/internal/apperr"
)

func TestIsMatchesKindAndCode(t *testing.T) {
	errTaken := apperr.Conflict("email_taken", "email already registered")
	wrapped := fmt.Errorf("create user: %w", errTaken)

	if !errors.Is(wrapped, apperr.ErrConflict) {
		t.Fatalf("expected wrapped error to match kind sentinel")
	}
	if !errors.Is(wrapped, errTaken) {
		t.Fatalf("expected wrapped error to match exact sentinel")
	}
	if errors.Is(wrapped, apperr.Conflict("other", "other")) {
		t.Fatalf("different code must not match")
	}
	if errors.Is(wrapped, apperr.ErrNotFound) {
		t.Fatalf("different kind must not match")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperr.Kind
	}{
		{"validation", apperr.Validation("missing_title", "title is required"), apperr.KindValidation},
		{"wrapped_not_found", fmt.Errorf("x: %w", apperr.NotFound("task_not_found", "task not found")), apperr.KindNotFound},
		{"plain", errors.New("db is down"), apperr.KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := apperr.KindOf(tt.err); got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInternalHidesCauseFromMessage(t *testing.T) {
	cause := errors.New("disk I/O error")
	err := apperr.Internal("could not load task", cause)

	if err.Message != "could not load task" {
		t.Fatalf("unexpected message %q", err.Message)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("internal error should unwrap to its cause")
	}
}

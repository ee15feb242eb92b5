package user_test

import (
	"errors"
	"testing"

	"github.com/geocoder89/taskhub/internal/apperr"
	"github.com/geocoder89/taskhub/internal/domain/user"
)

func TestParseRole(t *testing.T) {
	for _, r := range user.Roles {
		got, err := user.ParseRole(string(r))
		if err != nil || got != r {
			t.Fatalf("ParseRole(%q) = %q, %v", r, got, err)
		}
	}

	if _, err := user.ParseRole("Gestor"); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRoleOrDefault(t *testing.T) {
	r, err := user.CreateUserRequest{}.RoleOrDefault()
	if err != nil || r != user.RoleCollaborator {
		t.Fatalf("default role = %q, %v", r, err)
	}

	r, err = user.CreateUserRequest{Role: "Manager"}.RoleOrDefault()
	if err != nil || r != user.RoleManager {
		t.Fatalf("explicit role = %q, %v", r, err)
	}
}

package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/user"
)

func TestIssueAndVerify(t *testing.T) {
	m := NewManager("secret", time.Hour)
	u := user.User{ID: 42, Role: user.RoleManager}

	raw, issued, err := m.Issue(u)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := m.Verify(raw)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	id, err := claims.UserID()
	if err != nil || id != 42 {
		t.Fatalf("expected user 42, got %d %v", id, err)
	}
	if claims.Role != string(user.RoleManager) {
		t.Fatalf("unexpected role %q", claims.Role)
	}
	if claims.ID == "" || claims.ID != issued.ID {
		t.Fatalf("jti mismatch %q %q", claims.ID, issued.ID)
	}
}

func TestVerifyRejects(t *testing.T) {
	m := NewManager("secret", time.Hour)
	raw, _, err := m.Issue(user.User{ID: 1, Role: user.RoleAdministrator})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	other := NewManager("other-secret", time.Hour)
	expired := NewManager("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	tests := []struct {
		name  string
		m     *Manager
		token string
	}{
		{"garbage", m, "not-a-token"},
		{"wrong secret", other, raw},
		{"expired", expired, raw},
		{"empty", m, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.m.Verify(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

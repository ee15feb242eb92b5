package user

import (
	"time"

	"github.com/geocoder89/taskhub/internal/apperr"
)

type Role string

const (
	RoleAdministrator Role = "Administrator"
	RoleManager       Role = "Manager"
	RoleCollaborator  Role = "Collaborator"
)

// Roles lists every role, in privilege order.
var Roles = []Role{RoleAdministrator, RoleManager, RoleCollaborator}

func (r Role) Valid() bool {
	switch r {
	case RoleAdministrator, RoleManager, RoleCollaborator:
		return true
	}
	return false
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Summary is the public shape returned by auth endpoints.
type Summary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (u User) Summary() Summary {
	return Summary{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdministrator
}

var (
	ErrNotFound    = apperr.NotFound("user_not_found", "User not found")
	ErrEmailTaken  = apperr.Conflict("email_taken", "Email is already registered")
	ErrInvalidRole = apperr.Validation("invalid_role", "Role must be one of Administrator, Manager, Collaborator")
)

type CreateUserRequest struct {
	Name     string `json:"name" binding:"required,max=120"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"omitempty,oneof=Administrator Manager Collaborator"`
}

// RoleOrDefault returns the requested role, defaulting to Collaborator.
func (r CreateUserRequest) RoleOrDefault() (Role, error) {
	if r.Role == "" {
		return RoleCollaborator, nil
	}
	return ParseRole(r.Role)
}

package service

import (
	"context"
	"errors"
	"strings"

	"github.com/geocoder89/taskhub/internal/apperr"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/security"
)

var ErrInvalidCredentials = &apperr.Error{
	Kind:    apperr.KindAuthentication,
	Code:    "invalid_credentials",
	Message: "Email or password is incorrect.",
}

type UserService struct {
	users  UserStore
	hasher security.Hasher
}

func NewUserService(users UserStore, hasher security.Hasher) *UserService {
	return &UserService{users: users, hasher: hasher}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Authenticate checks credentials. Unknown email and wrong password return
// the same error.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (user.User, error) {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrInvalidCredentials
		}
		return user.User{}, err
	}

	if !s.hasher.Check(u.PasswordHash, password) {
		return user.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Get loads the identity record for an authenticated session.
func (s *UserService) Get(ctx context.Context, id int64) (user.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *UserService) List(ctx context.Context, actor user.User) ([]user.User, error) {
	if !actor.IsAdmin() {
		return nil, errAdminOnly
	}
	return s.users.List(ctx)
}

func (s *UserService) Create(ctx context.Context, actor user.User, req user.CreateUserRequest) (user.User, error) {
	if !actor.IsAdmin() {
		return user.User{}, errAdminOnly
	}

	role, err := req.RoleOrDefault()
	if err != nil {
		return user.User{}, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return user.User{}, apperr.Validation("missing_name", "name must not be empty")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return user.User{}, apperr.Internal("Could not create user", err)
	}

	return s.users.Create(ctx, name, normalizeEmail(req.Email), hash, role)
}

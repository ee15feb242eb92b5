package db

import (
	"context"
	"errors"
	"log/slog"

	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/repo/sqlstore"
	"github.com/geocoder89/taskhub/internal/security"
)

type AdminSeed struct {
	Name     string
	Email    string
	Password string
}

// EnsureAdminUser creates the default Administrator when no user holds the
// seed email. An existing account is left untouched.
func EnsureAdminUser(ctx context.Context, users *sqlstore.UsersRepo, hasher security.Hasher, seed AdminSeed) error {
	if seed.Email == "" || seed.Password == "" {
		return nil
	}

	_, err := users.GetByEmail(ctx, seed.Email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, user.ErrNotFound) {
		return err
	}

	hash, err := hasher.Hash(seed.Password)
	if err != nil {
		return err
	}

	name := seed.Name
	if name == "" {
		name = "Administrador"
	}

	_, err = users.Create(ctx, name, seed.Email, hash, user.RoleAdministrator)
	if errors.Is(err, user.ErrEmailTaken) {
		return nil
	}
	if err == nil {
		slog.Info("seeded default administrator", "email", seed.Email)
	}
	return err
}

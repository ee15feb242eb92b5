package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/user"
)

type UsersRepo struct {
	db *DB
}

func NewUsersRepo(db *DB) *UsersRepo {
	return &UsersRepo{db: db}
}

const userColumns = `id, name, email, password_hash, role, created_at`

func scanUser(dest *user.User, created *dbTime) []any {
	return []any{&dest.ID, &dest.Name, &dest.Email, &dest.PasswordHash, &dest.Role, created}
}

func (r *UsersRepo) Create(ctx context.Context, name, email, passwordHash string, role user.Role) (user.User, error) {
	now := time.Now().UTC()

	var id int64
	_, err := r.db.queryRowFound(ctx, "users.create",
		`INSERT INTO users (name, email, password_hash, role, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`,
		[]any{name, email, passwordHash, string(role), formatTime(now)},
		&id,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return user.User{}, user.ErrEmailTaken
		}
		return user.User{}, fmt.Errorf("insert user: %w", err)
	}

	return user.User{
		ID:           id,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now.Truncate(time.Microsecond),
	}, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getOne(ctx, "users.get_by_email", `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	return r.getOne(ctx, "users.get_by_id", `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *UsersRepo) getOne(ctx context.Context, op, query string, arg any) (user.User, error) {
	var u user.User
	var created dbTime

	found, err := r.db.queryRowFound(ctx, op, query, []any{arg}, scanUser(&u, &created)...)
	if err != nil {
		return user.User{}, fmt.Errorf("select user: %w", err)
	}
	if !found {
		return user.User{}, user.ErrNotFound
	}

	u.CreatedAt = created.Time
	return u, nil
}

func (r *UsersRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var one int
	found, err := r.db.queryRowFound(ctx, "users.exists", `SELECT 1 FROM users WHERE id = ?`, []any{id}, &one)
	if err != nil {
		return false, fmt.Errorf("check user: %w", err)
	}
	return found, nil
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	out := make([]user.User, 0)

	err := r.db.query(ctx, "users.list", `SELECT `+userColumns+` FROM users ORDER BY name ASC, id ASC`, nil,
		func(rows *sql.Rows) error {
			var u user.User
			var created dbTime
			if err := rows.Scan(scanUser(&u, &created)...); err != nil {
				return err
			}
			u.CreatedAt = created.Time
			out = append(out, u)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

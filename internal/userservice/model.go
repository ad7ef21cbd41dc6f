package userservice

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/sushihentaime/blogcms/internal/common"
)

var (
	ErrDuplicateEmail = errors.New("duplicate email")
	ErrNotFound       = errors.New("user not found")
	ErrEditConflict   = errors.New("edit conflict")
)

func NewUserModel(db *sql.DB) *UserModel {
	return &UserModel{db: db}
}

func (m *UserModel) insert(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (name, email, password)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, version`

	args := []any{
		u.Name,
		u.Email,
		u.Password.hash,
	}

	err := m.db.QueryRowContext(ctx, query, args...).Scan(&u.ID, &u.CreatedAt, &u.Version)
	if err != nil {
		switch {
		case common.UniqueViolation(err, "users_email_key"):
			return ErrDuplicateEmail
		default:
			return err
		}
	}
	return nil
}

func (m *UserModel) getByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, name, email, password, activated, created_at, version
		FROM users
		WHERE email = $1`

	var u User

	err := m.db.QueryRowContext(ctx, query, email).Scan(&u.ID, &u.Name, &u.Email, &u.Password.hash, &u.Activated, &u.CreatedAt, &u.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrNotFound
		default:
			return nil, err
		}
	}

	return &u, nil
}

// getForToken returns the owner of an unexpired token of the given scope, with their permissions.
func (m *UserModel) getForToken(ctx context.Context, scope tokenScope, hash []byte) (*User, error) {
	query := `
		SELECT u.id, u.name, u.email, u.activated, u.created_at, u.version,
			COALESCE(ARRAY_AGG(p.permission) FILTER (WHERE p.permission IS NOT NULL), '{}')
		FROM users u
		INNER JOIN tokens t ON u.id = t.user_id
		LEFT JOIN user_permissions p ON u.id = p.user_id
		WHERE t.hash = $1 AND t.scope = $2 AND t.expiry > $3
		GROUP BY u.id`

	var (
		u     User
		perms []string
	)

	err := m.db.QueryRowContext(ctx, query, hash, string(scope), time.Now()).Scan(&u.ID, &u.Name, &u.Email, &u.Activated, &u.CreatedAt, &u.Version, pq.Array(&perms))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrNotFound
		default:
			return nil, err
		}
	}

	for _, p := range perms {
		u.Permissions = append(u.Permissions, Permission(p))
	}

	return &u, nil
}

func (m *UserModel) activate(tx *sql.Tx, ctx context.Context, id int, version int) error {
	query := `
		UPDATE users
		SET activated = true, updated_at = NOW(), version = version + 1
		WHERE id = $1 AND version = $2`

	res, err := tx.ExecContext(ctx, query, id, version)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows != 1 {
		switch {
		case rows == 0:
			return ErrEditConflict
		default:
			return errors.New("too many rows affected")
		}
	}

	return nil
}

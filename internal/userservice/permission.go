package userservice

import (
	"context"
	"database/sql"
)

func (m *UserModel) addPermissions(tx *sql.Tx, ctx context.Context, id int, permissions ...Permission) error {
	query := `
		INSERT INTO user_permissions (user_id, permission)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`

	for _, p := range permissions {
		_, err := tx.ExecContext(ctx, query, id, string(p))
		if err != nil {
			return err
		}
	}

	return nil
}

func (u *User) IsAnonymous() bool {
	return u == AnonymousUser
}

func (u *User) IsActivated() bool {
	return u.Activated
}

func (u *User) HasPermission(permission Permission) bool {
	for _, p := range u.Permissions {
		if p == permission {
			return true
		}
	}

	return false
}

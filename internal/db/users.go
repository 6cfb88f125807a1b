package db

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/openkiosk/kioskd/internal/model"
)

func (s *pgStore) CreateUser(ctx context.Context, email, hashedPassword string) (*model.User, error) {
	var u model.User
	const q = `
	INSERT INTO users (email, hashed_password, created_at, updated_at)
	VALUES ($1, $2, now(), now())
	RETURNING id, email, hashed_password, first_name, last_name, is_staff, is_superuser, created_at, updated_at;`
	if err := s.db.GetContext(ctx, &u, q, email, hashedPassword); err != nil {
		log.Error().Err(err).Msg("[db] CreateUser: failed to insert user")
		return nil, err
	}
	return &u, nil
}

func (s *pgStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	const q = `
	SELECT id, email, hashed_password, first_name, last_name, is_staff, is_superuser, created_at, updated_at
	FROM users
	WHERE email = $1;`
	if err := s.db.GetContext(ctx, &u, q, email); err != nil {
		return nil, err
	}
	if err := s.loadPermissions(ctx, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *pgStore) GetUserByID(ctx context.Context, id int) (*model.User, error) {
	var u model.User
	const q = `
	SELECT id, email, hashed_password, first_name, last_name, is_staff, is_superuser, created_at, updated_at
	FROM users
	WHERE id = $1;`
	if err := s.db.GetContext(ctx, &u, q, id); err != nil {
		return nil, err
	}
	if err := s.loadPermissions(ctx, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// loadPermissions fills u.Permissions with the union of the permissions
// granted through the user's roles.
func (s *pgStore) loadPermissions(ctx context.Context, u *model.User) error {
	const q = `
	SELECT DISTINCT rp.permission
	FROM role_permissions rp
	JOIN user_roles ur ON ur.role_id = rp.role_id
	WHERE ur.user_id = $1
	ORDER BY rp.permission;`
	return s.db.SelectContext(ctx, &u.Permissions, q, u.ID)
}

func (s *pgStore) UpdateUser(ctx context.Context, id int, firstName, lastName *string, isStaff, isSuperuser *bool) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET first_name   = COALESCE($2, first_name),
		    last_name    = COALESCE($3, last_name),
		    is_staff     = COALESCE($4, is_staff),
		    is_superuser = COALESCE($5, is_superuser),
		    updated_at   = now()
		WHERE id = $1;`,
		id, firstName, lastName, isStaff, isSuperuser,
	)
	if err != nil {
		log.Error().Err(err).Msg("[db] UpdateUser: failed to update user")
	}
	return err
}

func (s *pgStore) SetUserPassword(ctx context.Context, id int, hashedPassword string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET hashed_password = $2, updated_at = now()
		WHERE id = $1;`,
		id, hashedPassword,
	)
	if err != nil {
		log.Error().Err(err).Msg("[db] SetUserPassword: failed to update password")
	}
	return err
}

func (s *pgStore) ListUsers(ctx context.Context) ([]model.User, error) {
	var out []model.User
	const q = `
	SELECT id, email, hashed_password, first_name, last_name, is_staff, is_superuser, created_at, updated_at
	FROM users
	ORDER BY id;`
	if err := s.db.SelectContext(ctx, &out, q); err != nil {
		log.Error().Err(err).Msg("[db] ListUsers: failed to select users")
		return nil, err
	}
	return out, nil
}

func (s *pgStore) GetOrCreateRole(ctx context.Context, name string) (*model.Role, error) {
	var r model.Role
	// upsert so concurrent callers cannot race a duplicate insert
	const q = `
	INSERT INTO roles (name) VALUES ($1)
	ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
	RETURNING id, name;`
	if err := s.db.GetContext(ctx, &r, q, name); err != nil {
		log.Error().Err(err).Msg("[db] GetOrCreateRole: failed to upsert role")
		return nil, err
	}
	return &r, nil
}

func (s *pgStore) GetRoleByName(ctx context.Context, name string) (*model.Role, error) {
	var r model.Role
	if err := s.db.GetContext(ctx, &r, `SELECT id, name FROM roles WHERE name = $1;`, name); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *pgStore) SetRolePermissions(ctx context.Context, roleID int, permissions []string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM role_permissions WHERE role_id = $1;`, roleID); err != nil {
		return err
	}
	for _, perm := range permissions {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO role_permissions (role_id, permission) VALUES ($1, $2)
			ON CONFLICT DO NOTHING;`, roleID, perm); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *pgStore) SetUserRoles(ctx context.Context, userID int, roleIDs []int) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = $1;`, userID); err != nil {
		return err
	}
	for _, roleID := range roleIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING;`, userID, roleID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *pgStore) AddUserToRole(ctx context.Context, userID, roleID int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING;`, userID, roleID)
	if err != nil {
		log.Error().Err(err).Msg("[db] AddUserToRole: failed to insert user role")
	}
	return err
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vapeshop/catalog-server/internal/domain/users"
)

type UserRepository struct {
	conn
}

const userColumns = `
SELECT u.id, u.email, u.first_name, u.last_name, u.password_hash, u.created_at,
       COALESCE(array_agg(r.name ORDER BY r.name) FILTER (WHERE r.name IS NOT NULL), '{}') AS roles
  FROM users u
  LEFT JOIN user_roles ur ON ur.user_id = u.id
  LEFT JOIN roles r ON r.id = ur.role_id`

func (r *UserRepository) getUser(ctx context.Context, q queryer, where string, arg any) (*users.User, error) {
	var u users.User
	err := q.QueryRow(ctx, userColumns+` WHERE `+where+` GROUP BY u.id`, arg).Scan(
		&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &u.CreatedAt, &u.Roles,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, users.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) CreateUser(ctx context.Context, u users.User, roles []string) (*users.User, error) {
	var created *users.User
	err := r.inTx(ctx, func(q queryer) error {
		// ON CONFLICT keeps an enclosing transaction usable when the email is taken.
		tag, err := q.Exec(ctx, `
INSERT INTO users (id, email, first_name, last_name, password_hash, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT DO NOTHING`, u.ID, u.Email, u.FirstName, u.LastName, u.PasswordHash, u.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert user: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return users.ErrEmailTaken
		}

		for _, role := range roles {
			tag, err := q.Exec(ctx, `
INSERT INTO user_roles (user_id, role_id)
SELECT $1, id FROM roles WHERE lower(name) = lower($2)`, u.ID, role)
			if err != nil {
				return fmt.Errorf("assign role %s: %w", role, err)
			}
			if tag.RowsAffected() == 0 {
				return users.ErrRoleNotFound
			}
		}

		created, err = r.getUser(ctx, q, `u.id = $1`, u.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, id string) (*users.User, error) {
	return r.getUser(ctx, r.queryer(), `u.id = $1`, id)
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*users.User, error) {
	return r.getUser(ctx, r.queryer(), `lower(u.email) = lower($1)`, email)
}

func (r *UserRepository) GetRoleByName(ctx context.Context, name string) (*users.Role, error) {
	var role users.Role
	err := r.queryer().QueryRow(ctx,
		`SELECT id, name FROM roles WHERE lower(name) = lower($1)`, name,
	).Scan(&role.ID, &role.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, users.ErrRoleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get role: %w", err)
	}
	return &role, nil
}

func (r *UserRepository) CreateRole(ctx context.Context, name string) (*users.Role, error) {
	role := users.Role{Name: name}
	err := r.queryer().QueryRow(ctx,
		`INSERT INTO roles (name) VALUES ($1) ON CONFLICT DO NOTHING RETURNING id`, name,
	).Scan(&role.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, users.ErrRoleExists
	}
	if err != nil {
		return nil, fmt.Errorf("insert role: %w", err)
	}
	return &role, nil
}

func (r *UserRepository) AddUserToRole(ctx context.Context, userID string, roleID int64) error {
	_, err := r.queryer().Exec(ctx,
		`INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)`, userID, roleID,
	)
	switch {
	case isUniqueViolation(err):
		return users.ErrAlreadyInRole
	case isForeignKeyViolation(err):
		return users.ErrUserNotFound
	case err != nil:
		return fmt.Errorf("add user to role: %w", err)
	}
	return nil
}

func (r *UserRepository) RemoveUserFromRole(ctx context.Context, userID string, roleID int64) (bool, error) {
	tag, err := r.queryer().Exec(ctx,
		`DELETE FROM user_roles WHERE user_id = $1 AND role_id = $2`, userID, roleID,
	)
	if err != nil {
		return false, fmt.Errorf("remove user from role: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

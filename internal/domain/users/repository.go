package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vapeshop/catalog-server/internal/domain/catalog"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = fmt.Errorf("user %w", catalog.ErrNotFound)
	ErrRoleNotFound       = catalog.Invalid("roleName", "role does not exist")
	ErrRoleExists         = fmt.Errorf("role %w", catalog.ErrDuplicate)
	ErrAlreadyInRole      = fmt.Errorf("user role %w", catalog.ErrDuplicate)
	ErrNotInRole          = catalog.Invalid("roleName", "user is not in role")
	ErrEmailTaken         = catalog.Invalid("email", "is already registered")
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	PasswordHash string    `json:"-"`
	Roles        []string  `json:"roles"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Repository interface {
	// CreateUser inserts the user and its role memberships atomically.
	// Returns ErrEmailTaken when the email is already registered.
	CreateUser(ctx context.Context, u User, roles []string) (*User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
	// GetUserByEmail matches case-insensitively.
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	GetRoleByName(ctx context.Context, name string) (*Role, error)
	CreateRole(ctx context.Context, name string) (*Role, error)
	AddUserToRole(ctx context.Context, userID string, roleID int64) error
	// RemoveUserFromRole reports whether a membership was deleted.
	RemoveUserFromRole(ctx context.Context, userID string, roleID int64) (bool, error)
}

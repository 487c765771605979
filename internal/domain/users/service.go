package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vapeshop/catalog-server/internal/auth"
	"github.com/vapeshop/catalog-server/internal/domain/catalog"
	"github.com/vapeshop/catalog-server/internal/domain/ids"
	"github.com/vapeshop/catalog-server/internal/sanitize"
)

// TokenIssuer signs access tokens. *auth.JWTManager satisfies it.
type TokenIssuer interface {
	Generate(subject, email string, roles []string) (string, time.Time, error)
}

type RegisterParams struct {
	Email     string `json:"email" validate:"required,email,max=256"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"firstName" validate:"max=100"`
	LastName  string `json:"lastName" validate:"max=100"`
}

type LoginParams struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RoleAssignment struct {
	UserID   string `json:"userId" validate:"required"`
	RoleName string `json:"roleName" validate:"required,max=256"`
}

type AuthResult struct {
	Token      string    `json:"token"`
	Expiration time.Time `json:"expiration"`
}

type Service struct {
	repo       Repository
	tokens     TokenIssuer
	bcryptCost int
	logger     zerolog.Logger
}

func NewService(repo Repository, tokens TokenIssuer, bcryptCost int, logger zerolog.Logger) *Service {
	return &Service{
		repo:       repo,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		logger:     logger.With().Str("component", "users").Logger(),
	}
}

// Register creates an account in the User role and signs a token for it.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*AuthResult, error) {
	params.Email = normalizeEmail(params.Email)
	params.FirstName = sanitize.Name(params.FirstName)
	params.LastName = sanitize.Name(params.LastName)
	if err := catalog.ValidateStruct(params); err != nil {
		return nil, err
	}
	if err := auth.ValidatePassword(params.Password); err != nil {
		return nil, catalog.Invalid("password", err.Error())
	}

	if _, err := s.repo.GetUserByEmail(ctx, params.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	user, err := s.createUser(ctx, params, []string{auth.RoleUser})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("user registered")
	return s.issue(user)
}

func (s *Service) Login(ctx context.Context, params LoginParams) (*AuthResult, error) {
	params.Email = normalizeEmail(params.Email)
	if err := catalog.ValidateStruct(params); err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserByEmail(ctx, params.Email)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !auth.CheckPassword(user.PasswordHash, params.Password) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

// Me returns the profile of the authenticated user.
func (s *Service) Me(ctx context.Context, userID string) (*User, error) {
	if !ids.IsULID(userID) {
		return nil, ErrUserNotFound
	}
	return s.repo.GetUserByID(ctx, ids.Normalize(userID))
}

func (s *Service) CreateRole(ctx context.Context, name string) (*Role, error) {
	name = sanitize.Name(name)
	if name == "" {
		return nil, catalog.Invalid("name", "is required")
	}
	if len(name) > 256 {
		return nil, catalog.Invalid("name", "must be at most 256 characters")
	}
	if _, err := s.repo.GetRoleByName(ctx, name); err == nil {
		return nil, ErrRoleExists
	} else if !errors.Is(err, ErrRoleNotFound) {
		return nil, fmt.Errorf("lookup role: %w", err)
	}
	return s.repo.CreateRole(ctx, name)
}

func (s *Service) AssignRole(ctx context.Context, params RoleAssignment) error {
	user, role, err := s.resolveAssignment(ctx, params)
	if err != nil {
		return err
	}
	if auth.HasRole(user.Roles, role.Name) {
		return ErrAlreadyInRole
	}
	return s.repo.AddUserToRole(ctx, user.ID, role.ID)
}

func (s *Service) RemoveRole(ctx context.Context, params RoleAssignment) error {
	user, role, err := s.resolveAssignment(ctx, params)
	if err != nil {
		return err
	}
	removed, err := s.repo.RemoveUserFromRole(ctx, user.ID, role.ID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotInRole
	}
	return nil
}

func (s *Service) resolveAssignment(ctx context.Context, params RoleAssignment) (*User, *Role, error) {
	params.UserID = strings.TrimSpace(params.UserID)
	params.RoleName = sanitize.Name(params.RoleName)
	if err := catalog.ValidateStruct(params); err != nil {
		return nil, nil, err
	}

	user, err := s.repo.GetUserByID(ctx, params.UserID)
	if err != nil {
		return nil, nil, err
	}
	role, err := s.repo.GetRoleByName(ctx, params.RoleName)
	if err != nil {
		return nil, nil, err
	}
	return user, role, nil
}

func (s *Service) createUser(ctx context.Context, params RegisterParams, roles []string) (*User, error) {
	hash, err := auth.HashPassword(params.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	id, err := ids.NewULID()
	if err != nil {
		return nil, fmt.Errorf("generate user id: %w", err)
	}
	return s.repo.CreateUser(ctx, User{
		ID:           id,
		Email:        params.Email,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}, roles)
}

func (s *Service) issue(user *User) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.Generate(user.ID, user.Email, user.Roles)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &AuthResult{Token: token, Expiration: expiresAt}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/vapeshop/catalog-server/internal/auth"
)

// AdminSeed describes the account created on first start.
type AdminSeed struct {
	Email    string
	Password string
}

// Bootstrap creates the default roles and the seed admin when they are
// missing. Running it again is a no-op.
func (s *Service) Bootstrap(ctx context.Context, seed AdminSeed) error {
	for _, name := range auth.DefaultRoles {
		if err := s.ensureRole(ctx, name); err != nil {
			return err
		}
	}

	email := normalizeEmail(seed.Email)
	if email == "" {
		return nil
	}
	if _, err := s.repo.GetUserByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, ErrUserNotFound) {
		return fmt.Errorf("lookup admin: %w", err)
	}

	if seed.Password == "" {
		s.logger.Warn().Str("email", email).Msg("ADMIN_PASSWORD not set, skipping admin bootstrap")
		return nil
	}
	if err := auth.ValidatePassword(seed.Password); err != nil {
		return fmt.Errorf("admin password: %w", err)
	}

	user, err := s.createUser(ctx, RegisterParams{
		Email:     email,
		Password:  seed.Password,
		FirstName: "Admin",
		LastName:  "User",
	}, []string{auth.RoleAdmin})
	if errors.Is(err, ErrEmailTaken) {
		// Another replica seeded it between the lookup and the insert.
		return nil
	}
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID).Str("email", email).Msg("admin user created")
	return nil
}

func (s *Service) ensureRole(ctx context.Context, name string) error {
	_, err := s.repo.GetRoleByName(ctx, name)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrRoleNotFound) {
		return fmt.Errorf("lookup role %s: %w", name, err)
	}
	if _, err := s.repo.CreateRole(ctx, name); err != nil && !errors.Is(err, ErrRoleExists) {
		return fmt.Errorf("create role %s: %w", name, err)
	}
	s.logger.Info().Str("role", name).Msg("role created")
	return nil
}

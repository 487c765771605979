package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/vapeshop/catalog-server/internal/domain/users"
	"github.com/vapeshop/catalog-server/internal/storage"
)

func seedRoles(t *testing.T, ctx context.Context, repo users.Repository, names ...string) {
	t.Helper()
	for _, name := range names {
		_, err := repo.CreateRole(ctx, name)
		require.NoError(t, err)
	}
}

func newUser(email string) users.User {
	return users.User{
		ID:           ulid.Make().String(),
		Email:        email,
		FirstName:    "Val",
		LastName:     "Vaper",
		PasswordHash: "$2a$04$hash",
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestUserRepositoryCreateAndLookup(t *testing.T) {
	ctx := context.Background()
	repo := setupRepository(t, ctx).Users()
	seedRoles(t, ctx, repo, "Admin", "User")

	created, err := repo.CreateUser(ctx, newUser("val@example.com"), []string{"User"})
	require.NoError(t, err)
	require.Equal(t, []string{"User"}, created.Roles)

	byEmail, err := repo.GetUserByEmail(ctx, "VAL@example.com")
	require.NoError(t, err)
	require.Equal(t, created.ID, byEmail.ID)
	require.Equal(t, "$2a$04$hash", byEmail.PasswordHash)

	_, err = repo.CreateUser(ctx, newUser("Val@Example.com"), []string{"User"})
	require.ErrorIs(t, err, users.ErrEmailTaken)

	_, err = repo.GetUserByID(ctx, "missing")
	require.ErrorIs(t, err, users.ErrUserNotFound)
}

func TestUserRepositoryCreateRollsBackOnUnknownRole(t *testing.T) {
	ctx := context.Background()
	root := setupRepository(t, ctx)

	_, err := root.Users().CreateUser(ctx, newUser("val@example.com"), []string{"Ghost"})
	require.ErrorIs(t, err, users.ErrRoleNotFound)
	require.Zero(t, countRows(t, ctx, root.pool, "users"))
}

func TestUserRepositoryRoles(t *testing.T) {
	ctx := context.Background()
	repo := setupRepository(t, ctx).Users()
	seedRoles(t, ctx, repo, "Admin", "User")

	_, err := repo.CreateRole(ctx, "admin")
	require.ErrorIs(t, err, users.ErrRoleExists)

	role, err := repo.GetRoleByName(ctx, "ADMIN")
	require.NoError(t, err)
	require.Equal(t, "Admin", role.Name)

	_, err = repo.GetRoleByName(ctx, "Ghost")
	require.ErrorIs(t, err, users.ErrRoleNotFound)

	user, err := repo.CreateUser(ctx, newUser("val@example.com"), []string{"User"})
	require.NoError(t, err)

	require.NoError(t, repo.AddUserToRole(ctx, user.ID, role.ID))
	require.ErrorIs(t, repo.AddUserToRole(ctx, user.ID, role.ID), users.ErrAlreadyInRole)
	require.ErrorIs(t, repo.AddUserToRole(ctx, "missing", role.ID), users.ErrUserNotFound)

	got, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"Admin", "User"}, got.Roles)

	removed, err := repo.RemoveUserFromRole(ctx, user.ID, role.ID)
	require.NoError(t, err)
	require.True(t, removed)

	removed, err = repo.RemoveUserFromRole(ctx, user.ID, role.ID)
	require.NoError(t, err)
	require.False(t, removed)
}

func TestUserRepositoryConflictsKeepTransactionUsable(t *testing.T) {
	ctx := context.Background()
	root := setupRepository(t, ctx)
	seedRoles(t, ctx, root.Users(), "Admin", "User")
	_, err := root.Users().CreateUser(ctx, newUser("val@example.com"), []string{"User"})
	require.NoError(t, err)

	err = root.WithTx(ctx, func(ctx context.Context, tx storage.Repository) error {
		_, err := tx.Users().CreateRole(ctx, "ADMIN")
		require.ErrorIs(t, err, users.ErrRoleExists)

		_, err = tx.Users().CreateUser(ctx, newUser("VAL@example.com"), []string{"User"})
		require.ErrorIs(t, err, users.ErrEmailTaken)

		_, err = tx.Users().CreateRole(ctx, "Moderator")
		return err
	})
	require.NoError(t, err)

	_, err = root.Users().GetRoleByName(ctx, "Moderator")
	require.NoError(t, err)
	require.Equal(t, 1, countRows(t, ctx, root.pool, "users"))
}

// staleLookup reports the admin as missing so Bootstrap races into the insert.
type staleLookup struct {
	users.Repository
}

func (staleLookup) GetUserByEmail(context.Context, string) (*users.User, error) {
	return nil, users.ErrUserNotFound
}

func TestBootstrapInTransactionWithAdminAlreadySeeded(t *testing.T) {
	ctx := context.Background()
	root := setupRepository(t, ctx)
	seed := users.AdminSeed{Email: "admin@vapeshop.test", Password: "Admin123!"}

	first := users.NewService(root.Users(), nil, 4, zerolog.Nop())
	require.NoError(t, first.Bootstrap(ctx, seed))

	err := root.WithTx(ctx, func(ctx context.Context, tx storage.Repository) error {
		return users.NewService(staleLookup{tx.Users()}, nil, 4, zerolog.Nop()).Bootstrap(ctx, seed)
	})
	require.NoError(t, err)
	require.Equal(t, 1, countRows(t, ctx, root.pool, "users"))
	require.Equal(t, 2, countRows(t, ctx, root.pool, "roles"))
}

func TestMigrationVersion(t *testing.T) {
	ctx := context.Background()
	pool, dbURL := setupPostgres(t, ctx)

	version, dirty, err := MigrationVersion(dbURL, "")
	require.NoError(t, err)
	require.False(t, dirty)
	require.Equal(t, uint(2), version)

	repo, err := NewRepository(pool)
	require.NoError(t, err)
	status, dirty, err := repo.MigrationStatus(ctx)
	require.NoError(t, err)
	require.False(t, dirty)
	require.Equal(t, int64(2), status)
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vapeshop/catalog-server/internal/domain/components"
	"github.com/vapeshop/catalog-server/internal/domain/devices"
	"github.com/vapeshop/catalog-server/internal/domain/inventory"
	"github.com/vapeshop/catalog-server/internal/domain/liquids"
	"github.com/vapeshop/catalog-server/internal/domain/manufacturers"
	"github.com/vapeshop/catalog-server/internal/domain/users"
	"github.com/vapeshop/catalog-server/internal/storage"
)

// Repository implements storage.Repository with a PostgreSQL backend.
type Repository struct {
	conn
}

func NewRepository(pool *pgxpool.Pool) (*Repository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool cannot be nil")
	}
	return &Repository{conn: conn{pool: pool}}, nil
}

func (r *Repository) Manufacturers() manufacturers.Repository {
	return &ManufacturerRepository{conn: r.conn}
}

func (r *Repository) Liquids() liquids.Repository {
	return &LiquidRepository{conn: r.conn}
}

func (r *Repository) Devices() devices.Repository {
	return &DeviceRepository{conn: r.conn}
}

func (r *Repository) Components() components.Repository {
	return &ComponentRepository{conn: r.conn}
}

func (r *Repository) Inventory() inventory.Repository {
	return &InventoryRepository{conn: r.conn}
}

func (r *Repository) Users() users.Repository {
	return &UserRepository{conn: r.conn}
}

// WithTx executes fn within a database transaction. Repositories obtained
// from the storage.Repository passed to fn share that transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, storage.Repository) error) error {
	if r.tx != nil {
		return fn(ctx, r)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txRepo := &Repository{conn: conn{pool: r.pool, tx: tx}}
	if err := fn(ctx, txRepo); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback after error %v: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Ping checks connectivity for health probes.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// MigrationStatus reads the golang-migrate bookkeeping row.
func (r *Repository) MigrationStatus(ctx context.Context) (int64, bool, error) {
	var version int64
	var dirty bool
	err := r.queryer().QueryRow(ctx, `SELECT version, dirty FROM schema_migrations LIMIT 1`).Scan(&version, &dirty)
	if err != nil {
		return 0, false, fmt.Errorf("read schema_migrations: %w", err)
	}
	return version, dirty, nil
}

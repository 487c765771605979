package storage

import (
	"context"

	"github.com/vapeshop/catalog-server/internal/domain/components"
	"github.com/vapeshop/catalog-server/internal/domain/devices"
	"github.com/vapeshop/catalog-server/internal/domain/inventory"
	"github.com/vapeshop/catalog-server/internal/domain/liquids"
	"github.com/vapeshop/catalog-server/internal/domain/manufacturers"
	"github.com/vapeshop/catalog-server/internal/domain/users"
)

// Repository groups data access by domain.
type Repository interface {
	Manufacturers() manufacturers.Repository
	Liquids() liquids.Repository
	Devices() devices.Repository
	Components() components.Repository
	Inventory() inventory.Repository
	Users() users.Repository

	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
}

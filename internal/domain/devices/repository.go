package devices

import (
	"context"
	"fmt"

	"github.com/vapeshop/catalog-server/internal/domain/catalog"
)

var ErrNotFound = fmt.Errorf("device %w", catalog.ErrNotFound)

type Device struct {
	ID int64 `json:"id"`
	catalog.Item
	Type                 string               `json:"type"`
	MaxPowerW            int                  `json:"maxPowerW"`
	CartridgeVolumeML    int                  `json:"cartridgeVolumeMl"`
	WarrantyMonths       int                  `json:"warrantyMonths"`
	CompatibleComponents []catalog.Ref        `json:"compatibleComponents"`
	Stock                []catalog.StockCount `json:"stock"`
}

type Repository interface {
	List(ctx context.Context, filter catalog.Filter) ([]Device, error)
	GetByID(ctx context.Context, id int64) (*Device, error)
	Create(ctx context.Context, d Device) (*Device, error)
	// Update returns ErrNotFound when no device has d.ID.
	Update(ctx context.Context, d Device) (*Device, error)
	Delete(ctx context.Context, id int64) error
	// AddLink returns catalog.ErrLinkExists for a duplicate pair and
	// catalog.ErrLinkNotFound when either side is missing.
	AddLink(ctx context.Context, link catalog.Link) error
	RemoveLink(ctx context.Context, link catalog.Link) error
}

package components

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vapeshop/catalog-server/internal/domain/catalog"
)

var ErrNotFound = fmt.Errorf("component %w", catalog.ErrNotFound)

// Component mirrors the catalog item fields but lives in its own table and
// does not share ids with liquids or devices.
type Component struct {
	ID                int64                `json:"id"`
	Name              string               `json:"name"`
	Description       string               `json:"description"`
	ManufacturerID    int64                `json:"manufacturerId"`
	Price             decimal.Decimal      `json:"price"`
	Image             []byte               `json:"image,omitempty"`
	Type              string               `json:"type"`
	VolumeML          int                  `json:"volumeMl"`
	CompatibleDevices []catalog.Ref        `json:"compatibleDevices"`
	Stock             []catalog.StockCount `json:"stock"`
}

// item exposes the shared fields so validation and normalization stay in one place.
func (c *Component) item() catalog.Item {
	return catalog.Item{
		Name:           c.Name,
		Description:    c.Description,
		ManufacturerID: c.ManufacturerID,
		Price:          c.Price,
		Image:          c.Image,
	}
}

func (c *Component) setItem(it catalog.Item) {
	c.Name = it.Name
	c.Description = it.Description
	c.ManufacturerID = it.ManufacturerID
	c.Price = it.Price
	c.Image = it.Image
}

type Repository interface {
	List(ctx context.Context, filter catalog.Filter) ([]Component, error)
	GetByID(ctx context.Context, id int64) (*Component, error)
	Create(ctx context.Context, c Component) (*Component, error)
	// Update returns ErrNotFound when no component has c.ID.
	Update(ctx context.Context, c Component) (*Component, error)
	Delete(ctx context.Context, id int64) error
	AddLink(ctx context.Context, link catalog.Link) error
	RemoveLink(ctx context.Context, link catalog.Link) error
}

package liquids

import (
	"context"
	"fmt"

	"github.com/vapeshop/catalog-server/internal/domain/catalog"
)

var ErrNotFound = fmt.Errorf("liquid %w", catalog.ErrNotFound)

type Liquid struct {
	ID int64 `json:"id"`
	catalog.Item
	Type       string               `json:"type"`
	VolumeML   int                  `json:"volumeMl"`
	StrengthMG int                  `json:"strengthMg"`
	VGPGRatio  string               `json:"vgPgRatio"`
	Stock      []catalog.StockCount `json:"stock"`
}

type Repository interface {
	List(ctx context.Context, filter catalog.Filter) ([]Liquid, error)
	GetByID(ctx context.Context, id int64) (*Liquid, error)
	Create(ctx context.Context, l Liquid) (*Liquid, error)
	// Update returns ErrNotFound when no liquid has l.ID.
	Update(ctx context.Context, l Liquid) (*Liquid, error)
	Delete(ctx context.Context, id int64) error
}

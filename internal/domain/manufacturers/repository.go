package manufacturers

import (
	"context"
	"fmt"

	"github.com/vapeshop/catalog-server/internal/domain/catalog"
)

var (
	ErrNotFound  = fmt.Errorf("manufacturer %w", catalog.ErrNotFound)
	ErrDuplicate = fmt.Errorf("manufacturer name %w", catalog.ErrDuplicate)
	ErrInUse     = fmt.Errorf("manufacturer is referenced by products: %w", catalog.ErrConflict)
)

type Manufacturer struct {
	ID   int64  `json:"id"`
	Name string `json:"name" validate:"required,max=100"`
}

type Repository interface {
	List(ctx context.Context) ([]Manufacturer, error)
	GetByID(ctx context.Context, id int64) (*Manufacturer, error)
	// ExistsByName compares names case-insensitively, ignoring excludeID.
	ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error)
	Create(ctx context.Context, m Manufacturer) (*Manufacturer, error)
	Update(ctx context.Context, m Manufacturer) (*Manufacturer, error)
	Delete(ctx context.Context, id int64) error
}

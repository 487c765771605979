// Package inventory tracks per-warehouse stock counts for every product kind.
package inventory

import (
	"context"
	"fmt"

	"github.com/vapeshop/catalog-server/internal/domain/catalog"
)

// Kind selects which product table a stock count belongs to.
type Kind string

const (
	KindLiquid    Kind = "liquid"
	KindDevice    Kind = "device"
	KindComponent Kind = "component"
)

func (k Kind) Valid() bool {
	switch k {
	case KindLiquid, KindDevice, KindComponent:
		return true
	}
	return false
}

var (
	ErrProductNotFound = fmt.Errorf("product %w", catalog.ErrNotFound)
	ErrUnknownKind     = catalog.Invalid("kind", "unknown product kind")
)

type Repository interface {
	ProductExists(ctx context.Context, kind Kind, productID int64) (bool, error)
	List(ctx context.Context, kind Kind, productID int64) ([]catalog.StockCount, error)
	// Upsert returns ErrProductNotFound when the product row is missing.
	Upsert(ctx context.Context, kind Kind, productID int64, warehouse string, count int) (*catalog.StockCount, error)
	Delete(ctx context.Context, kind Kind, productID int64, warehouse string) error
}

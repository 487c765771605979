package inventory

import (
	"context"
	"fmt"

	"github.com/vapeshop/catalog-server/internal/domain/catalog"
	"github.com/vapeshop/catalog-server/internal/sanitize"
)

// SetStockParams is the body of a stock update for one warehouse.
type SetStockParams struct {
	Warehouse string `json:"warehouseName" validate:"required,max=100"`
	Count     int    `json:"count" validate:"gte=0,lte=2147483647"`
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, kind Kind, productID int64) ([]catalog.StockCount, error) {
	if !kind.Valid() {
		return nil, ErrUnknownKind
	}
	if productID <= 0 {
		return nil, ErrProductNotFound
	}
	exists, err := s.repo.ProductExists(ctx, kind, productID)
	if err != nil {
		return nil, fmt.Errorf("check product: %w", err)
	}
	if !exists {
		return nil, ErrProductNotFound
	}
	return s.repo.List(ctx, kind, productID)
}

// Set creates or overwrites the count held in one warehouse.
func (s *Service) Set(ctx context.Context, kind Kind, productID int64, params SetStockParams) (*catalog.StockCount, error) {
	if !kind.Valid() {
		return nil, ErrUnknownKind
	}
	if productID <= 0 {
		return nil, ErrProductNotFound
	}
	params.Warehouse = sanitize.Name(params.Warehouse)
	if err := catalog.ValidateStruct(params); err != nil {
		return nil, err
	}
	return s.repo.Upsert(ctx, kind, productID, params.Warehouse, params.Count)
}

// Remove succeeds when no count is recorded for the warehouse.
func (s *Service) Remove(ctx context.Context, kind Kind, productID int64, warehouse string) error {
	if !kind.Valid() {
		return ErrUnknownKind
	}
	warehouse = sanitize.Name(warehouse)
	if productID <= 0 || warehouse == "" {
		return nil
	}
	return s.repo.Delete(ctx, kind, productID, warehouse)
}

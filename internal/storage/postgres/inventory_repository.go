package postgres

import (
	"context"
	"fmt"

	"github.com/vapeshop/catalog-server/internal/domain/catalog"
	"github.com/vapeshop/catalog-server/internal/domain/inventory"
)

type InventoryRepository struct {
	conn
}

func (r *InventoryRepository) ProductExists(ctx context.Context, kind inventory.Kind, productID int64) (bool, error) {
	_, products, err := stockTable(kind)
	if err != nil {
		return false, err
	}
	var exists bool
	err = r.queryer().QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM `+products+` WHERE id = $1)`, productID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check %s: %w", products, err)
	}
	return exists, nil
}

func (r *InventoryRepository) List(ctx context.Context, kind inventory.Kind, productID int64) ([]catalog.StockCount, error) {
	stock, err := loadStock(ctx, r.queryer(), kind, []int64{productID})
	if err != nil {
		return nil, err
	}
	return nonNilStock(stock[productID]), nil
}

func (r *InventoryRepository) Upsert(ctx context.Context, kind inventory.Kind, productID int64, warehouse string, count int) (*catalog.StockCount, error) {
	table, _, err := stockTable(kind)
	if err != nil {
		return nil, err
	}

	var s catalog.StockCount
	err = r.queryer().QueryRow(ctx, `
INSERT INTO `+table+` (warehouse_name, count, product_id)
VALUES ($1, $2, $3)
ON CONFLICT (product_id, warehouse_name)
DO UPDATE SET count = EXCLUDED.count, updated_at = now()
RETURNING id, warehouse_name, count, product_id, updated_at`, warehouse, count, productID,
	).Scan(&s.ID, &s.WarehouseName, &s.Count, &s.ProductID, &s.UpdatedAt)
	if isForeignKeyViolation(err) {
		return nil, inventory.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("upsert %s: %w", table, err)
	}
	return &s, nil
}

func (r *InventoryRepository) Delete(ctx context.Context, kind inventory.Kind, productID int64, warehouse string) error {
	table, _, err := stockTable(kind)
	if err != nil {
		return err
	}
	_, err = r.queryer().Exec(ctx,
		`DELETE FROM `+table+` WHERE product_id = $1 AND warehouse_name = $2`, productID, warehouse,
	)
	if err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	return nil
}

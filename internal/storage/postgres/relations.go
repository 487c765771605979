package postgres

import (
	"context"
	"fmt"

	"github.com/vapeshop/catalog-server/internal/domain/catalog"
	"github.com/vapeshop/catalog-server/internal/domain/inventory"
)

// stockTables maps a product kind to its stock table and the table holding
// the product rows. Only these constants are ever interpolated into SQL.
var stockTables = map[inventory.Kind]struct {
	stock   string
	product string
}{
	inventory.KindLiquid:    {stock: "liquid_stock_counts", product: "liquids"},
	inventory.KindDevice:    {stock: "device_stock_counts", product: "devices"},
	inventory.KindComponent: {stock: "component_stock_counts", product: "components"},
}

func stockTable(kind inventory.Kind) (string, string, error) {
	tables, ok := stockTables[kind]
	if !ok {
		return "", "", inventory.ErrUnknownKind
	}
	return tables.stock, tables.product, nil
}

// loadStock returns the stock counts of every product in ids, keyed by product id.
func loadStock(ctx context.Context, q queryer, kind inventory.Kind, ids []int64) (map[int64][]catalog.StockCount, error) {
	out := make(map[int64][]catalog.StockCount, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	table, _, err := stockTable(kind)
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, `
SELECT id, warehouse_name, count, product_id, updated_at
  FROM `+table+`
 WHERE product_id = ANY($1)
 ORDER BY product_id, warehouse_name`, ids)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var s catalog.StockCount
		if err := rows.Scan(&s.ID, &s.WarehouseName, &s.Count, &s.ProductID, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock count: %w", err)
		}
		out[s.ProductID] = append(out[s.ProductID], s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}
	return out, nil
}

// loadComponentsByDevice returns the compatible components of each device.
func loadComponentsByDevice(ctx context.Context, q queryer, deviceIDs []int64) (map[int64][]catalog.Ref, error) {
	return loadRefs(ctx, q, `
SELECT dc.device_id, c.id, c.name, c.type
  FROM device_components dc
  JOIN components c ON c.id = dc.component_id
 WHERE dc.device_id = ANY($1)
 ORDER BY dc.device_id, c.id`, deviceIDs)
}

// loadDevicesByComponent returns the compatible devices of each component.
func loadDevicesByComponent(ctx context.Context, q queryer, componentIDs []int64) (map[int64][]catalog.Ref, error) {
	return loadRefs(ctx, q, `
SELECT dc.component_id, p.id, p.name, d.type
  FROM device_components dc
  JOIN devices d ON d.id = dc.device_id
  JOIN products p ON p.id = d.id
 WHERE dc.component_id = ANY($1)
 ORDER BY dc.component_id, p.id`, componentIDs)
}

func loadRefs(ctx context.Context, q queryer, sql string, ids []int64) (map[int64][]catalog.Ref, error) {
	out := make(map[int64][]catalog.Ref, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := q.Query(ctx, sql, ids)
	if err != nil {
		return nil, fmt.Errorf("query compatibility links: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var owner int64
		var ref catalog.Ref
		if err := rows.Scan(&owner, &ref.ID, &ref.Name, &ref.Type); err != nil {
			return nil, fmt.Errorf("scan compatibility link: %w", err)
		}
		out[owner] = append(out[owner], ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate compatibility links: %w", err)
	}
	return out, nil
}

func addLink(ctx context.Context, q queryer, link catalog.Link) error {
	_, err := q.Exec(ctx,
		`INSERT INTO device_components (device_id, component_id) VALUES ($1, $2)`,
		link.DeviceID, link.ComponentID,
	)
	switch {
	case isUniqueViolation(err):
		return catalog.ErrLinkExists
	case isForeignKeyViolation(err):
		return catalog.ErrLinkNotFound
	case err != nil:
		return fmt.Errorf("insert compatibility link: %w", err)
	}
	return nil
}

func removeLink(ctx context.Context, q queryer, link catalog.Link) error {
	_, err := q.Exec(ctx,
		`DELETE FROM device_components WHERE device_id = $1 AND component_id = $2`,
		link.DeviceID, link.ComponentID,
	)
	if err != nil {
		return fmt.Errorf("delete compatibility link: %w", err)
	}
	return nil
}

func nonNilStock(s []catalog.StockCount) []catalog.StockCount {
	if s == nil {
		return []catalog.StockCount{}
	}
	return s
}

func nonNilRefs(r []catalog.Ref) []catalog.Ref {
	if r == nil {
		return []catalog.Ref{}
	}
	return r
}

// invalidManufacturer is returned when a product references a manufacturer
// that does not exist.
var invalidManufacturer = catalog.Invalid("manufacturerId", "manufacturer does not exist")

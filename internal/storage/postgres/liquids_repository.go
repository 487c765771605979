package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vapeshop/catalog-server/internal/domain/catalog"
	"github.com/vapeshop/catalog-server/internal/domain/inventory"
	"github.com/vapeshop/catalog-server/internal/domain/liquids"
)

type LiquidRepository struct {
	conn
}

const liquidColumns = `
SELECT p.id, p.name, p.description, p.manufacturer_id, p.price::text, p.image,
       l.type, l.volume_ml, l.strength_mg, l.vg_pg_ratio
  FROM products p
  JOIN liquids l ON l.id = p.id`

func scanLiquid(row pgx.Row) (liquids.Liquid, error) {
	var l liquids.Liquid
	var price string
	err := row.Scan(&l.ID, &l.Name, &l.Description, &l.ManufacturerID, &price, &l.Image,
		&l.Type, &l.VolumeML, &l.StrengthMG, &l.VGPGRatio)
	if err != nil {
		return l, err
	}
	l.Price, err = parsePrice(price)
	return l, err
}

func (r *LiquidRepository) List(ctx context.Context, filter catalog.Filter) ([]liquids.Liquid, error) {
	q := r.queryer()
	rows, err := q.Query(ctx, liquidColumns+`
 WHERE ($1::text = '' OR p.name ILIKE '%' || $1 || '%')
   AND ($2::bigint = 0 OR p.manufacturer_id = $2)
 ORDER BY p.id`, escapeLike(filter.Query), filter.ManufacturerID)
	if err != nil {
		return nil, fmt.Errorf("list liquids: %w", err)
	}
	defer rows.Close()

	items := []liquids.Liquid{}
	var ids []int64
	for rows.Next() {
		l, err := scanLiquid(rows)
		if err != nil {
			return nil, fmt.Errorf("scan liquid: %w", err)
		}
		items = append(items, l)
		ids = append(ids, l.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate liquids: %w", err)
	}

	stock, err := loadStock(ctx, q, inventory.KindLiquid, ids)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Stock = nonNilStock(stock[items[i].ID])
	}
	return items, nil
}

func (r *LiquidRepository) GetByID(ctx context.Context, id int64) (*liquids.Liquid, error) {
	return r.get(ctx, r.queryer(), id)
}

func (r *LiquidRepository) get(ctx context.Context, q queryer, id int64) (*liquids.Liquid, error) {
	l, err := scanLiquid(q.QueryRow(ctx, liquidColumns+` WHERE p.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, liquids.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get liquid: %w", err)
	}

	stock, err := loadStock(ctx, q, inventory.KindLiquid, []int64{id})
	if err != nil {
		return nil, err
	}
	l.Stock = nonNilStock(stock[id])
	return &l, nil
}

func (r *LiquidRepository) Create(ctx context.Context, l liquids.Liquid) (*liquids.Liquid, error) {
	var created *liquids.Liquid
	err := r.inTx(ctx, func(q queryer) error {
		id, err := insertProduct(ctx, q, "liquid", l.Item)
		if err != nil {
			return err
		}
		_, err = q.Exec(ctx, `
INSERT INTO liquids (id, type, volume_ml, strength_mg, vg_pg_ratio)
VALUES ($1, $2, $3, $4, $5)`, id, l.Type, l.VolumeML, l.StrengthMG, l.VGPGRatio)
		if err != nil {
			return fmt.Errorf("insert liquid: %w", err)
		}
		created, err = r.get(ctx, q, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *LiquidRepository) Update(ctx context.Context, l liquids.Liquid) (*liquids.Liquid, error) {
	var updated *liquids.Liquid
	err := r.inTx(ctx, func(q queryer) error {
		found, err := updateProduct(ctx, q, "liquid", l.ID, l.Item)
		if err != nil {
			return err
		}
		if !found {
			return liquids.ErrNotFound
		}
		_, err = q.Exec(ctx, `
UPDATE liquids
   SET type = $2, volume_ml = $3, strength_mg = $4, vg_pg_ratio = $5
 WHERE id = $1`, l.ID, l.Type, l.VolumeML, l.StrengthMG, l.VGPGRatio)
		if err != nil {
			return fmt.Errorf("update liquid: %w", err)
		}
		updated, err = r.get(ctx, q, l.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *LiquidRepository) Delete(ctx context.Context, id int64) error {
	return deleteProduct(ctx, r.queryer(), "liquid", id)
}

// insertProduct writes the shared base row and returns its id.
func insertProduct(ctx context.Context, q queryer, kind string, item catalog.Item) (int64, error) {
	var id int64
	err := q.QueryRow(ctx, `
INSERT INTO products (kind, name, description, manufacturer_id, price, image)
VALUES ($1, $2, $3, $4, $5::text::numeric, $6)
RETURNING id`, kind, item.Name, item.Description, item.ManufacturerID, priceArg(item.Price), item.Image,
	).Scan(&id)
	if isForeignKeyViolation(err) {
		return 0, invalidManufacturer
	}
	if err != nil {
		return 0, fmt.Errorf("insert product: %w", err)
	}
	return id, nil
}

// updateProduct replaces the base row and reports whether it existed.
func updateProduct(ctx context.Context, q queryer, kind string, id int64, item catalog.Item) (bool, error) {
	tag, err := q.Exec(ctx, `
UPDATE products
   SET name = $3, description = $4, manufacturer_id = $5, price = $6::text::numeric, image = $7,
       updated_at = now()
 WHERE id = $1 AND kind = $2`, id, kind, item.Name, item.Description, item.ManufacturerID, priceArg(item.Price), item.Image)
	if isForeignKeyViolation(err) {
		return false, invalidManufacturer
	}
	if err != nil {
		return false, fmt.Errorf("update product: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// deleteProduct removes the base row; subtype, stock and link rows cascade.
func deleteProduct(ctx context.Context, q queryer, kind string, id int64) error {
	if _, err := q.Exec(ctx, `DELETE FROM products WHERE id = $1 AND kind = $2`, id, kind); err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	return nil
}

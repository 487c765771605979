package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vapeshop/catalog-server/internal/domain/catalog"
	"github.com/vapeshop/catalog-server/internal/domain/components"
	"github.com/vapeshop/catalog-server/internal/domain/inventory"
)

type ComponentRepository struct {
	conn
}

const componentColumns = `
SELECT c.id, c.name, c.description, c.manufacturer_id, c.price::text, c.image, c.type, c.volume_ml
  FROM components c`

func scanComponent(row pgx.Row) (components.Component, error) {
	var c components.Component
	var price string
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.ManufacturerID, &price, &c.Image, &c.Type, &c.VolumeML)
	if err != nil {
		return c, err
	}
	c.Price, err = parsePrice(price)
	return c, err
}

func (r *ComponentRepository) List(ctx context.Context, filter catalog.Filter) ([]components.Component, error) {
	q := r.queryer()
	rows, err := q.Query(ctx, componentColumns+`
 WHERE ($1::text = '' OR c.name ILIKE '%' || $1 || '%')
   AND ($2::bigint = 0 OR c.manufacturer_id = $2)
 ORDER BY c.id`, escapeLike(filter.Query), filter.ManufacturerID)
	if err != nil {
		return nil, fmt.Errorf("list components: %w", err)
	}
	defer rows.Close()

	items := []components.Component{}
	var ids []int64
	for rows.Next() {
		c, err := scanComponent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan component: %w", err)
		}
		items = append(items, c)
		ids = append(ids, c.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate components: %w", err)
	}

	if err := hydrateComponents(ctx, q, items, ids); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ComponentRepository) GetByID(ctx context.Context, id int64) (*components.Component, error) {
	return r.get(ctx, r.queryer(), id)
}

func (r *ComponentRepository) get(ctx context.Context, q queryer, id int64) (*components.Component, error) {
	c, err := scanComponent(q.QueryRow(ctx, componentColumns+` WHERE c.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, components.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get component: %w", err)
	}

	items := []components.Component{c}
	if err := hydrateComponents(ctx, q, items, []int64{id}); err != nil {
		return nil, err
	}
	return &items[0], nil
}

func hydrateComponents(ctx context.Context, q queryer, items []components.Component, ids []int64) error {
	links, err := loadDevicesByComponent(ctx, q, ids)
	if err != nil {
		return err
	}
	stock, err := loadStock(ctx, q, inventory.KindComponent, ids)
	if err != nil {
		return err
	}
	for i := range items {
		items[i].CompatibleDevices = nonNilRefs(links[items[i].ID])
		items[i].Stock = nonNilStock(stock[items[i].ID])
	}
	return nil
}

func (r *ComponentRepository) Create(ctx context.Context, c components.Component) (*components.Component, error) {
	var id int64
	err := r.queryer().QueryRow(ctx, `
INSERT INTO components (name, description, manufacturer_id, price, image, type, volume_ml)
VALUES ($1, $2, $3, $4::text::numeric, $5, $6, $7)
RETURNING id`, c.Name, c.Description, c.ManufacturerID, priceArg(c.Price), c.Image, c.Type, c.VolumeML,
	).Scan(&id)
	if isForeignKeyViolation(err) {
		return nil, invalidManufacturer
	}
	if err != nil {
		return nil, fmt.Errorf("insert component: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *ComponentRepository) Update(ctx context.Context, c components.Component) (*components.Component, error) {
	tag, err := r.queryer().Exec(ctx, `
UPDATE components
   SET name = $2, description = $3, manufacturer_id = $4, price = $5::text::numeric, image = $6,
       type = $7, volume_ml = $8, updated_at = now()
 WHERE id = $1`, c.ID, c.Name, c.Description, c.ManufacturerID, priceArg(c.Price), c.Image, c.Type, c.VolumeML)
	if isForeignKeyViolation(err) {
		return nil, invalidManufacturer
	}
	if err != nil {
		return nil, fmt.Errorf("update component: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, components.ErrNotFound
	}
	return r.GetByID(ctx, c.ID)
}

func (r *ComponentRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.queryer().Exec(ctx, `DELETE FROM components WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete component: %w", err)
	}
	return nil
}

func (r *ComponentRepository) AddLink(ctx context.Context, link catalog.Link) error {
	return addLink(ctx, r.queryer(), link)
}

func (r *ComponentRepository) RemoveLink(ctx context.Context, link catalog.Link) error {
	return removeLink(ctx, r.queryer(), link)
}

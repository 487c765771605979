package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vapeshop/catalog-server/internal/domain/catalog"
	"github.com/vapeshop/catalog-server/internal/domain/devices"
	"github.com/vapeshop/catalog-server/internal/domain/inventory"
)

type DeviceRepository struct {
	conn
}

const deviceColumns = `
SELECT p.id, p.name, p.description, p.manufacturer_id, p.price::text, p.image,
       d.type, d.max_power_w, d.cartridge_volume_ml, d.warranty_months
  FROM products p
  JOIN devices d ON d.id = p.id`

func scanDevice(row pgx.Row) (devices.Device, error) {
	var d devices.Device
	var price string
	err := row.Scan(&d.ID, &d.Name, &d.Description, &d.ManufacturerID, &price, &d.Image,
		&d.Type, &d.MaxPowerW, &d.CartridgeVolumeML, &d.WarrantyMonths)
	if err != nil {
		return d, err
	}
	d.Price, err = parsePrice(price)
	return d, err
}

func (r *DeviceRepository) List(ctx context.Context, filter catalog.Filter) ([]devices.Device, error) {
	q := r.queryer()
	rows, err := q.Query(ctx, deviceColumns+`
 WHERE ($1::text = '' OR p.name ILIKE '%' || $1 || '%')
   AND ($2::bigint = 0 OR p.manufacturer_id = $2)
 ORDER BY p.id`, escapeLike(filter.Query), filter.ManufacturerID)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	defer rows.Close()

	items := []devices.Device{}
	var ids []int64
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan device: %w", err)
		}
		items = append(items, d)
		ids = append(ids, d.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate devices: %w", err)
	}

	if err := hydrateDevices(ctx, q, items, ids); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *DeviceRepository) GetByID(ctx context.Context, id int64) (*devices.Device, error) {
	return r.get(ctx, r.queryer(), id)
}

func (r *DeviceRepository) get(ctx context.Context, q queryer, id int64) (*devices.Device, error) {
	d, err := scanDevice(q.QueryRow(ctx, deviceColumns+` WHERE p.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, devices.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get device: %w", err)
	}

	items := []devices.Device{d}
	if err := hydrateDevices(ctx, q, items, []int64{id}); err != nil {
		return nil, err
	}
	return &items[0], nil
}

func hydrateDevices(ctx context.Context, q queryer, items []devices.Device, ids []int64) error {
	links, err := loadComponentsByDevice(ctx, q, ids)
	if err != nil {
		return err
	}
	stock, err := loadStock(ctx, q, inventory.KindDevice, ids)
	if err != nil {
		return err
	}
	for i := range items {
		items[i].CompatibleComponents = nonNilRefs(links[items[i].ID])
		items[i].Stock = nonNilStock(stock[items[i].ID])
	}
	return nil
}

func (r *DeviceRepository) Create(ctx context.Context, d devices.Device) (*devices.Device, error) {
	var created *devices.Device
	err := r.inTx(ctx, func(q queryer) error {
		id, err := insertProduct(ctx, q, "device", d.Item)
		if err != nil {
			return err
		}
		_, err = q.Exec(ctx, `
INSERT INTO devices (id, type, max_power_w, cartridge_volume_ml, warranty_months)
VALUES ($1, $2, $3, $4, $5)`, id, d.Type, d.MaxPowerW, d.CartridgeVolumeML, d.WarrantyMonths)
		if err != nil {
			return fmt.Errorf("insert device: %w", err)
		}
		created, err = r.get(ctx, q, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *DeviceRepository) Update(ctx context.Context, d devices.Device) (*devices.Device, error) {
	var updated *devices.Device
	err := r.inTx(ctx, func(q queryer) error {
		found, err := updateProduct(ctx, q, "device", d.ID, d.Item)
		if err != nil {
			return err
		}
		if !found {
			return devices.ErrNotFound
		}
		_, err = q.Exec(ctx, `
UPDATE devices
   SET type = $2, max_power_w = $3, cartridge_volume_ml = $4, warranty_months = $5
 WHERE id = $1`, d.ID, d.Type, d.MaxPowerW, d.CartridgeVolumeML, d.WarrantyMonths)
		if err != nil {
			return fmt.Errorf("update device: %w", err)
		}
		updated, err = r.get(ctx, q, d.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *DeviceRepository) Delete(ctx context.Context, id int64) error {
	return deleteProduct(ctx, r.queryer(), "device", id)
}

func (r *DeviceRepository) AddLink(ctx context.Context, link catalog.Link) error {
	return addLink(ctx, r.queryer(), link)
}

func (r *DeviceRepository) RemoveLink(ctx context.Context, link catalog.Link) error {
	return removeLink(ctx, r.queryer(), link)
}

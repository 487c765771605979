package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vapeshop/catalog-server/internal/domain/manufacturers"
)

type ManufacturerRepository struct {
	conn
}

func (r *ManufacturerRepository) List(ctx context.Context) ([]manufacturers.Manufacturer, error) {
	rows, err := r.queryer().Query(ctx, `SELECT id, name FROM manufacturers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list manufacturers: %w", err)
	}
	defer rows.Close()

	items := []manufacturers.Manufacturer{}
	for rows.Next() {
		var m manufacturers.Manufacturer
		if err := rows.Scan(&m.ID, &m.Name); err != nil {
			return nil, fmt.Errorf("scan manufacturer: %w", err)
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate manufacturers: %w", err)
	}
	return items, nil
}

func (r *ManufacturerRepository) GetByID(ctx context.Context, id int64) (*manufacturers.Manufacturer, error) {
	var m manufacturers.Manufacturer
	err := r.queryer().QueryRow(ctx, `SELECT id, name FROM manufacturers WHERE id = $1`, id).Scan(&m.ID, &m.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, manufacturers.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get manufacturer: %w", err)
	}
	return &m, nil
}

func (r *ManufacturerRepository) ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error) {
	var exists bool
	err := r.queryer().QueryRow(ctx, `
SELECT EXISTS (
  SELECT 1 FROM manufacturers WHERE lower(name) = lower($1) AND id <> $2
)`, name, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check manufacturer name: %w", err)
	}
	return exists, nil
}

func (r *ManufacturerRepository) Create(ctx context.Context, m manufacturers.Manufacturer) (*manufacturers.Manufacturer, error) {
	err := r.queryer().QueryRow(ctx,
		`INSERT INTO manufacturers (name) VALUES ($1) RETURNING id`, m.Name,
	).Scan(&m.ID)
	if isUniqueViolation(err) {
		return nil, manufacturers.ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("insert manufacturer: %w", err)
	}
	return &m, nil
}

func (r *ManufacturerRepository) Update(ctx context.Context, m manufacturers.Manufacturer) (*manufacturers.Manufacturer, error) {
	tag, err := r.queryer().Exec(ctx,
		`UPDATE manufacturers SET name = $2, updated_at = now() WHERE id = $1`, m.ID, m.Name,
	)
	if isUniqueViolation(err) {
		return nil, manufacturers.ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("update manufacturer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, manufacturers.ErrNotFound
	}
	return &m, nil
}

func (r *ManufacturerRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.queryer().Exec(ctx, `DELETE FROM manufacturers WHERE id = $1`, id)
	if isForeignKeyViolation(err) {
		return manufacturers.ErrInUse
	}
	if err != nil {
		return fmt.Errorf("delete manufacturer: %w", err)
	}
	return nil
}

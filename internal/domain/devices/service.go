package devices

import (
	"context"

	"github.com/vapeshop/catalog-server/internal/domain/catalog"
	"github.com/vapeshop/catalog-server/internal/sanitize"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filter catalog.Filter) ([]Device, error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id int64) (*Device, error) {
	if id <= 0 {
		return nil, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, d Device) (*Device, error) {
	d.ID = 0
	if err := prepare(&d); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, d)
}

func (s *Service) Update(ctx context.Context, d Device) (*Device, error) {
	if d.ID <= 0 {
		return nil, ErrNotFound
	}
	if err := prepare(&d); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, d)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return nil
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) AddCompatibleLink(ctx context.Context, deviceID, componentID int64) error {
	if deviceID <= 0 || componentID <= 0 {
		return catalog.ErrLinkNotFound
	}
	return s.repo.AddLink(ctx, catalog.Link{DeviceID: deviceID, ComponentID: componentID})
}

// RemoveCompatibleLink succeeds when the link does not exist.
func (s *Service) RemoveCompatibleLink(ctx context.Context, deviceID, componentID int64) error {
	if deviceID <= 0 || componentID <= 0 {
		return nil
	}
	return s.repo.RemoveLink(ctx, catalog.Link{DeviceID: deviceID, ComponentID: componentID})
}

func prepare(d *Device) error {
	d.Normalize()
	d.Type = sanitize.Name(d.Type)
	d.CompatibleComponents = nil
	d.Stock = nil

	if err := d.Item.Validate(); err != nil {
		return err
	}
	if err := catalog.Quantity("maxPowerW", d.MaxPowerW); err != nil {
		return err
	}
	if err := catalog.Quantity("cartridgeVolumeMl", d.CartridgeVolumeML); err != nil {
		return err
	}
	return catalog.Quantity("warrantyMonths", d.WarrantyMonths)
}

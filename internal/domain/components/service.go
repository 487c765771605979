package components

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

func (s *Service) List(ctx context.Context, filter catalog.Filter) ([]Component, error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id int64) (*Component, error) {
	if id <= 0 {
		return nil, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, c Component) (*Component, error) {
	c.ID = 0
	if err := prepare(&c); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, c)
}

func (s *Service) Update(ctx context.Context, c Component) (*Component, error) {
	if c.ID <= 0 {
		return nil, ErrNotFound
	}
	if err := prepare(&c); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, c)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return nil
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) AddCompatibleLink(ctx context.Context, componentID, deviceID int64) error {
	if deviceID <= 0 || componentID <= 0 {
		return catalog.ErrLinkNotFound
	}
	return s.repo.AddLink(ctx, catalog.Link{DeviceID: deviceID, ComponentID: componentID})
}

func (s *Service) RemoveCompatibleLink(ctx context.Context, componentID, deviceID int64) error {
	if deviceID <= 0 || componentID <= 0 {
		return nil
	}
	return s.repo.RemoveLink(ctx, catalog.Link{DeviceID: deviceID, ComponentID: componentID})
}

func prepare(c *Component) error {
	it := c.item()
	it.Normalize()
	c.setItem(it)
	c.Type = sanitize.Name(c.Type)
	c.CompatibleDevices = nil
	c.Stock = nil

	if err := it.Validate(); err != nil {
		return err
	}
	if c.VolumeML <= 0 {
		return catalog.Invalid("volumeMl", "must be greater than zero")
	}
	return catalog.Quantity("volumeMl", c.VolumeML)
}

package manufacturers

import (
	"context"
	"fmt"

	"github.com/vapeshop/catalog-server/internal/domain/catalog"
	"github.com/vapeshop/catalog-server/internal/sanitize"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Manufacturer, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*Manufacturer, error) {
	if id <= 0 {
		return nil, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// Create rejects names already taken by another manufacturer. The store has
// a unique index on lower(name) as well, so a concurrent insert that slips
// past the check still surfaces as ErrDuplicate.
func (s *Service) Create(ctx context.Context, m Manufacturer) (*Manufacturer, error) {
	m.ID = 0
	if err := s.prepare(&m); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByName(ctx, m.Name, 0)
	if err != nil {
		return nil, fmt.Errorf("check manufacturer name: %w", err)
	}
	if exists {
		return nil, ErrDuplicate
	}

	return s.repo.Create(ctx, m)
}

func (s *Service) Update(ctx context.Context, m Manufacturer) (*Manufacturer, error) {
	if err := s.prepare(&m); err != nil {
		return nil, err
	}

	if _, err := s.Get(ctx, m.ID); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByName(ctx, m.Name, m.ID)
	if err != nil {
		return nil, fmt.Errorf("check manufacturer name: %w", err)
	}
	if exists {
		return nil, ErrDuplicate
	}

	return s.repo.Update(ctx, m)
}

// Delete succeeds when the manufacturer does not exist.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return nil
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) prepare(m *Manufacturer) error {
	m.Name = sanitize.Name(m.Name)
	return catalog.ValidateStruct(m)
}

package liquids

import (
	"context"
	"regexp"

	"github.com/vapeshop/catalog-server/internal/domain/catalog"
	"github.com/vapeshop/catalog-server/internal/sanitize"
)

// vgPgPattern accepts ratios such as "50/50" or "70/30".
var vgPgPattern = regexp.MustCompile(`^\d{1,3}/\d{1,3}$`)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filter catalog.Filter) ([]Liquid, error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id int64) (*Liquid, error) {
	if id <= 0 {
		return nil, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, l Liquid) (*Liquid, error) {
	l.ID = 0
	if err := prepare(&l); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, l)
}

// Update replaces every field of an existing liquid.
func (s *Service) Update(ctx context.Context, l Liquid) (*Liquid, error) {
	if l.ID <= 0 {
		return nil, ErrNotFound
	}
	if err := prepare(&l); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, l)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return nil
	}
	return s.repo.Delete(ctx, id)
}

func prepare(l *Liquid) error {
	l.Normalize()
	l.Type = sanitize.Name(l.Type)
	l.VGPGRatio = sanitize.Name(l.VGPGRatio)
	l.Stock = nil

	if err := l.Item.Validate(); err != nil {
		return err
	}
	if err := catalog.Quantity("volumeMl", l.VolumeML); err != nil {
		return err
	}
	if err := catalog.Quantity("strengthMg", l.StrengthMG); err != nil {
		return err
	}
	if l.VGPGRatio != "" && !vgPgPattern.MatchString(l.VGPGRatio) {
		return catalog.Invalid("vgPgRatio", `must look like "50/50"`)
	}
	return nil
}

package components

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/vapeshop/catalog-server/internal/domain/catalog"
)

type mockRepository struct {
	createFn  func(ctx context.Context, c Component) (*Component, error)
	addLinkFn func(ctx context.Context, link catalog.Link) error
}

func (m *mockRepository) List(context.Context, catalog.Filter) ([]Component, error) {
	return nil, errors.New("not implemented")
}

func (m *mockRepository) GetByID(context.Context, int64) (*Component, error) {
	return nil, ErrNotFound
}

func (m *mockRepository) Create(ctx context.Context, c Component) (*Component, error) {
	if m.createFn != nil {
		return m.createFn(ctx, c)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRepository) Update(context.Context, Component) (*Component, error) {
	return nil, ErrNotFound
}

func (m *mockRepository) Delete(context.Context, int64) error { return nil }

func (m *mockRepository) AddLink(ctx context.Context, link catalog.Link) error {
	if m.addLinkFn != nil {
		return m.addLinkFn(ctx, link)
	}
	return errors.New("not implemented")
}

func (m *mockRepository) RemoveLink(context.Context, catalog.Link) error { return nil }

func validComponent() Component {
	return Component{
		Name:           "Mesh coil 0.4",
		ManufacturerID: 3,
		Price:          decimal.RequireFromString("4.50"),
		Type:           "coil",
		VolumeML:       2,
	}
}

func TestServiceCreate(t *testing.T) {
	repo := &mockRepository{
		createFn: func(_ context.Context, c Component) (*Component, error) {
			c.ID = 4
			return &c, nil
		},
	}
	in := validComponent()
	in.Description = "<p>Fits most pods</p>"

	got, err := NewService(repo).Create(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, int64(4), got.ID)
	require.Equal(t, "Fits most pods", got.Description)
}

func TestServiceCreateValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Component)
		field  string
	}{
		{name: "blank name", mutate: func(c *Component) { c.Name = "" }, field: "name"},
		{name: "zero price", mutate: func(c *Component) { c.Price = decimal.Zero }, field: "price"},
		{name: "zero volume", mutate: func(c *Component) { c.VolumeML = 0 }, field: "volumeMl"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validComponent()
			tt.mutate(&c)
			_, err := NewService(&mockRepository{}).Create(context.Background(), c)
			var verr catalog.ValidationError
			require.ErrorAs(t, err, &verr)
			require.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestServiceUpdateMissing(t *testing.T) {
	c := validComponent()
	c.ID = 77
	_, err := NewService(&mockRepository{}).Update(context.Background(), c)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestServiceAddCompatibleLinkOrdersArguments(t *testing.T) {
	var got catalog.Link
	repo := &mockRepository{
		addLinkFn: func(_ context.Context, link catalog.Link) error {
			got = link
			return nil
		},
	}
	require.NoError(t, NewService(repo).AddCompatibleLink(context.Background(), 5, 8))
	require.Equal(t, catalog.Link{DeviceID: 8, ComponentID: 5}, got)
}

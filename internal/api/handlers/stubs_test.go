package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vapeshop/catalog-server/internal/api/problem"
	"github.com/vapeshop/catalog-server/internal/domain/catalog"
	"github.com/vapeshop/catalog-server/internal/domain/components"
	"github.com/vapeshop/catalog-server/internal/domain/devices"
	"github.com/vapeshop/catalog-server/internal/domain/inventory"
	"github.com/vapeshop/catalog-server/internal/domain/liquids"
	"github.com/vapeshop/catalog-server/internal/domain/manufacturers"
	"github.com/vapeshop/catalog-server/internal/domain/users"
)

// Unset function fields fall through to the nil embedded interface and panic,
// which flags calls a test did not expect.

type stubManufacturers struct {
	ManufacturerService
	listFn   func() ([]manufacturers.Manufacturer, error)
	getFn    func(id int64) (*manufacturers.Manufacturer, error)
	createFn func(m manufacturers.Manufacturer) (*manufacturers.Manufacturer, error)
	updateFn func(m manufacturers.Manufacturer) (*manufacturers.Manufacturer, error)
	deleteFn func(id int64) error
}

func (s stubManufacturers) List(context.Context) ([]manufacturers.Manufacturer, error) {
	return s.listFn()
}

func (s stubManufacturers) Get(_ context.Context, id int64) (*manufacturers.Manufacturer, error) {
	return s.getFn(id)
}

func (s stubManufacturers) Create(_ context.Context, m manufacturers.Manufacturer) (*manufacturers.Manufacturer, error) {
	return s.createFn(m)
}

func (s stubManufacturers) Update(_ context.Context, m manufacturers.Manufacturer) (*manufacturers.Manufacturer, error) {
	return s.updateFn(m)
}

func (s stubManufacturers) Delete(_ context.Context, id int64) error {
	return s.deleteFn(id)
}

type stubLiquids struct {
	LiquidService
	listFn   func(filter catalog.Filter) ([]liquids.Liquid, error)
	getFn    func(id int64) (*liquids.Liquid, error)
	createFn func(l liquids.Liquid) (*liquids.Liquid, error)
	updateFn func(l liquids.Liquid) (*liquids.Liquid, error)
	deleteFn func(id int64) error
}

func (s stubLiquids) List(_ context.Context, filter catalog.Filter) ([]liquids.Liquid, error) {
	return s.listFn(filter)
}

func (s stubLiquids) Get(_ context.Context, id int64) (*liquids.Liquid, error) {
	return s.getFn(id)
}

func (s stubLiquids) Create(_ context.Context, l liquids.Liquid) (*liquids.Liquid, error) {
	return s.createFn(l)
}

func (s stubLiquids) Update(_ context.Context, l liquids.Liquid) (*liquids.Liquid, error) {
	return s.updateFn(l)
}

func (s stubLiquids) Delete(_ context.Context, id int64) error {
	return s.deleteFn(id)
}

type stubDevices struct {
	DeviceService
	getFn    func(id int64) (*devices.Device, error)
	createFn func(d devices.Device) (*devices.Device, error)
	addFn    func(deviceID, componentID int64) error
	removeFn func(deviceID, componentID int64) error
}

func (s stubDevices) Get(_ context.Context, id int64) (*devices.Device, error) {
	return s.getFn(id)
}

func (s stubDevices) Create(_ context.Context, d devices.Device) (*devices.Device, error) {
	return s.createFn(d)
}

func (s stubDevices) AddCompatibleLink(_ context.Context, deviceID, componentID int64) error {
	return s.addFn(deviceID, componentID)
}

func (s stubDevices) RemoveCompatibleLink(_ context.Context, deviceID, componentID int64) error {
	return s.removeFn(deviceID, componentID)
}

type stubComponents struct {
	ComponentService
	updateFn func(c components.Component) (*components.Component, error)
	addFn    func(componentID, deviceID int64) error
}

func (s stubComponents) Update(_ context.Context, c components.Component) (*components.Component, error) {
	return s.updateFn(c)
}

func (s stubComponents) AddCompatibleLink(_ context.Context, componentID, deviceID int64) error {
	return s.addFn(componentID, deviceID)
}

type stubInventory struct {
	listFn   func(kind inventory.Kind, productID int64) ([]catalog.StockCount, error)
	setFn    func(kind inventory.Kind, productID int64, params inventory.SetStockParams) (*catalog.StockCount, error)
	removeFn func(kind inventory.Kind, productID int64, warehouse string) error
}

func (s stubInventory) List(_ context.Context, kind inventory.Kind, productID int64) ([]catalog.StockCount, error) {
	return s.listFn(kind, productID)
}

func (s stubInventory) Set(_ context.Context, kind inventory.Kind, productID int64, params inventory.SetStockParams) (*catalog.StockCount, error) {
	return s.setFn(kind, productID, params)
}

func (s stubInventory) Remove(_ context.Context, kind inventory.Kind, productID int64, warehouse string) error {
	return s.removeFn(kind, productID, warehouse)
}

type stubUsers struct {
	UserService
	registerFn   func(params users.RegisterParams) (*users.AuthResult, error)
	loginFn      func(params users.LoginParams) (*users.AuthResult, error)
	meFn         func(userID string) (*users.User, error)
	createRoleFn func(name string) (*users.Role, error)
	assignFn     func(params users.RoleAssignment) error
	removeFn     func(params users.RoleAssignment) error
}

func (s stubUsers) Register(_ context.Context, params users.RegisterParams) (*users.AuthResult, error) {
	return s.registerFn(params)
}

func (s stubUsers) Login(_ context.Context, params users.LoginParams) (*users.AuthResult, error) {
	return s.loginFn(params)
}

func (s stubUsers) Me(_ context.Context, userID string) (*users.User, error) {
	return s.meFn(userID)
}

func (s stubUsers) CreateRole(_ context.Context, name string) (*users.Role, error) {
	return s.createRoleFn(name)
}

func (s stubUsers) AssignRole(_ context.Context, params users.RoleAssignment) error {
	return s.assignFn(params)
}

func (s stubUsers) RemoveRole(_ context.Context, params users.RoleAssignment) error {
	return s.removeFn(params)
}

func newRequest(method, target, body string, pathValues ...string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	for i := 0; i+1 < len(pathValues); i += 2 {
		req.SetPathValue(pathValues[i], pathValues[i+1])
	}
	return req
}

func decodeProblem(t *testing.T, res *httptest.ResponseRecorder) problem.ProblemDetails {
	t.Helper()
	require.Equal(t, "application/problem+json", res.Header().Get("Content-Type"))
	var payload problem.ProblemDetails
	require.NoError(t, json.NewDecoder(res.Body).Decode(&payload))
	return payload
}

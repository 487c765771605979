package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/vapeshop/catalog-server/internal/auth"
	"github.com/vapeshop/catalog-server/internal/config"
	"github.com/vapeshop/catalog-server/internal/domain/components"
	"github.com/vapeshop/catalog-server/internal/domain/devices"
	"github.com/vapeshop/catalog-server/internal/domain/inventory"
	"github.com/vapeshop/catalog-server/internal/domain/liquids"
	"github.com/vapeshop/catalog-server/internal/domain/manufacturers"
	"github.com/vapeshop/catalog-server/internal/domain/users"
	"github.com/vapeshop/catalog-server/internal/storage/postgres"
)

const (
	adminEmail    = "admin@vapeshop.test"
	adminPassword = "Admin123!"
)

type testEnv struct {
	t      *testing.T
	server *httptest.Server
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in -short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	t.Cleanup(cancel)

	_ = os.Setenv("TESTCONTAINERS_RYUK_DISABLED", "true")
	container, err := tcpostgres.Run(
		ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("vapeshop"),
		tcpostgres.WithUsername("vapeshop"),
		tcpostgres.WithPassword("vapeshop_dev"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	dbURL, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, migrateWithRetry(dbURL, 10*time.Second))

	pool, err := pgxpool.New(ctx, dbURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	repo, err := postgres.NewRepository(pool)
	require.NoError(t, err)

	logger := zerolog.New(io.Discard)
	tokens := auth.NewJWTManager(routerSecret, time.Hour, "vapeshop", "vapeshop-clients")
	userService := users.NewService(repo.Users(), tokens, 4, logger)
	require.NoError(t, userService.Bootstrap(ctx, users.AdminSeed{Email: adminEmail, Password: adminPassword}))

	handler, stop := NewRouter(Dependencies{
		Config: config.Config{
			Environment: "test",
			Server:      config.ServerConfig{MaxBodyBytes: 1 << 20},
			RateLimit:   config.RateLimitConfig{PublicPerMinute: 1000, AuthPerMinute: 1000},
			CORS:        config.CORSConfig{AllowAllOrigins: true},
		},
		Logger:        logger,
		Tokens:        tokens,
		Store:         repo,
		Manufacturers: manufacturers.NewService(repo.Manufacturers()),
		Liquids:       liquids.NewService(repo.Liquids()),
		Devices:       devices.NewService(repo.Devices()),
		Components:    components.NewService(repo.Components()),
		Inventory:     inventory.NewService(repo.Inventory()),
		Users:         userService,
	})
	t.Cleanup(stop)

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return &testEnv{t: t, server: server}
}

func migrateWithRetry(databaseURL string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		if err := postgres.MigrateUp(databaseURL, ""); err != nil {
			if time.Now().After(deadline) {
				return err
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}
		return nil
	}
}

// do sends a request and decodes a JSON response into out when out is non-nil.
func (e *testEnv) do(method, path, token string, body any, out any) *http.Response {
	e.t.Helper()

	var reader io.Reader
	switch v := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(v)
	default:
		raw, err := json.Marshal(v)
		require.NoError(e.t, err)
		reader = strings.NewReader(string(raw))
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(e.t, err)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.server.Client().Do(req)
	require.NoError(e.t, err)
	defer func() { _ = resp.Body.Close() }()

	if out != nil {
		require.NoError(e.t, json.NewDecoder(resp.Body).Decode(out))
	} else {
		_, _ = io.Copy(io.Discard, resp.Body)
	}
	return resp
}

func (e *testEnv) login(email, password string) string {
	e.t.Helper()
	var result users.AuthResult
	resp := e.do(http.MethodPost, "/api/users/login", "", map[string]string{"email": email, "password": password}, &result)
	require.Equal(e.t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(e.t, result.Token)
	return result.Token
}

func TestCatalogEndToEnd(t *testing.T) {
	env := setupTestEnv(t)
	admin := env.login(adminEmail, adminPassword)

	var shopper users.AuthResult
	resp := env.do(http.MethodPost, "/api/users/register", "", map[string]string{
		"email": "shopper@example.com", "password": "Shop123!", "firstName": "Sam", "lastName": "Hill",
	}, &shopper)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var maker manufacturers.Manufacturer
	resp = env.do(http.MethodPost, "/api/manufacturers", admin, map[string]string{"name": "Aspire"}, &maker)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, fmt.Sprintf("/api/manufacturers/%d", maker.ID), resp.Header.Get("Location"))

	resp = env.do(http.MethodPost, "/api/manufacturers", shopper.Token, map[string]string{"name": "Smok"}, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.do(http.MethodPost, "/api/manufacturers", admin, map[string]string{"name": "aspire"}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var liquid map[string]any
	resp = env.do(http.MethodPost, "/api/liquids", admin, fmt.Sprintf(
		`{"name":"Mint","description":"<b>cool</b>","manufacturerId":%d,"price":15.99,"type":"freebase","volumeMl":30,"strengthMg":20,"vgPgRatio":"50/50"}`,
		maker.ID), &liquid)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, 15.99, liquid["price"])
	require.Equal(t, "cool", liquid["description"])
	liquidID := int64(liquid["id"].(float64))

	var listed []map[string]any
	resp = env.do(http.MethodGet, "/api/liquids?q=MIN", "", nil, &listed)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, listed, 1)

	resp = env.do(http.MethodGet, fmt.Sprintf("/api/liquids/%d", liquidID), "", nil, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp = env.do(http.MethodGet, fmt.Sprintf("/api/liquids/%d", liquidID), shopper.Token, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stock map[string]any
	resp = env.do(http.MethodPut, fmt.Sprintf("/api/liquids/%d/stock/main", liquidID), admin, `{"count":12}`, &stock)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.EqualValues(t, 12, stock["count"])

	var fetched liquids.Liquid
	env.do(http.MethodGet, fmt.Sprintf("/api/liquids/%d", liquidID), shopper.Token, nil, &fetched)
	require.Len(t, fetched.Stock, 1)
	require.Equal(t, "main", fetched.Stock[0].WarehouseName)

	var device devices.Device
	resp = env.do(http.MethodPost, "/api/devices", admin, fmt.Sprintf(
		`{"name":"Pod X","manufacturerId":%d,"price":30,"type":"pod","maxPowerW":25}`, maker.ID), &device)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var component components.Component
	resp = env.do(http.MethodPost, "/api/components", admin, fmt.Sprintf(
		`{"name":"Coil 0.8","manufacturerId":%d,"price":4.5,"type":"coil","volumeMl":2}`, maker.ID), &component)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	linkPath := fmt.Sprintf("/api/devices/%d/components/%d", device.ID, component.ID)
	require.Equal(t, http.StatusNoContent, env.do(http.MethodPost, linkPath, admin, nil, nil).StatusCode)
	require.Equal(t, http.StatusConflict, env.do(http.MethodPost, linkPath, admin, nil, nil).StatusCode)

	devicePath := fmt.Sprintf("/api/devices/%d", device.ID)
	componentPath := fmt.Sprintf("/api/components/%d", component.ID)

	var linkedDevice devices.Device
	env.do(http.MethodGet, devicePath, shopper.Token, nil, &linkedDevice)
	require.Len(t, linkedDevice.CompatibleComponents, 1)
	require.Equal(t, component.ID, linkedDevice.CompatibleComponents[0].ID)

	var linked components.Component
	env.do(http.MethodGet, componentPath, shopper.Token, nil, &linked)
	require.Len(t, linked.CompatibleDevices, 1)
	require.Equal(t, device.ID, linked.CompatibleDevices[0].ID)

	// Unlinking from the component side removes the link for both sides; a
	// repeated unlink is a no-op.
	reverse := fmt.Sprintf("/api/components/%d/devices/%d", component.ID, device.ID)
	require.Equal(t, http.StatusNoContent, env.do(http.MethodDelete, reverse, admin, nil, nil).StatusCode)
	require.Equal(t, http.StatusNoContent, env.do(http.MethodDelete, reverse, admin, nil, nil).StatusCode)

	var unlinkedDevice devices.Device
	env.do(http.MethodGet, devicePath, shopper.Token, nil, &unlinkedDevice)
	require.Empty(t, unlinkedDevice.CompatibleComponents)

	var unlinked components.Component
	env.do(http.MethodGet, componentPath, shopper.Token, nil, &unlinked)
	require.Empty(t, unlinked.CompatibleDevices)

	resp = env.do(http.MethodDelete, fmt.Sprintf("/api/manufacturers/%d", maker.ID), admin, nil, nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = env.do(http.MethodPut, fmt.Sprintf("/api/liquids/%d", liquidID), admin, fmt.Sprintf(
		`{"id":%d,"name":"Mint","manufacturerId":%d,"price":17.5}`, liquidID, maker.ID), nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = env.do(http.MethodPut, "/api/liquids/999999", admin, fmt.Sprintf(
		`{"name":"Ghost","manufacturerId":%d,"price":1}`, maker.ID), nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRolesEndToEnd(t *testing.T) {
	env := setupTestEnv(t)
	admin := env.login(adminEmail, adminPassword)

	var reg users.AuthResult
	env.do(http.MethodPost, "/api/users/register", "", map[string]string{"email": "mod@example.com", "password": "Mod123!x"}, &reg)

	var me users.User
	resp := env.do(http.MethodGet, "/api/users/me", reg.Token, nil, &me)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, []string{auth.RoleUser}, me.Roles)

	var role users.Role
	resp = env.do(http.MethodPost, "/api/roles", admin, `"Moderator"`, &role)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Moderator", role.Name)

	assignment := map[string]string{"userId": me.ID, "roleName": "Moderator"}
	require.Equal(t, http.StatusNoContent, env.do(http.MethodPost, "/api/roles/assign", admin, assignment, nil).StatusCode)
	require.Equal(t, http.StatusBadRequest, env.do(http.MethodPost, "/api/roles/assign", admin, assignment, nil).StatusCode)

	// Role changes show up on the next login.
	token := env.login("mod@example.com", "Mod123!x")
	env.do(http.MethodGet, "/api/users/me", token, nil, &me)
	require.ElementsMatch(t, []string{auth.RoleUser, "Moderator"}, me.Roles)

	require.Equal(t, http.StatusNoContent, env.do(http.MethodPost, "/api/roles/remove", admin, assignment, nil).StatusCode)

	resp = env.do(http.MethodPost, "/api/users/login", "", map[string]string{"email": "mod@example.com", "password": "wrong"}, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

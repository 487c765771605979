package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/vapeshop/catalog-server/internal/api/handlers"
	"github.com/vapeshop/catalog-server/internal/auth"
	"github.com/vapeshop/catalog-server/internal/config"
	"github.com/vapeshop/catalog-server/internal/domain/catalog"
	"github.com/vapeshop/catalog-server/internal/domain/liquids"
	"github.com/vapeshop/catalog-server/internal/domain/users"
)

const routerSecret = "router-test-secret-router-test-secret"

type liquidStub struct {
	handlers.LiquidService
}

func (liquidStub) List(context.Context, catalog.Filter) ([]liquids.Liquid, error) {
	return []liquids.Liquid{{ID: 1, Item: catalog.Item{Name: "Mint", ManufacturerID: 1, Price: decimal.NewFromInt(10)}}}, nil
}

func (liquidStub) Get(_ context.Context, id int64) (*liquids.Liquid, error) {
	return &liquids.Liquid{ID: id, Item: catalog.Item{Name: "Mint", ManufacturerID: 1, Price: decimal.NewFromInt(10)}}, nil
}

func (liquidStub) Create(_ context.Context, l liquids.Liquid) (*liquids.Liquid, error) {
	l.ID = 77
	return &l, nil
}

func (liquidStub) Delete(context.Context, int64) error {
	panic("boom")
}

type userStub struct {
	handlers.UserService
}

func (userStub) Login(context.Context, users.LoginParams) (*users.AuthResult, error) {
	return &users.AuthResult{Token: "t", Expiration: time.Now().Add(time.Hour)}, nil
}

type storeStub struct{}

func (storeStub) Ping(context.Context) error { return nil }

func (storeStub) MigrationStatus(context.Context) (int64, bool, error) { return 2, false, nil }

func newTestRouter(t *testing.T) (http.Handler, *auth.JWTManager) {
	t.Helper()
	tokens := auth.NewJWTManager(routerSecret, time.Hour, "vapeshop", "vapeshop-clients")
	handler, stop := NewRouter(Dependencies{
		Config: config.Config{
			Environment: "test",
			Server:      config.ServerConfig{MaxBodyBytes: 1 << 20},
			RateLimit:   config.RateLimitConfig{PublicPerMinute: 1000, AuthPerMinute: 2},
			CORS:        config.CORSConfig{AllowAllOrigins: true},
			Metrics:     config.MetricsConfig{Enabled: true},
		},
		Logger:  zerolog.Nop(),
		Tokens:  tokens,
		Store:   storeStub{},
		Liquids: liquidStub{},
		Users:   userStub{},
		Version: "test",
	})
	t.Cleanup(stop)
	return handler, tokens
}

func serve(handler http.Handler, method, target, body, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	return res
}

func issue(t *testing.T, tokens *auth.JWTManager, roles ...string) string {
	t.Helper()
	token, _, err := tokens.Generate("01HZXROUTER", "router@example.com", roles)
	require.NoError(t, err)
	return token
}

func TestRouterAccessRules(t *testing.T) {
	handler, tokens := newTestRouter(t)
	member := issue(t, tokens, auth.RoleUser)
	admin := issue(t, tokens, auth.RoleAdmin)
	body := `{"name":"Berry","manufacturerId":1,"price":12.5}`

	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		token      string
		wantStatus int
	}{
		{name: "public list", method: http.MethodGet, target: "/api/liquids", wantStatus: http.StatusOK},
		{name: "get needs a token", method: http.MethodGet, target: "/api/liquids/1", wantStatus: http.StatusUnauthorized},
		{name: "get with token", method: http.MethodGet, target: "/api/liquids/1", token: member, wantStatus: http.StatusOK},
		{name: "anonymous create", method: http.MethodPost, target: "/api/liquids", body: body, wantStatus: http.StatusUnauthorized},
		{name: "member create", method: http.MethodPost, target: "/api/liquids", body: body, token: member, wantStatus: http.StatusForbidden},
		{name: "admin create", method: http.MethodPost, target: "/api/liquids", body: body, token: admin, wantStatus: http.StatusCreated},
		{name: "bad token on public list", method: http.MethodGet, target: "/api/liquids", token: "garbage", wantStatus: http.StatusOK},
		{name: "bad token on member route", method: http.MethodGet, target: "/api/liquids/1", token: "garbage", wantStatus: http.StatusUnauthorized},
		{name: "bad token can still log in", method: http.MethodPost, target: "/api/users/login", body: `{"email":"a@example.com","password":"Secret123!"}`, token: "garbage", wantStatus: http.StatusOK},
		{name: "method not allowed", method: http.MethodPatch, target: "/api/liquids", wantStatus: http.StatusMethodNotAllowed},
		{name: "unknown route", method: http.MethodGet, target: "/api/unknown", wantStatus: http.StatusNotFound},
		{name: "member cannot create roles", method: http.MethodPost, target: "/api/roles", body: `"Manager"`, token: member, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := serve(handler, tt.method, tt.target, tt.body, tt.token)
			require.Equal(t, tt.wantStatus, res.Code, res.Body.String())
			if tt.wantStatus == http.StatusCreated {
				require.Equal(t, "/api/liquids/77", res.Header().Get("Location"))
			}
		})
	}
}

func TestRouterAmbientHeaders(t *testing.T) {
	handler, _ := newTestRouter(t)

	res := serve(handler, http.MethodGet, "/api/liquids", "", "")

	require.Equal(t, http.StatusOK, res.Code)
	require.NotEmpty(t, res.Header().Get("X-Request-ID"))
	require.Equal(t, "nosniff", res.Header().Get("X-Content-Type-Options"))
}

func TestRouterRecoversFromPanics(t *testing.T) {
	handler, tokens := newTestRouter(t)

	res := serve(handler, http.MethodDelete, "/api/liquids/1", "", issue(t, tokens, auth.RoleAdmin))

	require.Equal(t, http.StatusInternalServerError, res.Code)
	require.Equal(t, "application/problem+json", res.Header().Get("Content-Type"))
}

func TestRouterLoginRateLimit(t *testing.T) {
	handler, _ := newTestRouter(t)
	body := `{"email":"a@example.com","password":"Secret123!"}`

	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, serve(handler, http.MethodPost, "/api/users/login", body, "").Code)
	}
	res := serve(handler, http.MethodPost, "/api/users/login", body, "")
	require.Equal(t, http.StatusTooManyRequests, res.Code)
	require.NotEmpty(t, res.Header().Get("Retry-After"))

	// Public reads draw from a separate bucket.
	require.Equal(t, http.StatusOK, serve(handler, http.MethodGet, "/api/liquids", "", "").Code)
}

func TestRouterOperationalEndpoints(t *testing.T) {
	handler, _ := newTestRouter(t)

	require.Equal(t, http.StatusOK, serve(handler, http.MethodGet, "/healthz", "", "").Code)
	require.Equal(t, http.StatusOK, serve(handler, http.MethodGet, "/readyz", "", "").Code)
	require.Equal(t, http.StatusOK, serve(handler, http.MethodGet, "/health", "", "").Code)
	require.Equal(t, http.StatusOK, serve(handler, http.MethodGet, "/api/openapi.json", "", "").Code)

	version := serve(handler, http.MethodGet, "/version", "", "")
	require.Contains(t, version.Body.String(), `"version":"test"`)

	serve(handler, http.MethodGet, "/api/liquids", "", "")
	metricsRes := serve(handler, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, metricsRes.Code)
	require.Contains(t, metricsRes.Body.String(), `vapeshop_http_requests_total{method="GET",route="/api/liquids",status="200"}`)
}

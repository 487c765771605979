package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/vapeshop/catalog-server/internal/api/handlers"
	"github.com/vapeshop/catalog-server/internal/api/middleware"
	"github.com/vapeshop/catalog-server/internal/audit"
	"github.com/vapeshop/catalog-server/internal/auth"
	"github.com/vapeshop/catalog-server/internal/config"
	"github.com/vapeshop/catalog-server/internal/domain/inventory"
	"github.com/vapeshop/catalog-server/internal/metrics"
)

// Dependencies carries everything the HTTP layer needs. Services are
// interfaces so tests can substitute stubs.
type Dependencies struct {
	Config config.Config
	Logger zerolog.Logger
	Tokens *auth.JWTManager
	Store  handlers.Store

	Manufacturers handlers.ManufacturerService
	Liquids       handlers.LiquidService
	Devices       handlers.DeviceService
	Components    handlers.ComponentService
	Inventory     handlers.InventoryService
	Users         handlers.UserService

	Version   string
	GitCommit string
	BuildDate string
}

// NewRouter builds the complete handler chain. The returned stop function
// releases the rate limiter's cleanup goroutine.
func NewRouter(deps Dependencies) (http.Handler, func()) {
	cfg := deps.Config
	env := cfg.Environment

	limiter := middleware.NewRateLimiter(cfg.RateLimit, env)
	auditLogger := audit.NewLogger(deps.Logger)

	authed := middleware.RequireAuth(env)
	admin := middleware.RequireRole(auth.RoleAdmin, env)
	authTier := middleware.WithRateLimitTierHandler(middleware.TierAuth)

	public := func(h http.HandlerFunc) http.Handler {
		return limiter.Middleware(h)
	}
	member := func(h http.HandlerFunc) http.Handler {
		return limiter.Middleware(authed(h))
	}
	// adminOnly audits the outcome of every admin mutation.
	adminOnly := func(resource, idParam string, h http.HandlerFunc) http.Handler {
		return limiter.Middleware(admin(middleware.Audit(auditLogger, resource, idParam)(h)))
	}

	mux := http.NewServeMux()

	health := handlers.NewHealthChecker(deps.Store, deps.Version, deps.GitCommit)
	mux.Handle("GET /health", health.Health())
	mux.Handle("GET /healthz", health.Liveness())
	mux.Handle("GET /readyz", health.Readiness())
	mux.Handle("GET /version", handlers.Version(deps.Version, deps.GitCommit, deps.BuildDate))
	mux.Handle("GET /api/openapi.json", OpenAPIHandler())
	if cfg.Metrics.Enabled {
		mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{Registry: metrics.Registry}))
	}

	manufacturers := handlers.NewManufacturersHandler(deps.Manufacturers, env)
	mux.Handle("GET /api/manufacturers", public(manufacturers.List))
	mux.Handle("GET /api/manufacturers/{id}", member(manufacturers.Get))
	mux.Handle("POST /api/manufacturers", adminOnly("manufacturer", "id", manufacturers.Create))
	mux.Handle("PUT /api/manufacturers/{id}", adminOnly("manufacturer", "id", manufacturers.Update))
	mux.Handle("DELETE /api/manufacturers/{id}", adminOnly("manufacturer", "id", manufacturers.Delete))

	liquids := handlers.NewLiquidsHandler(deps.Liquids, env)
	mux.Handle("GET /api/liquids", public(liquids.List))
	mux.Handle("GET /api/liquids/{id}", member(liquids.Get))
	mux.Handle("POST /api/liquids", adminOnly("liquid", "id", liquids.Create))
	mux.Handle("PUT /api/liquids/{id}", adminOnly("liquid", "id", liquids.Update))
	mux.Handle("DELETE /api/liquids/{id}", adminOnly("liquid", "id", liquids.Delete))

	devices := handlers.NewDevicesHandler(deps.Devices, env)
	mux.Handle("GET /api/devices", public(devices.List))
	mux.Handle("GET /api/devices/{id}", member(devices.Get))
	mux.Handle("POST /api/devices", adminOnly("device", "id", devices.Create))
	mux.Handle("PUT /api/devices/{id}", adminOnly("device", "id", devices.Update))
	mux.Handle("DELETE /api/devices/{id}", adminOnly("device", "id", devices.Delete))
	mux.Handle("POST /api/devices/{deviceId}/components/{componentId}", adminOnly("device", "deviceId", devices.AddComponent))
	mux.Handle("DELETE /api/devices/{deviceId}/components/{componentId}", adminOnly("device", "deviceId", devices.RemoveComponent))

	components := handlers.NewComponentsHandler(deps.Components, env)
	mux.Handle("GET /api/components", public(components.List))
	mux.Handle("GET /api/components/{id}", member(components.Get))
	mux.Handle("POST /api/components", adminOnly("component", "id", components.Create))
	mux.Handle("PUT /api/components/{id}", adminOnly("component", "id", components.Update))
	mux.Handle("DELETE /api/components/{id}", adminOnly("component", "id", components.Delete))
	mux.Handle("POST /api/components/{componentId}/devices/{deviceId}", adminOnly("component", "componentId", components.AddDevice))
	mux.Handle("DELETE /api/components/{componentId}/devices/{deviceId}", adminOnly("component", "componentId", components.RemoveDevice))

	for segment, kind := range map[string]inventory.Kind{
		"liquids":    inventory.KindLiquid,
		"devices":    inventory.KindDevice,
		"components": inventory.KindComponent,
	} {
		stock := handlers.NewStockHandler(deps.Inventory, kind, env)
		mux.Handle("GET /api/"+segment+"/{id}/stock", member(stock.List))
		mux.Handle("PUT /api/"+segment+"/{id}/stock/{warehouse}", adminOnly("stock", "id", stock.Set))
		mux.Handle("DELETE /api/"+segment+"/{id}/stock/{warehouse}", adminOnly("stock", "id", stock.Remove))
	}

	users := handlers.NewUsersHandler(deps.Users, env)
	mux.Handle("POST /api/users/register", authTier(public(users.Register)))
	mux.Handle("POST /api/users/login", authTier(public(users.Login)))
	mux.Handle("GET /api/users/me", member(users.Me))
	mux.Handle("POST /api/roles", adminOnly("role", "", users.CreateRole))
	mux.Handle("POST /api/roles/assign", adminOnly("role", "", users.AssignRole))
	mux.Handle("POST /api/roles/remove", adminOnly("role", "", users.RemoveRole))

	var handler http.Handler = mux
	handler = metrics.HTTPMiddleware(handler)
	handler = middleware.Tracing(handler)
	handler = middleware.Authenticate(deps.Tokens, env)(handler)
	handler = middleware.RequestSize(cfg.Server.MaxBodyBytes)(handler)
	handler = middleware.CORS(cfg.CORS, deps.Logger)(handler)
	handler = middleware.SecurityHeaders(env == "production")(handler)
	handler = middleware.RequestLogging(deps.Logger)(handler)
	handler = middleware.CorrelationID(deps.Logger)(handler)
	handler = middleware.Recoverer(env)(handler)

	return handler, limiter.Stop
}

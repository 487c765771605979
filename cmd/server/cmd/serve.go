package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vapeshop/catalog-server/internal/api"
	"github.com/vapeshop/catalog-server/internal/auth"
	"github.com/vapeshop/catalog-server/internal/config"
	"github.com/vapeshop/catalog-server/internal/domain/components"
	"github.com/vapeshop/catalog-server/internal/domain/devices"
	"github.com/vapeshop/catalog-server/internal/domain/inventory"
	"github.com/vapeshop/catalog-server/internal/domain/liquids"
	"github.com/vapeshop/catalog-server/internal/domain/manufacturers"
	"github.com/vapeshop/catalog-server/internal/domain/users"
	"github.com/vapeshop/catalog-server/internal/metrics"
	"github.com/vapeshop/catalog-server/internal/storage"
	"github.com/vapeshop/catalog-server/internal/storage/postgres"
	"github.com/vapeshop/catalog-server/internal/telemetry"
)

type serveOptions struct {
	host string
	port int
}

func newServeCommand(root *rootOptions) *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the catalog HTTP server",
		Long: `Start the catalog HTTP server and begin accepting API requests.

The server will:
- Load configuration from environment variables (and --config if given)
- Apply pending database migrations when DATABASE_AUTO_MIGRATE is true
- Create the default roles and the ADMIN_EMAIL account when missing
- Serve the REST API, health probes and Prometheus metrics
- Shut down gracefully on SIGINT/SIGTERM

Examples:
  # Start with configuration from the environment
  server serve

  # Start on a specific host and port
  server serve --host 127.0.0.1 --port 9090

  # Start with a config file and debug logging
  server serve --config /etc/vapeshop/config.yaml --log-level debug`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, root, opts)
		},
	}

	cmd.Flags().StringVar(&opts.host, "host", "", "server host address (default: 0.0.0.0)")
	cmd.Flags().IntVar(&opts.port, "port", 0, "server port (default: 8080)")
	return cmd
}

func runServer(ctx context.Context, root *rootOptions, opts *serveOptions) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if opts.host != "" {
		cfg.Server.Host = opts.host
	}
	if opts.port != 0 {
		cfg.Server.Port = opts.port
	}

	logger := config.NewLogger(cfg.Logging)
	logger.Info().Str("version", Version).Str("environment", cfg.Environment).Msg("starting catalog server")

	metrics.Init(Version, GitCommit, BuildDate)

	shutdownTracing, err := telemetry.InitTracing(ctx, cfg.Tracing, Version)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Error().Err(err).Msg("tracer shutdown error")
		}
	}()

	if cfg.Database.AutoMigrate {
		if err := postgres.MigrateUp(cfg.Database.URL, ""); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info().Msg("database migrations applied")
	}

	pool, err := openPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	repo, err := postgres.NewRepository(pool)
	if err != nil {
		return err
	}

	tokens := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry(), cfg.Auth.JWTIssuer, cfg.Auth.JWTAudience)

	if err := bootstrapAdmin(ctx, repo, tokens, cfg, logger); err != nil {
		return fmt.Errorf("admin bootstrap: %w", err)
	}

	handler, stopLimiter := api.NewRouter(api.Dependencies{
		Config:        cfg,
		Logger:        logger,
		Tokens:        tokens,
		Store:         repo,
		Manufacturers: manufacturers.NewService(repo.Manufacturers()),
		Liquids:       liquids.NewService(repo.Liquids()),
		Devices:       devices.NewService(repo.Devices()),
		Components:    components.NewService(repo.Components()),
		Inventory:     inventory.NewService(repo.Inventory()),
		Users:         users.NewService(repo.Users(), tokens, cfg.Auth.BcryptCost, logger),
		Version:       Version,
		GitCommit:     GitCommit,
		BuildDate:     BuildDate,
	})
	defer stopLimiter()

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	if cfg.Metrics.Enabled {
		g.Go(func() error {
			return metrics.NewDBCollector(pool).Run(gctx, cfg.Metrics.DBStatsInterval)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

func openPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.MaxConnections > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConnections)
	}
	if cfg.MaxIdle > 0 && cfg.MaxIdle <= cfg.MaxConnections {
		poolCfg.MinConns = int32(cfg.MaxIdle)
	}
	poolCfg.ConnConfig.Tracer = metrics.QueryTracer{}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(connectCtx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return pool, nil
}

// bootstrapAdmin seeds roles and the admin account in one transaction so a
// failed start leaves nothing half-created.
func bootstrapAdmin(ctx context.Context, repo *postgres.Repository, tokens users.TokenIssuer, cfg config.Config, logger zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return repo.WithTx(ctx, func(ctx context.Context, tx storage.Repository) error {
		service := users.NewService(tx.Users(), tokens, cfg.Auth.BcryptCost, logger)
		return service.Bootstrap(ctx, users.AdminSeed{
			Email:    cfg.AdminBootstrap.Email,
			Password: cfg.AdminBootstrap.Password,
		})
	})
}

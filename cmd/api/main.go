package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront-backend/api"
	"github.com/angelmondragon/storefront-backend/api/routes"
	"github.com/angelmondragon/storefront-backend/internal/admins"
	"github.com/angelmondragon/storefront-backend/internal/blog"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/categories"
	"github.com/angelmondragon/storefront-backend/internal/health"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	products "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/internal/stats"
	"github.com/angelmondragon/storefront-backend/pkg/auth/session"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/migrate"
	"github.com/angelmondragon/storefront-backend/pkg/pricing"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		SiteVariant: cfg.App.SiteVariant,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		return err
	}
	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return multierr.Append(err, dbClient.Close())
	}
	defer func() {
		if closeErr := multierr.Combine(dbClient.Close(), redisClient.Close()); closeErr != nil {
			logg.Error(context.Background(), "error closing connections", closeErr)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	policy, err := pricing.PolicyFromConfig(cfg.Pricing)
	if err != nil {
		return err
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	conn := dbClient.DB()
	categoryRepo := categories.NewRepository(conn)
	categoryService, err := categories.NewService(categoryRepo, dbClient, logg)
	if err != nil {
		return err
	}

	productRepo := products.NewRepository(conn)
	productService, err := products.NewService(productRepo, categoryRepo, cfg.Catalog, metrics.NewCatalogMetrics(registry), logg)
	if err != nil {
		return err
	}

	blogService, err := blog.NewService(blog.NewRepository(conn), categoryRepo, logg)
	if err != nil {
		return err
	}

	var carts cart.Store
	if cfg.FeatureFlags.UseMemoryCarts {
		logg.Warn(ctx, "carts are held in process memory")
		carts = cart.NewMemoryStore(cfg.Cart.SessionTTL)
	} else {
		carts, err = cart.NewRedisStore(redisClient, cfg.Cart.SessionTTL, redis.IsNil)
		if err != nil {
			return err
		}
	}
	cartService, err := cart.NewService(carts, productService, policy, metrics.NewCartMetrics(registry), logg)
	if err != nil {
		return err
	}

	orderService, err := orders.NewService(orders.NewRepository(conn), dbClient, carts, productRepo, policy, logg)
	if err != nil {
		return err
	}

	adminService, err := admins.NewService(admins.ServiceParams{
		Repo:             admins.NewRepository(conn),
		Sessions:         sessionManager,
		JWTConfig:        cfg.JWT,
		PasswordConfig:   cfg.Password,
		RegistrationOpen: cfg.FeatureFlags.AllowRegistration && !cfg.App.IsProd(),
		Logger:           logg,
	})
	if err != nil {
		return err
	}

	statsService, err := stats.NewService(conn)
	if err != nil {
		return err
	}

	healthService, err := health.NewService(health.NewRepository(conn), logg)
	if err != nil {
		return err
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	serverCtx := logg.WithFields(ctx, map[string]any{
		"env":          cfg.App.Env,
		"addr":         addr,
		"site_variant": cfg.App.SiteVariant,
		"memory_carts": cfg.FeatureFlags.UseMemoryCarts,
	})
	logg.Info(serverCtx, "starting api server")

	handler := routes.NewRouter(
		cfg,
		logg,
		dbClient,
		redisClient,
		sessionManager,
		registry,
		metrics.NewHTTPMetrics(registry),
		productService,
		categoryService,
		blogService,
		cartService,
		orderService,
		adminService,
		statsService,
		healthService,
	)

	if err := api.Serve(ctx, api.NewServer(addr, handler), shutdownGrace); err != nil {
		return err
	}
	logg.Info(serverCtx, "api server stopped")
	return nil
}

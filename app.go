package main

import (
	"errors"
	"log/slog"
	"time"

	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/handlers"
	"storefront/internal/metrics"
	"storefront/internal/middleware"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

// Deps are the resources NewApp wires together. DB is required unless the config
// selects the memory driver; Cache and Publisher are optional.
type Deps struct {
	Config    *config.Config
	Logger    *slog.Logger
	DB        *gorm.DB
	Cache     cache.OrderCache
	Publisher services.EventPublisher
	Registry  *prometheus.Registry
}

// NewApp builds the fiber application with every route registered.
func NewApp(deps Deps) (*fiber.App, error) {
	cfg := deps.Config
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	registry := deps.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	accounts, orders, err := newRepositories(cfg, deps.DB)
	if err != nil {
		return nil, err
	}

	m := metrics.New(registry)
	authService := services.NewAuthService(accounts, services.NewBcryptHasher(cfg.BcryptCost), cfg.JWTSecret, cfg.TokenTTL, m, log)
	accountService := services.NewAccountService(accounts, log)
	orderService := services.NewOrderService(orders, services.OrderServiceConfig{
		Pricing:          services.NewPricing(cfg.ShippingFee),
		TrustClientTotal: cfg.TrustClientTotal,
		Cache:            deps.Cache,
		Publisher:        deps.Publisher,
		Metrics:          m,
		Logger:           log,
	})

	app := fiber.New(fiber.Config{
		AppName:      "storefront",
		ErrorHandler: handlers.ErrorHandler(log),
	})

	// --- Middleware ---
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigin,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler(registry)))

	api := app.Group("/api")
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Public
	handlers.NewAuthHandler(authService).RegisterRoutes(api)

	// Account, cart and order routes need a bearer token.
	auth := middleware.AuthRequired(authService)
	handlers.NewAccountHandler(accountService).RegisterRoutes(api, auth)
	handlers.NewOrderHandler(orderService).RegisterRoutes(api, auth, middleware.RequireAdmin(cfg.AdminIdentifiers))

	return app, nil
}

func newRepositories(cfg *config.Config, db *gorm.DB) (repositories.AccountRepository, repositories.OrderRepository, error) {
	if cfg.DBDriver == config.DriverMemory {
		accounts := repositories.NewMemoryAccountRepository()
		return accounts, repositories.NewMemoryOrderRepository(accounts), nil
	}
	if db == nil {
		return nil, nil, errors.New("database connection is required for driver " + cfg.DBDriver)
	}
	return repositories.NewGORMAccountRepository(db), repositories.NewGORMOrderRepository(db), nil
}

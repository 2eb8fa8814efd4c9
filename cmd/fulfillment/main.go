// Command fulfillment applies order status changes received on the order_status
// queue. It is the only writer of order status.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/database"
	applogger "storefront/internal/logger"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/pkg/rabbitmq"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}
	log := applogger.New(cfg.LogLevel)

	if cfg.RabbitMQURL == "" {
		log.Error("RABBITMQ_URL must be set for the fulfillment worker")
		os.Exit(1)
	}
	if cfg.DBDriver == config.DriverMemory {
		log.Error("the fulfillment worker needs a shared database, not the memory driver")
		os.Exit(1)
	}

	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer database.Close(db)

	mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Logger: log})
	if err != nil {
		log.Error("failed to initialize RabbitMQ client", slog.Any("error", err))
		os.Exit(1)
	}
	defer mqClient.Close()

	serviceCfg := services.OrderServiceConfig{
		Pricing:   services.NewPricing(cfg.ShippingFee),
		Publisher: mqClient,
		Logger:    log,
	}
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		serviceCfg.Cache = cache.NewRedisOrderCache(client, cfg.RedisTTL)
	}
	orderService := services.NewOrderService(repositories.NewGORMOrderRepository(db), serviceCfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = mqClient.Consume(ctx, rabbitmq.OrderStatusQueue, statusHandler(orderService, log))
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error("consumer stopped", slog.Any("error", err))
		os.Exit(1)
	}
	log.Info("fulfillment worker stopped")
}

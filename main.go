package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/database"
	applogger "storefront/internal/logger"
	"storefront/internal/services"
	"storefront/pkg/rabbitmq"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}
	log := applogger.New(cfg.LogLevel)

	// --- Database ---
	var db *gorm.DB
	if cfg.DBDriver != config.DriverMemory {
		db, err = database.Open(cfg.DBDriver, cfg.DatabaseDSN)
		if err != nil {
			log.Error("failed to open database", slog.Any("error", err))
			os.Exit(1)
		}
		defer database.Close(db)
	}

	// --- Order cache (optional) ---
	var orderCache cache.OrderCache
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := client.Ping(ctx).Err()
		cancel()
		if err != nil {
			log.Error("failed to reach redis", slog.String("addr", cfg.RedisAddr), slog.Any("error", err))
			os.Exit(1)
		}
		defer client.Close()
		orderCache = cache.NewRedisOrderCache(client, cfg.RedisTTL)
	}

	// --- Order events (optional) ---
	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Logger: log})
		if err != nil {
			log.Error("failed to initialize RabbitMQ client", slog.Any("error", err))
			os.Exit(1)
		}
		defer mqClient.Close()
		publisher = mqClient
	}

	app, err := NewApp(Deps{
		Config:    cfg,
		Logger:    log,
		DB:        db,
		Cache:     orderCache,
		Publisher: publisher,
	})
	if err != nil {
		log.Error("failed to build app", slog.Any("error", err))
		os.Exit(1)
	}

	// --- Start HTTP Server ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("starting server", slog.String("addr", cfg.AppPort), slog.String("db_driver", cfg.DBDriver))
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Error("server failed", slog.Any("error", err))
			quit <- syscall.SIGTERM
		}
	}()

	<-quit
	log.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("error during shutdown", slog.Any("error", err))
	}
	log.Info("server gracefully stopped")
}

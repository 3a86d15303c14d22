package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Pesokrava/point_of_sale/internal/config"
	"github.com/Pesokrava/point_of_sale/internal/delivery/events"
	"github.com/Pesokrava/point_of_sale/internal/domain"
	"github.com/Pesokrava/point_of_sale/internal/pkg/cache"
	"github.com/Pesokrava/point_of_sale/internal/pkg/database"
	"github.com/Pesokrava/point_of_sale/internal/pkg/logger"
	cacheRepo "github.com/Pesokrava/point_of_sale/internal/repository/cache"
	"github.com/Pesokrava/point_of_sale/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.New(cfg.Env, cfg.LogLevel).Component("stock-worker")
	appLogger.Info("Starting stock alert worker...")

	appLogger.Info("Connecting to PostgreSQL...")
	db, err := database.WaitForDB(cfg, 10, 2*time.Second)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", err)
	}
	defer db.Close()

	appLogger.Info("Connecting to Redis...")
	redisClient, err := cache.WaitForRedis(cfg, 10, 2*time.Second)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", err)
	}
	defer redisClient.Close()

	alerts := cacheRepo.NewAlertStore(redisClient, cfg.Redis.AlertKey)
	checker := worker.NewStockChecker(db, alerts, cfg.POS.LowStockThreshold, appLogger)
	stockWorker := worker.NewStockAlertWorker(checker, cfg.Worker.DebounceWindow, appLogger)

	appLogger.Info("Connecting to NATS JetStream...")
	nc, err := events.Connect(cfg, events.ConsumerName, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to NATS", err)
	}
	defer nc.Close()

	js, err := nc.JetStream()
	if err != nil {
		appLogger.Fatal("Failed to create JetStream context", err)
	}

	streamConfig := events.NewStreamConfig(js, appLogger)
	if err := streamConfig.EnsureStream(); err != nil {
		appLogger.Fatal("Failed to ensure stream", err)
	}
	if err := streamConfig.EnsureConsumer(); err != nil {
		appLogger.Fatal("Failed to ensure consumer", err)
	}

	sub, err := js.PullSubscribe(domain.SubjectSaleEvents, events.ConsumerName, nats.ManualAck())
	if err != nil {
		appLogger.Fatal("Failed to subscribe to JetStream consumer", err)
	}
	defer func() {
		if err := sub.Unsubscribe(); err != nil {
			appLogger.Error("Failed to unsubscribe from JetStream", err)
		}
	}()

	appLogger.WithFields(map[string]interface{}{
		"stream":    events.StreamName,
		"consumer":  events.ConsumerName,
		"threshold": cfg.POS.LowStockThreshold,
		"debounce":  cfg.Worker.DebounceWindow.String(),
	}).Info("Subscribed to JetStream consumer")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		worker.Consume(ctx, sub, stockWorker.HandleEvent, appLogger)
	}()

	<-ctx.Done()
	appLogger.Info("Received shutdown signal")
	<-done

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := stockWorker.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Error during shutdown", err)
	}

	appLogger.Info("Stock alert worker stopped")
}

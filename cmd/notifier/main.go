package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Pesokrava/point_of_sale/internal/config"
	"github.com/Pesokrava/point_of_sale/internal/delivery/events"
	"github.com/Pesokrava/point_of_sale/internal/domain"
	"github.com/Pesokrava/point_of_sale/internal/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.New(cfg.Env, cfg.LogLevel)
	appLogger.Info("Starting sale notifier...")

	consumer, err := events.NewConsumer(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to create NATS consumer", err)
	}
	defer consumer.Close()

	if err := consumer.Subscribe(domain.SubjectSaleEvents, events.LoggingHandler(appLogger)); err != nil {
		appLogger.Fatal("Failed to subscribe to "+domain.SubjectSaleEvents, err)
	}

	appLogger.Info("Sale notifier started and listening for events...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down sale notifier...")
}

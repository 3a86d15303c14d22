package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Pesokrava/point_of_sale/internal/config"
	"github.com/Pesokrava/point_of_sale/internal/delivery/events"
	httpDelivery "github.com/Pesokrava/point_of_sale/internal/delivery/http"
	"github.com/Pesokrava/point_of_sale/internal/delivery/http/handler"
	"github.com/Pesokrava/point_of_sale/internal/domain"
	"github.com/Pesokrava/point_of_sale/internal/pkg/cache"
	"github.com/Pesokrava/point_of_sale/internal/pkg/database"
	"github.com/Pesokrava/point_of_sale/internal/pkg/logger"
	cacheRepo "github.com/Pesokrava/point_of_sale/internal/repository/cache"
	"github.com/Pesokrava/point_of_sale/internal/repository/deadline"
	"github.com/Pesokrava/point_of_sale/internal/repository/kv"
	"github.com/Pesokrava/point_of_sale/internal/repository/postgres"
	"github.com/Pesokrava/point_of_sale/internal/usecase/cart"
	"github.com/Pesokrava/point_of_sale/internal/usecase/catalog"
	"github.com/Pesokrava/point_of_sale/internal/usecase/checkout"
	"github.com/Pesokrava/point_of_sale/internal/usecase/sales"

	_ "github.com/Pesokrava/point_of_sale/docs"
)

// @title Point of Sale API
// @version 1.0
// @description Product catalog, carts, checkout and sales history for a single point of sale.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @tag.name Products
// @tag.description Catalog management endpoints

// @tag.name Carts
// @tag.description Cart and checkout endpoints

// @tag.name Sales
// @tag.description Sales history endpoints

// @tag.name Dashboard
// @tag.description Summary and stock alert endpoints

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.New(cfg.Env, cfg.LogLevel)
	appLogger.Info("Starting Point of Sale API...")

	var closers []func()
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	var repo domain.Repository
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		appLogger.Info("Connecting to PostgreSQL...")
		db, err := database.WaitForDB(cfg, 10, 2*time.Second)
		if err != nil {
			appLogger.Fatal("Failed to connect to database", err)
		}
		closers = append(closers, func() { _ = db.Close() })

		if cfg.Database.AutoMigrate {
			applied, err := database.RunMigrations(db)
			if err != nil {
				appLogger.Fatal("Failed to run migrations", err)
			}
			if applied {
				appLogger.Info("Database migrations applied")
			}
		}
		repo = postgres.NewRepository(db)

	case config.DriverRedis:
		appLogger.Info("Connecting to Redis key-value store...")
		client, err := cache.WaitForRedis(cfg, 10, 2*time.Second)
		if err != nil {
			appLogger.Fatal("Failed to connect to Redis", err)
		}
		closers = append(closers, func() { _ = client.Close() })
		repo = kv.NewRepository(kv.NewRedisStore(client), cfg.Storage.ProductsKey, cfg.Storage.SalesKey)

	default:
		appLogger.Warn("Using in-memory storage, data is lost on restart")
		repo = kv.NewRepository(kv.NewMemoryStore(), cfg.Storage.ProductsKey, cfg.Storage.SalesKey)
	}
	repo = deadline.Wrap(repo, cfg.Storage.OpTimeout)

	appLogger.WithFields(map[string]interface{}{
		"driver":     cfg.Storage.Driver,
		"op_timeout": cfg.Storage.OpTimeout.String(),
	}).Info("Storage ready")

	store := catalog.NewStore(repo, appLogger.Component("catalog"), catalog.WithSampleSeed(cfg.POS.SeedSamples))
	ledger := sales.NewLedger(repo, appLogger.Component("sales"), time.Local)

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), time.Minute)
	if err := store.Load(loadCtx); err != nil {
		appLogger.Fatal("Failed to load products", err)
	}
	if err := ledger.Load(loadCtx); err != nil {
		appLogger.Fatal("Failed to load sales", err)
	}
	cancelLoad()

	var publisher checkout.EventPublisher = events.NewNopPublisher(appLogger)
	if cfg.NATS.Enabled {
		appLogger.Info("Connecting to NATS...")
		natsPublisher, err := events.NewPublisher(cfg, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to create NATS publisher", err)
		}
		closers = append(closers, natsPublisher.Close)
		publisher = natsPublisher
	}

	// Alerts are written by the stock worker; the API only reads them.
	var alerts handler.AlertLister
	alertCtx, cancelAlert := context.WithTimeout(context.Background(), 5*time.Second)
	alertClient, err := cache.Dial(alertCtx, cfg)
	cancelAlert()
	if err != nil {
		appLogger.Warnf("Redis unavailable, low-stock alerts disabled: %v", err)
	} else {
		closers = append(closers, func() { _ = alertClient.Close() })
		alerts = cacheRepo.NewAlertStore(alertClient, cfg.Redis.AlertKey)
	}

	checkoutService := checkout.NewService(repo, store, ledger, publisher, appLogger.Component("checkout"), checkout.Options{
		PaymentMethods: cfg.POS.PaymentMethods,
		Policy: catalog.StockPolicy{
			AllowOversell:  cfg.POS.AllowOversell,
			AbortOnMissing: cfg.POS.MissingProductPolicy == config.MissingProductAbort,
		},
	})

	router := httpDelivery.NewRouter(httpDelivery.Handlers{
		Products:  handler.NewProductHandler(store, cfg.POS.LowStockThreshold, appLogger),
		Carts:     handler.NewCartHandler(cart.NewRegistry(), store, checkoutService, appLogger),
		Sales:     handler.NewSaleHandler(ledger, appLogger),
		Dashboard: handler.NewDashboardHandler(store, ledger, alerts, cfg.POS.LowStockThreshold, appLogger),
	}, cfg, appLogger)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		appLogger.Infof("HTTP server listening on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("HTTP server failed", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", err)
		return
	}

	appLogger.Info("Server stopped gracefully")
}

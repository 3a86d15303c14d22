package database

import (
	"context"
	"fmt"
	"time"

	"github.com/eapache/go-resiliency/retrier"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/Pesokrava/point_of_sale/internal/config"
)

// Open connects to PostgreSQL, applies pool limits and pings the server
func Open(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

// WaitForDB keeps dialing until the database answers or retries run out
func WaitForDB(cfg *config.Config, maxRetries int, retryDelay time.Duration) (*sqlx.DB, error) {
	var db *sqlx.DB
	r := retrier.New(retrier.ConstantBackoff(maxRetries, retryDelay), nil)
	err := r.RunCtx(context.Background(), func(ctx context.Context) error {
		var openErr error
		db, openErr = Open(ctx, cfg)
		return openErr
	})
	if err != nil {
		return nil, fmt.Errorf("postgres %s:%s unavailable: %w", cfg.Database.Host, cfg.Database.Port, err)
	}
	return db, nil
}

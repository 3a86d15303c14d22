package worker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Pesokrava/point_of_sale/internal/domain"
	"github.com/Pesokrava/point_of_sale/internal/pkg/logger"
)

// AlertSink stores open low-stock alerts
type AlertSink interface {
	Raise(ctx context.Context, alert domain.StockAlert) error
	Clear(ctx context.Context, productID uuid.UUID) error
}

type stockLevel struct {
	Nome    string `db:"nome"`
	Estoque int    `db:"estoque"`
}

// StockChecker compares a product's persisted stock with the low-stock threshold
type StockChecker struct {
	db        *sqlx.DB
	sink      AlertSink
	threshold int
	logger    *logger.Logger
	now       func() time.Time
}

// NewStockChecker creates a new stock checker
func NewStockChecker(db *sqlx.DB, sink AlertSink, threshold int, log *logger.Logger) *StockChecker {
	return &StockChecker{
		db:        db,
		sink:      sink,
		threshold: threshold,
		logger:    log,
		now:       time.Now,
	}
}

// Check raises an alert when stock is below the threshold and clears it otherwise.
// Deleted products have their alert cleared.
func (c *StockChecker) Check(ctx context.Context, productID uuid.UUID) error {
	var level stockLevel
	err := c.db.GetContext(ctx, &level, `SELECT nome, estoque FROM produtos WHERE id = $1`, productID)
	if errors.Is(err, sql.ErrNoRows) {
		c.logger.WithFields(map[string]any{
			"product_id": productID.String(),
		}).Info("Product no longer exists, clearing alert")
		return c.sink.Clear(ctx, productID)
	}
	if err != nil {
		return fmt.Errorf("failed to read stock: %w", err)
	}

	if level.Estoque >= c.threshold {
		return c.sink.Clear(ctx, productID)
	}

	c.logger.WithFields(map[string]any{
		"product_id": productID.String(),
		"stock":      level.Estoque,
		"threshold":  c.threshold,
	}).Warn("Low stock")

	return c.sink.Raise(ctx, domain.StockAlert{
		ProductID: productID,
		Name:      level.Nome,
		Stock:     level.Estoque,
		Threshold: c.threshold,
		RaisedAt:  c.now(),
	})
}

package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Pesokrava/point_of_sale/internal/domain"
)

// StockPolicy controls how a sale is reconciled against current stock
type StockPolicy struct {
	// AllowOversell lets stock go negative instead of failing with ErrInsufficientStock
	AllowOversell bool
	// AbortOnMissing fails with ErrNotFound when a sold product no longer exists;
	// otherwise the line is sold without a stock adjustment
	AbortOnMissing bool
}

// StockChange pairs a product before and after a sale
type StockChange struct {
	Before *domain.Product
	After  *domain.Product
}

// PersistFunc durably records a sale's stock changes
type PersistFunc func(ctx context.Context, changes []StockChange) error

// ApplySale computes post-sale stock for items and swaps the adjusted products in
// only after persist succeeds. The catalog stays locked for the whole call so the
// computed levels cannot go stale.
func (s *Store) ApplySale(ctx context.Context, items []domain.SaleItem, policy StockPolicy, persist PersistFunc) ([]StockChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changes, err := s.planLocked(items, policy)
	if err != nil {
		return nil, err
	}

	if err := persist(ctx, changes); err != nil {
		return nil, err
	}

	for _, change := range changes {
		if idx := s.indexOf(change.After.ID); idx >= 0 {
			s.products[idx] = change.After
		}
	}

	out := make([]StockChange, len(changes))
	for i, change := range changes {
		out[i] = StockChange{Before: change.Before.Clone(), After: change.After.Clone()}
	}
	return out, nil
}

func (s *Store) planLocked(items []domain.SaleItem, policy StockPolicy) ([]StockChange, error) {
	sold := make(map[uuid.UUID]int, len(items))
	order := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if _, ok := sold[item.ProductID]; !ok {
			order = append(order, item.ProductID)
		}
		sold[item.ProductID] += item.Quantity
	}

	now := s.now()
	changes := make([]StockChange, 0, len(order))
	for _, id := range order {
		idx := s.indexOf(id)
		if idx < 0 {
			if policy.AbortOnMissing {
				return nil, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
			}
			s.logger.WithFields(map[string]interface{}{
				"product_id": id,
			}).Warn("Sold product no longer in catalog, stock not adjusted")
			continue
		}

		before := s.products[idx]
		remaining := before.Stock - sold[id]
		if remaining < 0 && !policy.AllowOversell {
			return nil, fmt.Errorf("%w: %s has %d, requested %d",
				domain.ErrInsufficientStock, before.Name, before.Stock, sold[id])
		}

		after := before.Clone()
		after.Stock = remaining
		after.UpdatedAt = now
		changes = append(changes, StockChange{Before: before.Clone(), After: after})
	}

	return changes, nil
}

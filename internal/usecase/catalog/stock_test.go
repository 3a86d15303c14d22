package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/point_of_sale/internal/domain"
)

func saleItem(p *domain.Product, qty int) domain.SaleItem {
	return domain.SaleItem{ProductID: p.ID, Name: p.Name, Quantity: qty, UnitPrice: p.Price}
}

func acceptAll(_ context.Context, _ []StockChange) error {
	return nil
}

func TestStore_ApplySale_DecrementsStock(t *testing.T) {
	repo := new(MockRepository)
	coke := product("Coca-Cola 2L", 50)
	store := seeded(t, repo, coke)

	var persisted []StockChange
	changes, err := store.ApplySale(context.Background(), []domain.SaleItem{saleItem(coke, 3)}, StockPolicy{},
		func(_ context.Context, c []StockChange) error {
			persisted = c
			return nil
		})

	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, 50, changes[0].Before.Stock)
	assert.Equal(t, 47, changes[0].After.Stock)
	require.Len(t, persisted, 1)
	assert.Equal(t, 47, persisted[0].After.Stock)

	current, err := store.Get(coke.ID)
	require.NoError(t, err)
	assert.Equal(t, 47, current.Stock)
}

func TestStore_ApplySale_PersistFailureLeavesStock(t *testing.T) {
	repo := new(MockRepository)
	coke := product("Coca-Cola 2L", 50)
	store := seeded(t, repo, coke)

	_, err := store.ApplySale(context.Background(), []domain.SaleItem{saleItem(coke, 3)}, StockPolicy{},
		func(context.Context, []StockChange) error {
			return domain.NewStorageError("commit sale", errors.New("disk full"))
		})

	assert.ErrorIs(t, err, domain.ErrStorage)
	current, _ := store.Get(coke.ID)
	assert.Equal(t, 50, current.Stock)
}

func TestStore_ApplySale_Oversell(t *testing.T) {
	repo := new(MockRepository)
	rice := product("Arroz 5kg", 2)
	store := seeded(t, repo, rice)
	items := []domain.SaleItem{saleItem(rice, 5)}

	t.Run("rejected by default", func(t *testing.T) {
		called := false
		_, err := store.ApplySale(context.Background(), items, StockPolicy{}, func(context.Context, []StockChange) error {
			called = true
			return nil
		})

		assert.ErrorIs(t, err, domain.ErrInsufficientStock)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.False(t, called)
	})

	t.Run("allowed by policy", func(t *testing.T) {
		changes, err := store.ApplySale(context.Background(), items, StockPolicy{AllowOversell: true}, acceptAll)

		require.NoError(t, err)
		assert.Equal(t, -3, changes[0].After.Stock)
	})
}

func TestStore_ApplySale_MissingProduct(t *testing.T) {
	repo := new(MockRepository)
	coke := product("Coca-Cola 2L", 50)
	store := seeded(t, repo, coke)
	ghost := domain.SaleItem{ProductID: uuid.New(), Name: "Removido", Quantity: 1}
	items := []domain.SaleItem{saleItem(coke, 1), ghost}

	t.Run("skipped", func(t *testing.T) {
		changes, err := store.ApplySale(context.Background(), items, StockPolicy{}, acceptAll)

		require.NoError(t, err)
		require.Len(t, changes, 1)
		assert.Equal(t, coke.ID, changes[0].After.ID)
	})

	t.Run("aborts", func(t *testing.T) {
		before, _ := store.Get(coke.ID)

		_, err := store.ApplySale(context.Background(), items, StockPolicy{AbortOnMissing: true}, acceptAll)

		assert.ErrorIs(t, err, domain.ErrNotFound)
		after, _ := store.Get(coke.ID)
		assert.Equal(t, before.Stock, after.Stock)
	})
}

func TestStore_ApplySale_MergesRepeatedProduct(t *testing.T) {
	repo := new(MockRepository)
	bread := product("Pão Francês", 10)
	store := seeded(t, repo, bread)

	changes, err := store.ApplySale(context.Background(),
		[]domain.SaleItem{saleItem(bread, 4), saleItem(bread, 4)}, StockPolicy{}, acceptAll)

	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, 2, changes[0].After.Stock)
}

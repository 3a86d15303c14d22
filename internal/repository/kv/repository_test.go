package kv

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/point_of_sale/internal/domain"
)

// MockStore is a mock implementation of Store
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockStore) SetMany(ctx context.Context, entries map[string][]byte) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func newProduct(name string, stock int) *domain.Product {
	return &domain.Product{
		ID:    uuid.New(),
		Name:  name,
		Price: decimal.RequireFromString("8.50"),
		Cost:  decimal.RequireFromString("5.00"),
		Stock: stock,
	}
}

func newSale(productID uuid.UUID) *domain.Sale {
	return &domain.Sale{
		ID:   uuid.New(),
		Date: time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC),
		Items: []domain.SaleItem{
			{ProductID: productID, Name: "Coca-Cola 2L", Quantity: 2, UnitPrice: decimal.RequireFromString("8.50")},
		},
		Total:         decimal.RequireFromString("17.00"),
		PaymentMethod: "Pix",
	}
}

func TestRepository_EmptyStore(t *testing.T) {
	repo := NewRepository(NewMemoryStore(), "pdv_products", "pdv_sales")

	products, err := repo.LoadProducts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)

	sales, err := repo.LoadSales(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sales)
}

func TestRepository_SaveProduct_InsertThenReplace(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(NewMemoryStore(), "pdv_products", "pdv_sales")

	first := newProduct("Coca-Cola 2L", 50)
	second := newProduct("Pão Francês", 100)

	_, err := repo.SaveProduct(ctx, first)
	require.NoError(t, err)
	_, err = repo.SaveProduct(ctx, second)
	require.NoError(t, err)

	first.Stock = 47
	_, err = repo.SaveProduct(ctx, first)
	require.NoError(t, err)

	products, err := repo.LoadProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, first.ID, products[0].ID)
	assert.Equal(t, 47, products[0].Stock)
	assert.True(t, products[0].Price.Equal(decimal.RequireFromString("8.5")))
	assert.Equal(t, second.ID, products[1].ID)
}

func TestRepository_DeleteProduct(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(NewMemoryStore(), "pdv_products", "pdv_sales")

	p := newProduct("Arroz 5kg", 20)
	_, err := repo.SaveProduct(ctx, p)
	require.NoError(t, err)

	require.NoError(t, repo.DeleteProduct(ctx, p.ID))
	assert.ErrorIs(t, repo.DeleteProduct(ctx, p.ID), domain.ErrNotFound)

	products, err := repo.LoadProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestRepository_SaveSale_MostRecentFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(NewMemoryStore(), "pdv_products", "pdv_sales")

	older := newSale(uuid.New())
	newer := newSale(uuid.New())

	_, err := repo.SaveSale(ctx, older)
	require.NoError(t, err)
	_, err = repo.SaveSale(ctx, newer)
	require.NoError(t, err)

	sales, err := repo.LoadSales(ctx)
	require.NoError(t, err)
	require.Len(t, sales, 2)
	assert.Equal(t, newer.ID, sales[0].ID)
	assert.Equal(t, older.ID, sales[1].ID)
	assert.Equal(t, "Coca-Cola 2L", sales[0].Items[0].Name)
	assert.True(t, sales[0].Total.Equal(decimal.RequireFromString("17")))
}

func TestRepository_CommitSale_WritesBothRecords(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(NewMemoryStore(), "pdv_products", "pdv_sales")

	p := newProduct("Coca-Cola 2L", 50)
	_, err := repo.SaveProduct(ctx, p)
	require.NoError(t, err)

	adjusted := p.Clone()
	adjusted.Stock = 48
	sale := newSale(p.ID)

	require.NoError(t, repo.CommitSale(ctx, sale, []*domain.Product{adjusted}))

	products, err := repo.LoadProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 48, products[0].Stock)

	sales, err := repo.LoadSales(ctx)
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, sale.ID, sales[0].ID)
}

func TestRepository_CommitSale_UnknownProductWritesNothing(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(NewMemoryStore(), "pdv_products", "pdv_sales")

	ghost := newProduct("Gone", 1)
	err := repo.CommitSale(ctx, newSale(ghost.ID), []*domain.Product{ghost})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	sales, err := repo.LoadSales(ctx)
	require.NoError(t, err)
	assert.Empty(t, sales)
}

func TestRepository_CommitSale_StoreFailure(t *testing.T) {
	ctx := context.Background()
	store := new(MockStore)
	repo := NewRepository(store, "pdv_products", "pdv_sales")

	p := newProduct("Coca-Cola 2L", 50)
	store.On("Get", mock.Anything, "pdv_products").Return([]byte(`[{"id":"`+p.ID.String()+`","name":"Coca-Cola 2L","price":"8.5","cost":"5","stock":50}]`), nil)
	store.On("Get", mock.Anything, "pdv_sales").Return(nil, nil)
	store.On("SetMany", mock.Anything, mock.MatchedBy(func(entries map[string][]byte) bool {
		return len(entries) == 2
	})).Return(errors.New("connection reset"))

	adjusted := p.Clone()
	adjusted.Stock = 48
	err := repo.CommitSale(ctx, newSale(p.ID), []*domain.Product{adjusted})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	store.AssertExpectations(t)
}

func TestRepository_CorruptRecord(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.SetMany(context.Background(), map[string][]byte{"pdv_products": []byte("{not json")}))
	repo := NewRepository(store, "pdv_products", "pdv_sales")

	_, err := repo.LoadProducts(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "decode pdv_products")
}

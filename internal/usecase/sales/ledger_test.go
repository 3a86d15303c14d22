package sales

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
	"github.com/Pesokrava/point_of_sale/internal/pkg/logger"
)

// MockRepository is a mock implementation of domain.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) LoadProducts(ctx context.Context) ([]*domain.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Product), args.Error(1)
}

func (m *MockRepository) LoadSales(ctx context.Context) ([]*domain.Sale, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Sale), args.Error(1)
}

func (m *MockRepository) SaveProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	args := m.Called(ctx, product)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockRepository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) SaveSale(ctx context.Context, sale *domain.Sale) (*domain.Sale, error) {
	args := m.Called(ctx, sale)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Sale), args.Error(1)
}

func newSale(date time.Time, total, method string, itemNames ...string) *domain.Sale {
	items := make([]domain.SaleItem, 0, len(itemNames))
	for _, name := range itemNames {
		items = append(items, domain.SaleItem{ProductID: uuid.New(), Name: name, Quantity: 1, UnitPrice: decimal.RequireFromString(total)})
	}
	return &domain.Sale{
		ID:            uuid.New(),
		Date:          date,
		Items:         items,
		Total:         decimal.RequireFromString(total),
		PaymentMethod: method,
	}
}

func newTestLedger(t *testing.T, sales ...*domain.Sale) *Ledger {
	t.Helper()
	repo := new(MockRepository)
	repo.On("LoadSales", mock.Anything).Return(sales, nil)
	ledger := NewLedger(repo, logger.New("test"), time.UTC)
	require.NoError(t, ledger.Load(context.Background()))
	return ledger
}

func TestLedger_Load_Error(t *testing.T) {
	repo := new(MockRepository)
	repo.On("LoadSales", mock.Anything).Return(nil, errors.New("unreachable"))
	ledger := NewLedger(repo, logger.New("test"), time.UTC)

	assert.Error(t, ledger.Load(context.Background()))
	assert.Empty(t, ledger.List())
}

func TestLedger_Append_MostRecentFirst(t *testing.T) {
	ledger := newTestLedger(t)
	first := newSale(time.Now(), "1.00", "Pix", "A")
	second := newSale(time.Now(), "2.00", "Pix", "B")

	ledger.Append(first)
	ledger.Append(second)

	listed := ledger.List()
	require.Len(t, listed, 2)
	assert.Equal(t, second.ID, listed[0].ID)
	assert.Equal(t, first.ID, listed[1].ID)
}

func TestLedger_Append_OrdersByDate(t *testing.T) {
	ledger := newTestLedger(t)
	base := time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC)
	early := newSale(base, "1.00", "Pix", "A")
	late := newSale(base.Add(time.Second), "2.00", "Pix", "B")
	middle := newSale(base.Add(500*time.Millisecond), "3.00", "Pix", "C")

	// the later-dated checkout persisted first
	ledger.Append(late)
	ledger.Append(early)
	ledger.Append(middle)

	listed := ledger.List()
	require.Len(t, listed, 3)
	assert.Equal(t, late.ID, listed[0].ID)
	assert.Equal(t, middle.ID, listed[1].ID)
	assert.Equal(t, early.ID, listed[2].ID)
}

func TestLedger_Load_OrdersByDate(t *testing.T) {
	base := time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC)
	early := newSale(base, "1.00", "Pix", "A")
	late := newSale(base.Add(time.Minute), "2.00", "Pix", "B")

	ledger := newTestLedger(t, early, late)

	listed := ledger.List()
	require.Len(t, listed, 2)
	assert.Equal(t, late.ID, listed[0].ID)
}

func TestLedger_Append_CopiesSale(t *testing.T) {
	ledger := newTestLedger(t)
	sale := newSale(time.Now(), "1.00", "Pix", "A")

	ledger.Append(sale)
	sale.Items[0].Name = "changed"

	got, err := ledger.Get(sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Items[0].Name)
}

func TestLedger_Get_NotFound(t *testing.T) {
	ledger := newTestLedger(t)

	_, err := ledger.Get(uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLedger_Search(t *testing.T) {
	march := newSale(time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC), "17.00", "Dinheiro", "Coca-Cola 2L")
	april := newSale(time.Date(2024, 4, 2, 9, 0, 0, 0, time.UTC), "1.50", "Pix", "Pão Francês")
	ledger := newTestLedger(t, april, march)

	tests := []struct {
		query string
		want  []uuid.UUID
	}{
		{"", []uuid.UUID{april.ID, march.ID}},
		{"dinheiro", []uuid.UUID{march.ID}},
		{"PÃO", []uuid.UUID{april.ID}},
		{"10/03/2024", []uuid.UUID{march.ID}},
		{"/04/", []uuid.UUID{april.ID}},
		{"cartão", nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var got []uuid.UUID
			for _, s := range ledger.Search(tt.query) {
				got = append(got, s.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLedger_Stats(t *testing.T) {
	now := time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC)
	today1 := newSale(now.Add(-time.Hour), "18.50", "Dinheiro", "A")
	today2 := newSale(now.Add(-5*time.Hour), "1.50", "Pix", "B")
	yesterday := newSale(now.Add(-24*time.Hour), "10.00", "Cartão", "C")
	ledger := newTestLedger(t, today1, today2, yesterday)

	stats := ledger.Stats(now)

	assert.Equal(t, 2, stats.TodayCount)
	assert.True(t, stats.TodayRevenue.Equal(decimal.RequireFromString("20.00")))
	assert.True(t, stats.TotalRevenue.Equal(decimal.RequireFromString("30.00")))
	assert.Equal(t, 3, stats.SaleCount)
	assert.Len(t, stats.Recent, 3)
	assert.Equal(t, today1.ID, stats.Recent[0].ID)
}

func TestLedger_Stats_RecentIsCapped(t *testing.T) {
	var history []*domain.Sale
	for i := 0; i < 8; i++ {
		history = append(history, newSale(time.Now(), "1.00", "Pix", "A"))
	}
	ledger := newTestLedger(t, history...)

	stats := ledger.Stats(time.Now())

	assert.Len(t, stats.Recent, 5)
	assert.Equal(t, 8, stats.SaleCount)
}

func TestLedger_Stats_Empty(t *testing.T) {
	ledger := newTestLedger(t)

	stats := ledger.Stats(time.Now())

	assert.Zero(t, stats.SaleCount)
	assert.True(t, stats.TotalRevenue.IsZero())
	assert.NotNil(t, stats.Recent)
}

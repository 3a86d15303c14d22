package deadline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/point_of_sale/internal/domain"
)

type slowRepository struct {
	delay time.Duration
	err   error
}

func (s *slowRepository) wait(ctx context.Context) error {
	select {
	case <-time.After(s.delay):
		return s.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *slowRepository) LoadProducts(ctx context.Context) ([]*domain.Product, error) {
	return []*domain.Product{}, s.wait(ctx)
}

func (s *slowRepository) LoadSales(ctx context.Context) ([]*domain.Sale, error) {
	return []*domain.Sale{}, s.wait(ctx)
}

func (s *slowRepository) SaveProduct(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	return p, s.wait(ctx)
}

func (s *slowRepository) DeleteProduct(ctx context.Context, _ uuid.UUID) error {
	return s.wait(ctx)
}

func (s *slowRepository) SaveSale(ctx context.Context, sale *domain.Sale) (*domain.Sale, error) {
	return sale, s.wait(ctx)
}

type committingSlowRepository struct {
	slowRepository
}

func (s *committingSlowRepository) CommitSale(ctx context.Context, _ *domain.Sale, _ []*domain.Product) error {
	return s.wait(ctx)
}

func TestWrap_ExposesCommitterOnlyWhenInnerDoes(t *testing.T) {
	_, ok := Wrap(&slowRepository{}, time.Second).(domain.SaleCommitter)
	assert.False(t, ok)

	_, ok = Wrap(&committingSlowRepository{}, time.Second).(domain.SaleCommitter)
	assert.True(t, ok)
}

func TestRepository_TimeoutBecomesStorageTimeout(t *testing.T) {
	repo := Wrap(&slowRepository{delay: time.Second}, 10*time.Millisecond)

	_, err := repo.SaveSale(context.Background(), &domain.Sale{})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorageTimeout)
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.Contains(t, err.Error(), "save sale")
}

func TestRepository_FailureBecomesStorageError(t *testing.T) {
	cause := errors.New("connection refused")
	repo := Wrap(&slowRepository{err: cause}, time.Second)

	_, err := repo.LoadProducts(context.Background())

	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, domain.ErrStorageTimeout)
}

func TestRepository_DomainErrorsPassThrough(t *testing.T) {
	repo := Wrap(&slowRepository{err: domain.ErrNotFound}, time.Second)

	err := repo.DeleteProduct(context.Background(), uuid.New())

	assert.Equal(t, domain.ErrNotFound, err)
	assert.NotErrorIs(t, err, domain.ErrStorage)
}

func TestRepository_CommitSale(t *testing.T) {
	repo := Wrap(&committingSlowRepository{slowRepository{delay: time.Second}}, 10*time.Millisecond)

	err := repo.(domain.SaleCommitter).CommitSale(context.Background(), &domain.Sale{}, nil)

	assert.ErrorIs(t, err, domain.ErrStorageTimeout)
}

func TestRepository_Success(t *testing.T) {
	repo := Wrap(&slowRepository{}, time.Second)

	products, err := repo.LoadProducts(context.Background())
	assert.NoError(t, err)
	assert.NotNil(t, products)
	assert.NoError(t, repo.DeleteProduct(context.Background(), uuid.New()))
}

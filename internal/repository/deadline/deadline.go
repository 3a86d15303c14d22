// Package deadline bounds every persistence call with a timeout and reports
// failures as domain.StorageError, so the use cases see one error shape
// regardless of the active storage binding.
package deadline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Pesokrava/point_of_sale/internal/domain"
)

// Repository decorates a domain.Repository
type Repository struct {
	next    domain.Repository
	timeout time.Duration
}

type committingRepository struct {
	*Repository
	committer domain.SaleCommitter
}

// Wrap decorates next. The result implements domain.SaleCommitter exactly when next does.
func Wrap(next domain.Repository, timeout time.Duration) domain.Repository {
	base := &Repository{next: next, timeout: timeout}
	if committer, ok := next.(domain.SaleCommitter); ok {
		return &committingRepository{Repository: base, committer: committer}
	}
	return base
}

// LoadProducts loads the catalog within the deadline
func (r *Repository) LoadProducts(ctx context.Context) ([]*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	products, err := r.next.LoadProducts(ctx)
	if err != nil {
		return nil, r.wrap("load products", err)
	}
	return products, nil
}

// LoadSales loads the sales history within the deadline
func (r *Repository) LoadSales(ctx context.Context) ([]*domain.Sale, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	sales, err := r.next.LoadSales(ctx)
	if err != nil {
		return nil, r.wrap("load sales", err)
	}
	return sales, nil
}

// SaveProduct stores a product within the deadline
func (r *Repository) SaveProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	saved, err := r.next.SaveProduct(ctx, product)
	if err != nil {
		return nil, r.wrap("save product", err)
	}
	return saved, nil
}

// DeleteProduct removes a product within the deadline
func (r *Repository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	return r.wrap("delete product", r.next.DeleteProduct(ctx, id))
}

// SaveSale stores a sale within the deadline
func (r *Repository) SaveSale(ctx context.Context, sale *domain.Sale) (*domain.Sale, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	saved, err := r.next.SaveSale(ctx, sale)
	if err != nil {
		return nil, r.wrap("save sale", err)
	}
	return saved, nil
}

// CommitSale stores a sale and its stock changes within the deadline
func (r *committingRepository) CommitSale(ctx context.Context, sale *domain.Sale, adjusted []*domain.Product) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	return r.wrap("commit sale", r.committer.CommitSale(ctx, sale, adjusted))
}

// wrap leaves domain errors untouched and turns everything else into a StorageError
func (r *Repository) wrap(op string, err error) error {
	if err == nil {
		return nil
	}

	var storageErr *domain.StorageError
	switch {
	case errors.As(err, &storageErr):
		return err
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrInvalidInput):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return domain.NewStorageError(op, fmt.Errorf("%w after %s: %w", domain.ErrStorageTimeout, r.timeout, err))
	default:
		return domain.NewStorageError(op, err)
	}
}

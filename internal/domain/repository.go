package domain

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence boundary shared by every storage binding.
// Swapping bindings must not change catalog, cart or checkout behavior.
type Repository interface {
	// LoadProducts returns every stored product in creation order
	LoadProducts(ctx context.Context) ([]*Product, error)

	// LoadSales returns every stored sale, most recent first, with its items
	LoadSales(ctx context.Context) ([]*Sale, error)

	// SaveProduct creates or replaces a product
	SaveProduct(ctx context.Context, product *Product) (*Product, error)

	// DeleteProduct removes a product; returns ErrNotFound when absent
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	// SaveSale appends a sale; the header and all items persist together or not at all
	SaveSale(ctx context.Context, sale *Sale) (*Sale, error)
}

// SaleCommitter is implemented by bindings able to store a sale and the
// resulting stock levels in a single atomic write.
type SaleCommitter interface {
	CommitSale(ctx context.Context, sale *Sale, adjusted []*Product) error
}

package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/Pesokrava/point_of_sale/internal/domain"
)

// Repository implements domain.Repository over two JSON records, one holding
// the product list and one holding the sales list (most recent first).
type Repository struct {
	store       Store
	productsKey string
	salesKey    string

	// serializes read-modify-write cycles on the records
	mu sync.Mutex
}

// NewRepository creates a key-value repository
func NewRepository(store Store, productsKey, salesKey string) *Repository {
	return &Repository{
		store:       store,
		productsKey: productsKey,
		salesKey:    salesKey,
	}
}

// LoadProducts returns every stored product
func (r *Repository) LoadProducts(ctx context.Context) ([]*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.readProducts(ctx)
}

// LoadSales returns every stored sale, most recent first
func (r *Repository) LoadSales(ctx context.Context) ([]*domain.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.readSales(ctx)
}

// SaveProduct replaces the product with the same id or appends it
func (r *Repository) SaveProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	products, err := r.readProducts(ctx)
	if err != nil {
		return nil, err
	}

	if i := indexOf(products, product.ID); i >= 0 {
		products[i] = product.Clone()
	} else {
		products = append(products, product.Clone())
	}

	if err := r.write(ctx, map[string]any{r.productsKey: products}); err != nil {
		return nil, err
	}

	return product.Clone(), nil
}

// DeleteProduct removes a product record
func (r *Repository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	products, err := r.readProducts(ctx)
	if err != nil {
		return err
	}

	i := indexOf(products, id)
	if i < 0 {
		return domain.ErrNotFound
	}
	products = append(products[:i], products[i+1:]...)

	return r.write(ctx, map[string]any{r.productsKey: products})
}

// SaveSale prepends a sale to the sales record
func (r *Repository) SaveSale(ctx context.Context, sale *domain.Sale) (*domain.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sales, err := r.readSales(ctx)
	if err != nil {
		return nil, err
	}

	sales = append([]*domain.Sale{sale.Clone()}, sales...)
	if err := r.write(ctx, map[string]any{r.salesKey: sales}); err != nil {
		return nil, err
	}

	return sale.Clone(), nil
}

// CommitSale writes the new sale and the adjusted products in one atomic SetMany
func (r *Repository) CommitSale(ctx context.Context, sale *domain.Sale, adjusted []*domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	products, err := r.readProducts(ctx)
	if err != nil {
		return err
	}
	sales, err := r.readSales(ctx)
	if err != nil {
		return err
	}

	for _, p := range adjusted {
		i := indexOf(products, p.ID)
		if i < 0 {
			return fmt.Errorf("product %s: %w", p.ID, domain.ErrNotFound)
		}
		products[i] = p.Clone()
	}
	sales = append([]*domain.Sale{sale.Clone()}, sales...)

	return r.write(ctx, map[string]any{
		r.productsKey: products,
		r.salesKey:    sales,
	})
}

func (r *Repository) readProducts(ctx context.Context) ([]*domain.Product, error) {
	products := []*domain.Product{}
	if err := r.read(ctx, r.productsKey, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *Repository) readSales(ctx context.Context) ([]*domain.Sale, error) {
	sales := []*domain.Sale{}
	if err := r.read(ctx, r.salesKey, &sales); err != nil {
		return nil, err
	}
	return sales, nil
}

func (r *Repository) read(ctx context.Context, key string, dst any) error {
	data, err := r.store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

func (r *Repository) write(ctx context.Context, records map[string]any) error {
	entries := make(map[string][]byte, len(records))
	for key, val := range records {
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", key, err)
		}
		entries[key] = data
	}

	if err := r.store.SetMany(ctx, entries); err != nil {
		return fmt.Errorf("failed to write records: %w", err)
	}
	return nil
}

func indexOf(products []*domain.Product, id uuid.UUID) int {
	for i, p := range products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Pesokrava/point_of_sale/internal/domain"
	"github.com/Pesokrava/point_of_sale/internal/pkg/logger"
	pkgvalidator "github.com/Pesokrava/point_of_sale/internal/pkg/validator"
)

// Store is the authoritative in-memory product collection.
// Every mutation is written through the repository first; memory changes only on success.
type Store struct {
	mu       sync.RWMutex
	products []*domain.Product
	repo     domain.Repository
	validate *validator.Validate
	logger   *logger.Logger
	now      func() time.Time
	seed     bool
}

// Option configures a Store
type Option func(*Store)

// WithClock overrides the time source used for timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithSampleSeed writes SampleProducts into an empty repository on Load
func WithSampleSeed(enabled bool) Option {
	return func(s *Store) {
		s.seed = enabled
	}
}

// NewStore creates a new catalog store
func NewStore(repo domain.Repository, log *logger.Logger, opts ...Option) *Store {
	s := &Store{
		products: []*domain.Product{},
		repo:     repo,
		validate: pkgvalidator.Get(),
		logger:   log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory collection with the repository contents
func (s *Store) Load(ctx context.Context) error {
	products, err := s.repo.LoadProducts(ctx)
	if err != nil {
		s.logger.Error("Failed to load products", err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = products

	if len(products) == 0 && s.seed {
		for _, sample := range SampleProducts() {
			if _, err := s.createLocked(ctx, sample); err != nil {
				s.logger.Error("Failed to seed sample catalogue", err)
				return err
			}
		}
		s.logger.Infof("Seeded %d sample products", len(s.products))
	}

	s.logger.WithFields(map[string]interface{}{
		"products": len(s.products),
	}).Info("Catalog loaded")

	return nil
}

// Create validates input and adds a product with a fresh id
func (s *Store) Create(ctx context.Context, input domain.NewProduct) (*domain.Product, error) {
	if err := s.validate.Struct(input); err != nil {
		s.logger.Debugf("Product validation failed: %v", err)
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, err)
	}
	if err := input.CheckMoney(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	product, err := s.createLocked(ctx, input)
	if err != nil {
		s.logger.Error("Failed to create product", err)
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	}).Info("Product created successfully")

	return product.Clone(), nil
}

func (s *Store) createLocked(ctx context.Context, input domain.NewProduct) (*domain.Product, error) {
	now := s.now()
	product := &domain.Product{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(input.Name),
		Price:     *input.Price,
		Cost:      *input.Cost,
		Stock:     *input.Stock,
		Category:  input.Category,
		Barcode:   input.Barcode,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if product.Name == "" {
		return nil, fmt.Errorf("%w: name must not be blank", domain.ErrInvalidInput)
	}

	saved, err := s.repo.SaveProduct(ctx, product)
	if err != nil {
		return nil, err
	}

	s.products = append(s.products, saved)
	return saved, nil
}

// Update applies the non-nil fields of patch to an existing product
func (s *Store) Update(ctx context.Context, id uuid.UUID, patch domain.ProductPatch) (*domain.Product, error) {
	if err := s.validate.Struct(patch); err != nil {
		s.logger.Debugf("Product patch validation failed: %v", err)
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, err)
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, fmt.Errorf("%w: name must not be blank", domain.ErrInvalidInput)
	}
	if err := patch.CheckMoney(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		s.logger.Debugf("Product not found: %s", id)
		return nil, domain.ErrNotFound
	}

	updated := s.products[idx].Clone()
	patch.ApplyTo(updated)
	updated.UpdatedAt = s.now()

	saved, err := s.repo.SaveProduct(ctx, updated)
	if err != nil {
		s.logger.Error("Failed to update product", err)
		return nil, err
	}
	s.products[idx] = saved

	s.logger.WithFields(map[string]interface{}{
		"product_id": id,
		"stock":      saved.Stock,
	}).Info("Product updated successfully")

	return saved.Clone(), nil
}

// SetStock overwrites the stock level; any integer is accepted
func (s *Store) SetStock(ctx context.Context, id uuid.UUID, quantity int) (*domain.Product, error) {
	return s.Update(ctx, id, domain.ProductPatch{Stock: &quantity})
}

// Delete removes a product; past sales keep their snapshots
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		s.logger.Debugf("Product not found: %s", id)
		return domain.ErrNotFound
	}

	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		s.logger.Error("Failed to delete product", err)
		return err
	}
	s.products = append(s.products[:idx], s.products[idx+1:]...)

	s.logger.WithFields(map[string]interface{}{
		"product_id": id,
	}).Info("Product deleted successfully")

	return nil
}

// Get returns a copy of a product
func (s *Store) Get(id uuid.UUID) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, domain.ErrNotFound
	}
	return s.products[idx].Clone(), nil
}

// List returns copies of all products in creation order
func (s *Store) List() []*domain.Product {
	return s.filter(func(*domain.Product) bool { return true })
}

// Search matches name or category case-insensitively, or barcode by substring.
// An empty query lists everything.
func (s *Store) Search(query string) []*domain.Product {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.List()
	}
	lower := strings.ToLower(query)

	return s.filter(func(p *domain.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), lower) ||
			strings.Contains(strings.ToLower(p.Category), lower) ||
			strings.Contains(p.Barcode, query)
	})
}

// LowStock returns products whose stock is strictly below threshold
func (s *Store) LowStock(threshold int) []*domain.Product {
	return s.filter(func(p *domain.Product) bool { return p.Stock < threshold })
}

func (s *Store) filter(keep func(*domain.Product) bool) []*domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if keep(p) {
			out = append(out, p.Clone())
		}
	}
	return out
}

func (s *Store) indexOf(id uuid.UUID) int {
	for i, p := range s.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

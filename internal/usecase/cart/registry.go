package cart

import (
	"sync"

	"github.com/google/uuid"

	"github.com/Pesokrava/point_of_sale/internal/domain"
)

// Registry tracks the open carts of the process, one per selling session
type Registry struct {
	mu    sync.RWMutex
	carts map[uuid.UUID]*Cart
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{carts: make(map[uuid.UUID]*Cart)}
}

// Open creates and registers a new empty cart
func (r *Registry) Open() *Cart {
	c := New()

	r.mu.Lock()
	r.carts[c.ID] = c
	r.mu.Unlock()

	return c
}

// Get looks up an open cart
func (r *Registry) Get(id uuid.UUID) (*Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.carts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

// Discard forgets a cart; pending lines are dropped without touching stock
func (r *Registry) Discard(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.carts[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.carts, id)
	return nil
}

// Len returns the number of open carts
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.carts)
}

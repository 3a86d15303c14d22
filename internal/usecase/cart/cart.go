package cart

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Pesokrava/point_of_sale/internal/domain"
)

// Line is a pending purchase of one product. Price is captured when the
// product is first added and is what the sale will charge.
type Line struct {
	ProductID uuid.UUID       `json:"productId" swaggertype:"string" format:"uuid"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price" swaggertype:"string" example:"8.50"`
	Quantity  int             `json:"quantity"`
}

// Subtotal returns price times quantity
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart holds the lines of one selling session, at most one line per product.
// While a checkout is running every mutation fails with ErrCheckoutInProgress.
type Cart struct {
	ID uuid.UUID

	mu          sync.Mutex
	lines       []Line
	checkingOut bool
}

// New creates an empty cart
func New() *Cart {
	return &Cart{ID: uuid.New()}
}

// AddItem merges quantity into the product's line, or appends a new line
func (c *Cart) AddItem(product *domain.Product, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive, got %d", domain.ErrInvalidInput, quantity)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.checkingOut {
		return domain.ErrCheckoutInProgress
	}

	if idx := c.indexOf(product.ID); idx >= 0 {
		c.lines[idx].Quantity += quantity
		return nil
	}

	c.lines = append(c.lines, Line{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Quantity:  quantity,
	})
	return nil
}

// RemoveItem drops the product's line; absent products are ignored
func (c *Cart) RemoveItem(productID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.checkingOut {
		return domain.ErrCheckoutInProgress
	}

	c.removeLocked(productID)
	return nil
}

// SetQuantity replaces a line's quantity; zero or less removes the line
func (c *Cart) SetQuantity(productID uuid.UUID, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.checkingOut {
		return domain.ErrCheckoutInProgress
	}

	if quantity <= 0 {
		c.removeLocked(productID)
		return nil
	}

	if idx := c.indexOf(productID); idx >= 0 {
		c.lines[idx].Quantity = quantity
	}
	return nil
}

// Clear empties the cart
func (c *Cart) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.checkingOut {
		return domain.ErrCheckoutInProgress
	}

	c.lines = nil
	return nil
}

// Total sums every line's subtotal; an empty cart totals zero
func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()

	return totalOf(c.lines)
}

// Lines returns a copy of the lines in insertion order
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]Line{}, c.lines...)
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.lines) == 0
}

// ItemCount returns the number of units across all lines
func (c *Cart) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// BeginCheckout freezes the cart and returns the lines to be sold.
// Every call that succeeds must be paired with EndCheckout.
func (c *Cart) BeginCheckout() ([]Line, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.checkingOut {
		return nil, domain.ErrCheckoutInProgress
	}
	c.checkingOut = true

	return append([]Line{}, c.lines...), nil
}

// EndCheckout unfreezes the cart, emptying it when the sale was committed
func (c *Cart) EndCheckout(committed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if committed {
		c.lines = nil
	}
	c.checkingOut = false
}

// TotalOf sums the subtotals of lines
func TotalOf(lines []Line) decimal.Decimal {
	return totalOf(lines)
}

func totalOf(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (c *Cart) removeLocked(productID uuid.UUID) {
	if idx := c.indexOf(productID); idx >= 0 {
		c.lines = append(c.lines[:idx], c.lines[idx+1:]...)
	}
}

func (c *Cart) indexOf(productID uuid.UUID) int {
	for i, l := range c.lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale is the immutable record of a completed checkout
type Sale struct {
	ID            uuid.UUID       `json:"id" swaggertype:"string" format:"uuid"`
	Date          time.Time       `json:"date"`
	Items         []SaleItem      `json:"items"`
	Total         decimal.Decimal `json:"total" swaggertype:"string" example:"8.50"`
	PaymentMethod string          `json:"paymentMethod"`
}

// SaleItem snapshots a cart line at commit time, decoupled from the live product
type SaleItem struct {
	ProductID uuid.UUID       `json:"productId" swaggertype:"string" format:"uuid"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice" swaggertype:"string" example:"8.50"`
}

// Subtotal returns unit price times quantity
func (i SaleItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Clone returns a deep copy of the sale
func (s *Sale) Clone() *Sale {
	c := *s
	c.Items = append([]SaleItem(nil), s.Items...)
	return &c
}

// ProductIDs returns the distinct products referenced by the sale, in line order
func (s *Sale) ProductIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(s.Items))
	ids := make([]uuid.UUID, 0, len(s.Items))
	for _, item := range s.Items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}

package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a sellable item of the catalog
type Product struct {
	ID        uuid.UUID       `json:"id" db:"id" swaggertype:"string" format:"uuid"`
	Name      string          `json:"name" db:"nome"`
	Price     decimal.Decimal `json:"price" db:"preco" swaggertype:"string" example:"8.50"`
	Cost      decimal.Decimal `json:"cost" db:"custo" swaggertype:"string" example:"8.50"`
	Stock     int             `json:"stock" db:"estoque"`
	Category  string          `json:"category" db:"categoria"`
	Barcode   string          `json:"barcode" db:"codigo_barras"`
	CreatedAt time.Time       `json:"created_at" db:"criado_em"`
	UpdatedAt time.Time       `json:"updated_at" db:"atualizado_em"`
}

// Clone returns a copy that can be handed out without exposing catalog state
func (p *Product) Clone() *Product {
	c := *p
	return &c
}

// NewProduct carries the fields required to create a product.
// Pointers distinguish a missing value from an explicit zero.
type NewProduct struct {
	Name     string           `json:"name" validate:"required,min=1,max=255"`
	Price    *decimal.Decimal `json:"price" validate:"required,gte=0" swaggertype:"string" example:"8.50"`
	Cost     *decimal.Decimal `json:"cost" validate:"required,gte=0" swaggertype:"string" example:"8.50"`
	Stock    *int             `json:"stock" validate:"required,gte=0"`
	Category string           `json:"category" validate:"max=100"`
	Barcode  string           `json:"barcode" validate:"max=64"`
}

// ProductPatch carries a partial update: only non-nil fields are applied
type ProductPatch struct {
	Name     *string          `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Price    *decimal.Decimal `json:"price,omitempty" validate:"omitempty,gte=0" swaggertype:"string" example:"8.50"`
	Cost     *decimal.Decimal `json:"cost,omitempty" validate:"omitempty,gte=0" swaggertype:"string" example:"8.50"`
	Stock    *int             `json:"stock,omitempty"`
	Category *string          `json:"category,omitempty" validate:"omitempty,max=100"`
	Barcode  *string          `json:"barcode,omitempty" validate:"omitempty,max=64"`
}

// IsEmpty reports whether the patch changes nothing
func (p ProductPatch) IsEmpty() bool {
	return p.Name == nil && p.Price == nil && p.Cost == nil &&
		p.Stock == nil && p.Category == nil && p.Barcode == nil
}

// ApplyTo merges the patch into product
func (p ProductPatch) ApplyTo(product *Product) {
	if p.Name != nil {
		product.Name = *p.Name
	}
	if p.Price != nil {
		product.Price = *p.Price
	}
	if p.Cost != nil {
		product.Cost = *p.Cost
	}
	if p.Stock != nil {
		product.Stock = *p.Stock
	}
	if p.Category != nil {
		product.Category = *p.Category
	}
	if p.Barcode != nil {
		product.Barcode = *p.Barcode
	}
}

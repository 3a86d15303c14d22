package postgres

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Pesokrava/point_of_sale/internal/domain"
)

// vendaRow represents a row of the vendas (sale header) table
type vendaRow struct {
	ID             uuid.UUID       `db:"id"`
	Data           time.Time       `db:"data"`
	Total          decimal.Decimal `db:"total"`
	FormaPagamento string          `db:"forma_pagamento"`
}

// itemVendaRow represents a row of the itens_venda (sale line) table
type itemVendaRow struct {
	VendaID       uuid.UUID       `db:"venda_id"`
	Posicao       int             `db:"posicao"`
	ProdutoID     uuid.UUID       `db:"produto_id"`
	NomeProduto   string          `db:"nome_produto"`
	Quantidade    int             `db:"quantidade"`
	PrecoUnitario decimal.Decimal `db:"preco_unitario"`
}

func (r vendaRow) toDomain(items []itemVendaRow) *domain.Sale {
	sale := &domain.Sale{
		ID:            r.ID,
		Date:          r.Data,
		Total:         r.Total,
		PaymentMethod: r.FormaPagamento,
		Items:         make([]domain.SaleItem, 0, len(items)),
	}
	for _, item := range items {
		sale.Items = append(sale.Items, domain.SaleItem{
			ProductID: item.ProdutoID,
			Name:      item.NomeProduto,
			Quantity:  item.Quantidade,
			UnitPrice: item.PrecoUnitario,
		})
	}
	return sale
}

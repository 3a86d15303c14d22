package postgres

import (
	"context"
	"fmt"
	"time"

	trmsqlx "github.com/avito-tech/go-transaction-manager/drivers/sqlx/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Pesokrava/point_of_sale/internal/domain"
)

// Repository implements domain.Repository and domain.SaleCommitter for PostgreSQL.
// Products live in produtos; a sale is a vendas header plus itens_venda lines.
type Repository struct {
	db        *sqlx.DB
	trManager *manager.Manager
	getter    *trmsqlx.CtxGetter
	now       func() time.Time
}

// NewRepository creates a new PostgreSQL repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		db:        db,
		trManager: manager.Must(trmsqlx.NewDefaultFactory(db)),
		getter:    trmsqlx.DefaultCtxGetter,
		now:       time.Now,
	}
}

// conn returns the transaction bound to ctx, or the pool outside a transaction
func (r *Repository) conn(ctx context.Context) trmsqlx.Tr {
	return r.getter.DefaultTrOrDB(ctx, r.db)
}

// LoadProducts retrieves all products in creation order
func (r *Repository) LoadProducts(ctx context.Context) ([]*domain.Product, error) {
	query := `
		SELECT id, nome, preco, custo, estoque, categoria, codigo_barras, criado_em, atualizado_em
		FROM produtos
		ORDER BY criado_em, id
	`

	products := []*domain.Product{}
	if err := sqlx.SelectContext(ctx, r.conn(ctx), &products, query); err != nil {
		return nil, err
	}

	return products, nil
}

// SaveProduct inserts a product or overwrites every mutable column of an existing one
func (r *Repository) SaveProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	query := `
		INSERT INTO produtos (id, nome, preco, custo, estoque, categoria, codigo_barras, criado_em, atualizado_em)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			nome = EXCLUDED.nome,
			preco = EXCLUDED.preco,
			custo = EXCLUDED.custo,
			estoque = EXCLUDED.estoque,
			categoria = EXCLUDED.categoria,
			codigo_barras = EXCLUDED.codigo_barras,
			atualizado_em = EXCLUDED.atualizado_em
		RETURNING preco, custo, criado_em, atualizado_em
	`

	saved := product.Clone()
	now := r.now()
	if saved.CreatedAt.IsZero() {
		saved.CreatedAt = now
	}
	saved.UpdatedAt = now

	err := r.conn(ctx).QueryRowxContext(
		ctx,
		query,
		saved.ID,
		saved.Name,
		saved.Price,
		saved.Cost,
		saved.Stock,
		saved.Category,
		saved.Barcode,
		saved.CreatedAt,
		saved.UpdatedAt,
	).Scan(&saved.Price, &saved.Cost, &saved.CreatedAt, &saved.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return saved, nil
}

// DeleteProduct hard-deletes a product; itens_venda keeps its snapshot columns
func (r *Repository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	result, err := r.conn(ctx).ExecContext(ctx, `DELETE FROM produtos WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// LoadSales retrieves all sales, most recent first, joined with their items
func (r *Repository) LoadSales(ctx context.Context) ([]*domain.Sale, error) {
	headerQuery := `
		SELECT id, data, total, forma_pagamento
		FROM vendas
		ORDER BY data DESC, id
	`
	itemsQuery := `
		SELECT venda_id, posicao, produto_id, nome_produto, quantidade, preco_unitario
		FROM itens_venda
		ORDER BY venda_id, posicao
	`

	var headers []vendaRow
	if err := sqlx.SelectContext(ctx, r.conn(ctx), &headers, headerQuery); err != nil {
		return nil, err
	}

	var items []itemVendaRow
	if err := sqlx.SelectContext(ctx, r.conn(ctx), &items, itemsQuery); err != nil {
		return nil, err
	}

	bySale := make(map[uuid.UUID][]itemVendaRow, len(headers))
	for _, item := range items {
		bySale[item.VendaID] = append(bySale[item.VendaID], item)
	}

	sales := make([]*domain.Sale, 0, len(headers))
	for _, h := range headers {
		sales = append(sales, h.toDomain(bySale[h.ID]))
	}

	return sales, nil
}

// SaveSale inserts the sale header and all of its items in one transaction
func (r *Repository) SaveSale(ctx context.Context, sale *domain.Sale) (*domain.Sale, error) {
	err := r.trManager.Do(ctx, func(ctx context.Context) error {
		return r.insertSale(ctx, sale)
	})
	if err != nil {
		return nil, err
	}

	return sale.Clone(), nil
}

// CommitSale inserts the sale and writes the adjusted stock levels in one transaction
func (r *Repository) CommitSale(ctx context.Context, sale *domain.Sale, adjusted []*domain.Product) error {
	return r.trManager.Do(ctx, func(ctx context.Context) error {
		if err := r.insertSale(ctx, sale); err != nil {
			return err
		}

		for _, p := range adjusted {
			if err := r.updateStock(ctx, p.ID, p.Stock); err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *Repository) insertSale(ctx context.Context, sale *domain.Sale) error {
	headerQuery := `
		INSERT INTO vendas (id, data, total, forma_pagamento)
		VALUES ($1, $2, $3, $4)
	`
	itemQuery := `
		INSERT INTO itens_venda (venda_id, posicao, produto_id, nome_produto, quantidade, preco_unitario)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	tr := r.conn(ctx)

	if _, err := tr.ExecContext(ctx, headerQuery, sale.ID, sale.Date, sale.Total, sale.PaymentMethod); err != nil {
		return fmt.Errorf("failed to insert sale %s: %w", sale.ID, err)
	}

	for i, item := range sale.Items {
		_, err := tr.ExecContext(ctx, itemQuery, sale.ID, i, item.ProductID, item.Name, item.Quantity, item.UnitPrice)
		if err != nil {
			return fmt.Errorf("failed to insert item %d of sale %s: %w", i, sale.ID, err)
		}
	}

	return nil
}

func (r *Repository) updateStock(ctx context.Context, id uuid.UUID, stock int) error {
	query := `
		UPDATE produtos
		SET estoque = $1, atualizado_em = $2
		WHERE id = $3
	`

	result, err := r.conn(ctx).ExecContext(ctx, query, stock, r.now(), id)
	if err != nil {
		return fmt.Errorf("failed to update stock of product %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/point_of_sale/internal/domain"
)

func newMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	repo := NewRepository(sqlx.NewDb(db, "sqlmock"))
	repo.now = func() time.Time {
		return time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC)
	}
	return repo, mock
}

func sampleSale() *domain.Sale {
	return &domain.Sale{
		ID:   uuid.New(),
		Date: time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC),
		Items: []domain.SaleItem{
			{ProductID: uuid.New(), Name: "Coca-Cola 2L", Quantity: 2, UnitPrice: decimal.RequireFromString("8.50")},
			{ProductID: uuid.New(), Name: "Pão Francês", Quantity: 3, UnitPrice: decimal.RequireFromString("0.50")},
		},
		Total:         decimal.RequireFromString("18.50"),
		PaymentMethod: "Dinheiro",
	}
}

func TestRepository_LoadProducts(t *testing.T) {
	repo, mock := newMockRepository(t)
	id := uuid.New()
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{
		"id", "nome", "preco", "custo", "estoque", "categoria", "codigo_barras", "criado_em", "atualizado_em",
	}).AddRow(id.String(), "Arroz 5kg", "25.90", "18.00", 40, "Grãos", "7891234567892", created, created)

	mock.ExpectQuery("SELECT (.+) FROM produtos").WillReturnRows(rows)

	products, err := repo.LoadProducts(context.Background())

	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, id, products[0].ID)
	assert.Equal(t, "Arroz 5kg", products[0].Name)
	assert.True(t, products[0].Price.Equal(decimal.RequireFromString("25.90")))
	assert.Equal(t, 40, products[0].Stock)
	assert.Equal(t, "7891234567892", products[0].Barcode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_LoadProducts_Error(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery("SELECT (.+) FROM produtos").WillReturnError(errors.New("connection refused"))

	products, err := repo.LoadProducts(context.Background())

	assert.Error(t, err)
	assert.Nil(t, products)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SaveProduct(t *testing.T) {
	repo, mock := newMockRepository(t)
	product := &domain.Product{
		ID:    uuid.New(),
		Name:  "Leite Integral 1L",
		Price: decimal.RequireFromString("5.49"),
		Cost:  decimal.RequireFromString("3.80"),
		Stock: 30,
	}
	stamp := repo.now()

	mock.ExpectQuery("INSERT INTO produtos").
		WithArgs(product.ID, product.Name, product.Price, product.Cost, 30, "", "", stamp, stamp).
		WillReturnRows(sqlmock.NewRows([]string{"preco", "custo", "criado_em", "atualizado_em"}).
			AddRow("5.49", "3.80", stamp, stamp))

	saved, err := repo.SaveProduct(context.Background(), product)

	require.NoError(t, err)
	assert.Equal(t, stamp, saved.CreatedAt)
	assert.Equal(t, stamp, saved.UpdatedAt)
	assert.True(t, product.CreatedAt.IsZero(), "input must not be mutated")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SaveProduct_ReturnsStoredMoney(t *testing.T) {
	repo, mock := newMockRepository(t)
	product := &domain.Product{
		ID:    uuid.New(),
		Name:  "Arroz 5kg",
		Price: decimal.RequireFromString("28.900"),
		Cost:  decimal.RequireFromString("22"),
		Stock: 20,
	}
	stamp := repo.now()

	mock.ExpectQuery("INSERT INTO produtos .* RETURNING preco, custo, criado_em, atualizado_em").
		WithArgs(product.ID, product.Name, product.Price, product.Cost, 20, "", "", stamp, stamp).
		WillReturnRows(sqlmock.NewRows([]string{"preco", "custo", "criado_em", "atualizado_em"}).
			AddRow("28.90", "22.00", stamp, stamp))

	saved, err := repo.SaveProduct(context.Background(), product)

	require.NoError(t, err)
	assert.Equal(t, int32(-domain.MoneyScale), saved.Price.Exponent())
	assert.Equal(t, int32(-domain.MoneyScale), saved.Cost.Exponent())
	assert.True(t, saved.Price.Equal(decimal.RequireFromString("28.90")))
	assert.True(t, saved.Cost.Equal(decimal.RequireFromString("22")))
	assert.Equal(t, int32(-3), product.Price.Exponent(), "input must not be mutated")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_DeleteProduct(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		id := uuid.New()

		mock.ExpectExec("DELETE FROM produtos").
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.DeleteProduct(context.Background(), id))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		id := uuid.New()

		mock.ExpectExec("DELETE FROM produtos").
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.DeleteProduct(context.Background(), id)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_LoadSales(t *testing.T) {
	repo, mock := newMockRepository(t)
	older, newer := uuid.New(), uuid.New()
	productID := uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM vendas").WillReturnRows(
		sqlmock.NewRows([]string{"id", "data", "total", "forma_pagamento"}).
			AddRow(newer.String(), time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), "17.00", "Pix").
			AddRow(older.String(), time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), "1.00", "Dinheiro"),
	)
	mock.ExpectQuery("SELECT (.+) FROM itens_venda").WillReturnRows(
		sqlmock.NewRows([]string{"venda_id", "posicao", "produto_id", "nome_produto", "quantidade", "preco_unitario"}).
			AddRow(newer.String(), 0, productID.String(), "Coca-Cola 2L", 2, "8.50").
			AddRow(older.String(), 0, productID.String(), "Pão Francês", 2, "0.50"),
	)

	sales, err := repo.LoadSales(context.Background())

	require.NoError(t, err)
	require.Len(t, sales, 2)
	assert.Equal(t, newer, sales[0].ID)
	assert.Equal(t, "Pix", sales[0].PaymentMethod)
	require.Len(t, sales[0].Items, 1)
	assert.Equal(t, "Coca-Cola 2L", sales[0].Items[0].Name)
	assert.True(t, sales[0].Items[0].UnitPrice.Equal(decimal.RequireFromString("8.50")))
	assert.Equal(t, older, sales[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SaveSale(t *testing.T) {
	repo, mock := newMockRepository(t)
	sale := sampleSale()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO vendas").
		WithArgs(sale.ID, sale.Date, sale.Total, "Dinheiro").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO itens_venda").
		WithArgs(sale.ID, 0, sale.Items[0].ProductID, "Coca-Cola 2L", 2, sale.Items[0].UnitPrice).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO itens_venda").
		WithArgs(sale.ID, 1, sale.Items[1].ProductID, "Pão Francês", 3, sale.Items[1].UnitPrice).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	saved, err := repo.SaveSale(context.Background(), sale)

	require.NoError(t, err)
	assert.Equal(t, sale.ID, saved.ID)
	assert.Len(t, saved.Items, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SaveSale_ItemFailureRollsBack(t *testing.T) {
	repo, mock := newMockRepository(t)
	sale := sampleSale()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO vendas").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO itens_venda").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	saved, err := repo.SaveSale(context.Background(), sale)

	assert.Error(t, err)
	assert.Nil(t, saved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_CommitSale(t *testing.T) {
	repo, mock := newMockRepository(t)
	sale := sampleSale()
	adjusted := []*domain.Product{
		{ID: sale.Items[0].ProductID, Stock: 48},
		{ID: sale.Items[1].ProductID, Stock: 97},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO vendas").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO itens_venda").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO itens_venda").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE produtos").
		WithArgs(48, sqlmock.AnyArg(), adjusted[0].ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE produtos").
		WithArgs(97, sqlmock.AnyArg(), adjusted[1].ID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.CommitSale(context.Background(), sale, adjusted)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_CommitSale_MissingProductRollsBack(t *testing.T) {
	repo, mock := newMockRepository(t)
	sale := sampleSale()
	adjusted := []*domain.Product{{ID: sale.Items[0].ProductID, Stock: 48}}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO vendas").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO itens_venda").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO itens_venda").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE produtos").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.CommitSale(context.Background(), sale, adjusted)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/Pesokrava/point_of_sale/internal/domain"
)

func intPtr(v int) *int {
	return &v
}

func money(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

// SampleProducts is the starter catalogue written into an empty store
func SampleProducts() []domain.NewProduct {
	return []domain.NewProduct{
		{Name: "Coca-Cola 2L", Price: money("8.50"), Cost: money("5.00"), Stock: intPtr(50), Category: "Bebidas", Barcode: "7894900011111"},
		{Name: "Pão Francês", Price: money("0.50"), Cost: money("0.30"), Stock: intPtr(100), Category: "Padaria", Barcode: "7894900022222"},
		{Name: "Leite Integral 1L", Price: money("5.20"), Cost: money("3.80"), Stock: intPtr(30), Category: "Laticínios", Barcode: "7894900033333"},
		{Name: "Arroz 5kg", Price: money("28.90"), Cost: money("22.00"), Stock: intPtr(20), Category: "Grãos", Barcode: "7894900044444"},
		{Name: "Feijão Preto 1kg", Price: money("8.90"), Cost: money("6.50"), Stock: intPtr(25), Category: "Grãos", Barcode: "7894900055555"},
	}
}

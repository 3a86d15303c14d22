package domain

import (
	"time"

	"github.com/google/uuid"
)

// StockAlert records a product whose stock fell below the low-stock threshold
type StockAlert struct {
	ProductID uuid.UUID `json:"productId" swaggertype:"string" format:"uuid"`
	Name      string    `json:"name"`
	Stock     int       `json:"stock"`
	Threshold int       `json:"threshold"`
	RaisedAt  time.Time `json:"raisedAt"`
}

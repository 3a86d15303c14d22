package domain

import (
	"time"

	"github.com/google/uuid"
)

// SubjectSaleEvents is the NATS subject sale events are published on
const SubjectSaleEvents = "sales.events"

// EventSaleCompleted is emitted once a checkout has been persisted
const EventSaleCompleted = "sale.completed"

// SaleEvent is the message published after a checkout
type SaleEvent struct {
	EventType  string      `json:"event_type"`
	Timestamp  time.Time   `json:"timestamp"`
	Sale       *Sale       `json:"sale"`
	ProductIDs []uuid.UUID `json:"product_ids"`
}

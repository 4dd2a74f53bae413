package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType names a sale notification.
type EventType string

const (
	EventSaleCreated   EventType = "sale.created"
	EventSaleCancelled EventType = "sale.cancelled"
)

// Event is the notification sent to interested parties after a sale changes.
type Event struct {
	Type       EventType `json:"type"`
	SaleID     uuid.UUID `json:"sale_id"`
	SaleNumber string    `json:"sale_number"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher delivers sale events. Delivery and ordering guarantees belong to
// the implementation.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

func newEvent(t EventType, sale *Sale) Event {
	return Event{
		Type:       t,
		SaleID:     sale.ID(),
		SaleNumber: sale.SaleNumber(),
		OccurredAt: time.Now().UTC(),
	}
}

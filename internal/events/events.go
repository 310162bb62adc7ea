// Package events publishes order lifecycle events.
package events

import (
	"context"
	"time"

	"teakspice-storefront/internal/models"
)

const (
	TypeOrderCreated       = "order.created"
	TypeOrderStatusChanged = "order.status_changed"
)

// OrderEvent is the payload written to the orders topic.
type OrderEvent struct {
	Type       string             `json:"type"`
	OrderID    string             `json:"id"`
	Reference  string             `json:"reference"`
	Status     models.OrderStatus `json:"status"`
	Total      float64            `json:"total"`
	Items      []models.OrderItem `json:"items"`
	OccurredAt time.Time          `json:"occurredAt"`
}

func NewOrderEvent(eventType string, o models.Order) OrderEvent {
	return OrderEvent{
		Type:       eventType,
		OrderID:    o.ID.Hex(),
		Reference:  o.Reference,
		Status:     o.Status,
		Total:      o.Total,
		Items:      o.Items,
		OccurredAt: time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, e OrderEvent) error
	Close()
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, OrderEvent) error { return nil }
func (Nop) Close()                                    {}

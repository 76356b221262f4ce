package domain

import "time"

// OrderEventType tags a push notification about an order.
type OrderEventType string

const (
	EventOrderCreated   OrderEventType = "order_created"
	EventOrderUpdated   OrderEventType = "order_updated"
	EventOrderCancelled OrderEventType = "order_cancelled"
)

// OrderEvent is a notification received on the order event stream. It
// carries enough denormalized fields to render a toast without a
// follow-up fetch; it is never treated as authoritative list state.
type OrderEvent struct {
	Type        OrderEventType `json:"type"`
	OrderID     string         `json:"order_id"`
	OrderNumber string         `json:"order_number"`
	Status      OrderStatus    `json:"status"`
	TotalAmount float64        `json:"total_amount"`
	Timestamp   time.Time      `json:"timestamp"`
}

// Known reports whether the event carries a recognized tag.
func (t OrderEventType) Known() bool {
	switch t {
	case EventOrderCreated, EventOrderUpdated, EventOrderCancelled:
		return true
	}
	return false
}

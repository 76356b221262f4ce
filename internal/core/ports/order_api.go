package ports

import (
	"context"

	"github.com/beanbar/orderdesk/internal/core/domain"
)

// ListOrdersInput carries the query parameters for the order list.
type ListOrdersInput struct {
	Status string // optional: filter by order status
	Page   int    // 1-based
	Limit  int    // rows per page
}

// PageMeta is the pagination envelope returned alongside a list page.
type PageMeta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"total_pages"`
}

// OrderPage is one page of the order collection.
type OrderPage struct {
	Orders []domain.Order
	Meta   PageMeta
}

// UpdateOrderInput carries the PATCH body for an order. Nil fields are
// left untouched server-side.
type UpdateOrderInput struct {
	Status *domain.OrderStatus
	Notes  *string
}

// OrderAPI is the slice of the backend the order views talk to.
type OrderAPI interface {
	ListOrders(ctx context.Context, in ListOrdersInput) (*OrderPage, error)
	UpdateOrder(ctx context.Context, id string, in UpdateOrderInput) (*domain.Order, error)
	CancelOrder(ctx context.Context, id string) (*domain.Order, error)
}

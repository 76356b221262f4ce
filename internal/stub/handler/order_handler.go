package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/beanbar/orderdesk/internal/core/domain"
	"github.com/beanbar/orderdesk/internal/stub/hub"
	"github.com/beanbar/orderdesk/internal/stub/memstore"
	"github.com/beanbar/orderdesk/internal/stub/metrics"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// OrderHandler implements the order list and mutation endpoints. Every
// successful mutation is published to the event hub so connected
// dashboards hear about it.
type OrderHandler struct {
	store *memstore.Store
	hub   *hub.Hub
	log   zerolog.Logger
}

func NewOrderHandler(store *memstore.Store, eventHub *hub.Hub, log zerolog.Logger) *OrderHandler {
	return &OrderHandler{store: store, hub: eventHub, log: log}
}

// List handles GET /orders.
func (h *OrderHandler) List(c echo.Context) error {
	var q listOrdersQuery
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query")
	}
	if err := c.Validate(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	orders, total := h.store.ListOrders(q.Status, page, limit)
	totalPages := (total + limit - 1) / limit

	return c.JSON(http.StatusOK, orderListResponse{
		Data: orders,
		Meta: pageMeta{Total: total, Page: page, Limit: limit, TotalPages: totalPages},
	})
}

// Update handles PATCH /orders/:id.
func (h *OrderHandler) Update(c echo.Context) error {
	var req updateOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	var status *domain.OrderStatus
	if req.Status != nil {
		s := domain.OrderStatus(*req.Status)
		status = &s
	}

	before, err := h.store.GetOrder(c.Param("id"))
	if err != nil {
		return err
	}

	order, err := h.store.UpdateOrder(c.Param("id"), status, req.Notes)
	if err != nil {
		return err
	}

	if status != nil && before.Status != order.Status {
		metrics.StatusTransitionsTotal.WithLabelValues(string(before.Status), string(order.Status)).Inc()
		h.publish(order)
	}

	return c.JSON(http.StatusOK, order)
}

// Cancel handles POST /orders/:id/cancel.
func (h *OrderHandler) Cancel(c echo.Context) error {
	before, err := h.store.GetOrder(c.Param("id"))
	if err != nil {
		return err
	}

	order, err := h.store.CancelOrder(c.Param("id"))
	if err != nil {
		return err
	}

	metrics.StatusTransitionsTotal.WithLabelValues(string(before.Status), string(order.Status)).Inc()
	h.publish(order)
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) publish(order *domain.Order) {
	eventType := domain.EventOrderUpdated
	if order.Status == domain.StatusCancelled {
		eventType = domain.EventOrderCancelled
	}
	h.hub.Publish(domain.OrderEvent{
		Type:        eventType,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		Timestamp:   time.Now().UTC(),
	})
}

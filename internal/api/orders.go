package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/beanbar/orderdesk/internal/core/domain"
	"github.com/beanbar/orderdesk/internal/core/ports"
)

type orderListResponse struct {
	Data []domain.Order `json:"data"`
	Meta ports.PageMeta `json:"meta"`
}

type updateOrderRequest struct {
	Status *domain.OrderStatus `json:"status,omitempty"`
	Notes  *string             `json:"notes,omitempty"`
}

// ListOrders fetches one page of the order collection.
func (c *Client) ListOrders(ctx context.Context, in ports.ListOrdersInput) (*ports.OrderPage, error) {
	query := url.Values{}
	if in.Status != "" {
		query.Set("status", in.Status)
	}
	if in.Page > 0 {
		query.Set("page", strconv.Itoa(in.Page))
	}
	if in.Limit > 0 {
		query.Set("limit", strconv.Itoa(in.Limit))
	}

	var resp orderListResponse
	err := c.do(ctx, apiRequest{
		method: http.MethodGet,
		path:   "/orders",
		query:  query,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &ports.OrderPage{Orders: resp.Data, Meta: resp.Meta}, nil
}

// UpdateOrder requests a status and/or notes change. The transition is
// authorized and applied server-side; an illegal transition comes back
// as domain.ErrInvalidTransition.
func (c *Client) UpdateOrder(ctx context.Context, id string, in ports.UpdateOrderInput) (*domain.Order, error) {
	var order domain.Order
	err := c.do(ctx, apiRequest{
		method: http.MethodPatch,
		path:   "/orders/" + url.PathEscape(id),
		body:   updateOrderRequest{Status: in.Status, Notes: in.Notes},
	}, &order)
	if err != nil {
		return nil, mapOrderError(err)
	}
	return &order, nil
}

// CancelOrder requests cancellation of an order.
func (c *Client) CancelOrder(ctx context.Context, id string) (*domain.Order, error) {
	var order domain.Order
	err := c.do(ctx, apiRequest{
		method: http.MethodPost,
		path:   "/orders/" + url.PathEscape(id) + "/cancel",
	}, &order)
	if err != nil {
		return nil, mapOrderError(err)
	}
	return &order, nil
}

// mapOrderError converts backend statuses on order mutations to the
// domain sentinels the views branch on.
func mapOrderError(err error) error {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrOrderNotFound, apiErr.Message)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrForbidden, apiErr.Message)
	case http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", domain.ErrInvalidTransition, apiErr.Message)
	}
	return err
}

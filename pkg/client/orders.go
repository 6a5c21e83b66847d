package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// CreateOrder creates a pending order. A customer and at least one line are
// required.
func (c *Client) CreateOrder(ctx context.Context, s Session, req CreateOrderRequest) (*Order, error) {
	if req.CustomerID <= 0 {
		return nil, illegal("create order", "Select a customer before creating the order")
	}
	if len(req.Items) == 0 {
		return nil, illegal("create order", "Add at least one item to the order")
	}

	raw, err := c.do(ctx, s, request{method: http.MethodPost, path: "/orders", body: req})
	if err != nil {
		return nil, err
	}
	var o Order
	if err := decodeInto(raw, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// ListOrders returns one page of orders
func (c *Client) ListOrders(ctx context.Context, s Session, f OrderFilter) (*Page[Order], error) {
	q := pageQuery(url.Values{}, f.Page, f.Size)
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.PaymentStatus != "" {
		q.Set("payment_status", f.PaymentStatus)
	}

	raw, err := c.do(ctx, s, request{method: http.MethodGet, path: "/orders", query: q})
	if err != nil {
		return nil, err
	}
	return decodeList[Order](raw, "orders")
}

// ConfirmOrder confirms o. An order already known to be past pending is
// rejected without a request.
func (c *Client) ConfirmOrder(ctx context.Context, s Session, o *Order) (*Order, error) {
	if o.Status != "" && o.Status != OrderPending {
		return nil, illegal("confirm order", "Order %s is %s and can no longer be confirmed", o.OrderNumber, o.Status)
	}
	return c.orderAction(ctx, s, o, "confirm", nil)
}

// CancelOrder cancels o with a mandatory reason
func (c *Client) CancelOrder(ctx context.Context, s Session, o *Order, reason string) (*Order, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, illegal("cancel order", "A reason is required to cancel an order")
	}
	if o.Status != "" && o.Status != OrderPending && o.Status != OrderConfirmed {
		return nil, illegal("cancel order", "Order %s is %s and can no longer be cancelled", o.OrderNumber, o.Status)
	}
	return c.orderAction(ctx, s, o, "cancel", url.Values{"reason": {reason}})
}

func (c *Client) orderAction(ctx context.Context, s Session, o *Order, action string, q url.Values) (*Order, error) {
	raw, err := c.do(ctx, s, request{
		method: http.MethodPost,
		path:   "/orders/" + o.ID.String() + "/" + action,
		query:  q,
	})
	if err != nil {
		return nil, err
	}
	var out Order
	if err := decodeInto(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

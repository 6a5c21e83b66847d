package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
)

// ListPayments returns one page of payments
func (c *Client) ListPayments(ctx context.Context, s Session, f PaymentFilter) (*Page[Payment], error) {
	q := pageQuery(url.Values{}, f.Page, f.Size)
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.PaymentMethod != "" {
		q.Set("payment_method", f.PaymentMethod)
	}
	if f.IsVerified != nil {
		q.Set("is_verified", strconv.FormatBool(*f.IsVerified))
	}
	if f.DateRange != "" {
		q.Set("date_range", f.DateRange)
	}

	raw, err := c.do(ctx, s, request{method: http.MethodGet, path: "/payments", query: q})
	if err != nil {
		return nil, err
	}
	return decodeList[Payment](raw, "payments")
}

// VerifyPayment verifies a payment. Verifying twice returns the original
// verification.
func (c *Client) VerifyPayment(ctx context.Context, s Session, id uuid.UUID) (*Payment, error) {
	raw, err := c.do(ctx, s, request{method: http.MethodPost, path: "/payments/" + id.String() + "/verify"})
	if err != nil {
		return nil, err
	}
	var p Payment
	if err := decodeInto(raw, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DeriveInvoice issues the draft invoice of a verified payment
func (c *Client) DeriveInvoice(ctx context.Context, s Session, p *Payment) (*Invoice, error) {
	if p.CustomerID <= 0 {
		return nil, illegal("derive invoice", "Payment %s has no customer to invoice", p.PaymentReference)
	}
	if !p.IsVerified {
		return nil, illegal("derive invoice", "Payment %s must be verified before invoicing", p.PaymentReference)
	}
	return c.invoiceCall(ctx, s, request{method: http.MethodPost, path: "/payments/" + p.ID.String() + "/invoice"})
}

// CreateInvoice creates an invoice from explicit lines
func (c *Client) CreateInvoice(ctx context.Context, s Session, req CreateInvoiceRequest) (*Invoice, error) {
	if req.CustomerID <= 0 {
		return nil, illegal("create invoice", "Select a customer before creating the invoice")
	}
	return c.invoiceCall(ctx, s, request{method: http.MethodPost, path: "/invoices", body: req})
}

// GetInvoice fetches an invoice by id
func (c *Client) GetInvoice(ctx context.Context, s Session, id uuid.UUID) (*Invoice, error) {
	return c.invoiceCall(ctx, s, request{method: http.MethodGet, path: "/invoices/" + id.String()})
}

func (c *Client) invoiceCall(ctx context.Context, s Session, req request) (*Invoice, error) {
	raw, err := c.do(ctx, s, req)
	if err != nil {
		return nil, err
	}
	var inv Invoice
	if err := decodeInto(raw, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

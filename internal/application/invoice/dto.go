package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tbeauty/backend/internal/domain/invoice"
)

// CreateInvoiceRequest represents a request to create an invoice by hand.
// DueDate accepts YYYY-MM-DD or RFC 3339.
type CreateInvoiceRequest struct {
	CustomerID         int64              `json:"customer_id"`
	OrderID            *uuid.UUID         `json:"order_id"`
	Description        string             `json:"description" binding:"max=500"`
	Notes              string             `json:"notes" binding:"max=2000"`
	TermsAndConditions string             `json:"terms_and_conditions" binding:"max=4000"`
	PaymentTerms       string             `json:"payment_terms" binding:"max=100"`
	DueDate            string             `json:"due_date"`
	TaxAmount          decimal.Decimal    `json:"tax_amount"`
	Items              []InvoiceItemInput `json:"items" binding:"dive"`
}

// InvoiceItemInput represents one line of a new invoice
type InvoiceItemInput struct {
	Description    string          `json:"description" binding:"max=500"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
}

// ListFilter represents filter options for the invoice list
type ListFilter struct {
	Search     string `form:"search"`
	Status     string `form:"status" binding:"omitempty,oneof=draft sent paid overdue"`
	CustomerID *int64 `form:"customer_id"`
	OrderID    string `form:"order_id" binding:"omitempty,uuid"`
	Page       int    `form:"page"`
	PageSize   int    `form:"size"`
	OrderBy    string `form:"order_by"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// InvoiceItemResponse represents an invoice line in API responses
type InvoiceItemResponse struct {
	ID             uuid.UUID       `json:"id"`
	Description    string          `json:"description"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	LineTotal      decimal.Decimal `json:"line_total"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID                 uuid.UUID             `json:"id"`
	InvoiceNumber      string                `json:"invoice_number"`
	CustomerID         int64                 `json:"customer_id"`
	OrderID            *uuid.UUID            `json:"order_id,omitempty"`
	PaymentID          *uuid.UUID            `json:"payment_id,omitempty"`
	Description        string                `json:"description,omitempty"`
	Notes              string                `json:"notes,omitempty"`
	TermsAndConditions string                `json:"terms_and_conditions"`
	PaymentTerms       string                `json:"payment_terms"`
	Status             invoice.Status        `json:"status"`
	Items              []InvoiceItemResponse `json:"items"`
	Subtotal           decimal.Decimal       `json:"subtotal"`
	DiscountAmount     decimal.Decimal       `json:"discount_amount"`
	TaxAmount          decimal.Decimal       `json:"tax_amount"`
	TotalAmount        decimal.Decimal       `json:"total_amount"`
	AmountPaid         decimal.Decimal       `json:"amount_paid"`
	BalanceDue         decimal.Decimal       `json:"balance_due"`
	DueDate            time.Time             `json:"due_date"`
	IsPastDue          bool                  `json:"is_past_due"`
	SnapshotKey        string                `json:"snapshot_key,omitempty"`
	SentAt             *time.Time            `json:"sent_at,omitempty"`
	PaidAt             *time.Time            `json:"paid_at,omitempty"`
	CreatedBy          string                `json:"created_by,omitempty"`
	CreatedAt          time.Time             `json:"created_at"`
	UpdatedAt          time.Time             `json:"updated_at"`
	Version            int                   `json:"version"`
}

// ToInvoiceResponse converts a domain Invoice to InvoiceResponse
func ToInvoiceResponse(inv *invoice.Invoice) InvoiceResponse {
	items := make([]InvoiceItemResponse, len(inv.Lines))
	for i, l := range inv.Lines {
		items[i] = InvoiceItemResponse{
			ID:             l.ID,
			Description:    l.Description,
			Quantity:       l.Quantity,
			UnitPrice:      l.UnitPrice,
			DiscountAmount: l.DiscountAmount,
			LineTotal:      l.Total(),
		}
	}
	return InvoiceResponse{
		ID:                 inv.ID,
		InvoiceNumber:      inv.InvoiceNumber,
		CustomerID:         inv.CustomerID,
		OrderID:            inv.OrderID,
		PaymentID:          inv.PaymentID,
		Description:        inv.Description,
		Notes:              inv.Notes,
		TermsAndConditions: inv.TermsAndConditions,
		PaymentTerms:       inv.PaymentTerms,
		Status:             inv.Status,
		Items:              items,
		Subtotal:           inv.Subtotal(),
		DiscountAmount:     inv.DiscountAmount(),
		TaxAmount:          inv.TaxAmount,
		TotalAmount:        inv.TotalAmount(),
		AmountPaid:         inv.AmountPaid,
		BalanceDue:         inv.BalanceDue(),
		DueDate:            inv.DueDate,
		IsPastDue:          inv.IsPastDue(time.Now()),
		SnapshotKey:        inv.SnapshotKey,
		SentAt:             inv.SentAt,
		PaidAt:             inv.PaidAt,
		CreatedBy:          inv.CreatedBy,
		CreatedAt:          inv.CreatedAt,
		UpdatedAt:          inv.UpdatedAt,
		Version:            inv.Version,
	}
}

// ToInvoiceResponses converts a slice of invoices
func ToInvoiceResponses(invoices []invoice.Invoice) []InvoiceResponse {
	out := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		out[i] = ToInvoiceResponse(&invoices[i])
	}
	return out
}

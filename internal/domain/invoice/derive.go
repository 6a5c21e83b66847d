package invoice

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tbeauty/backend/internal/domain/order"
	"github.com/tbeauty/backend/internal/domain/payment"
	"github.com/tbeauty/backend/internal/domain/shared"
)

// Defaults supplies the terms applied to invoices that do not set their own
type Defaults struct {
	DueDays            int
	PaymentTerms       string
	TermsAndConditions string
}

// DefaultTermsAndConditions is printed on invoices without explicit terms
const DefaultTermsAndConditions = "Payment is due within 30 days of the invoice date. " +
	"Goods remain the property of T-Beauty until paid in full. " +
	"Please quote the invoice number with your payment."

// DefaultDefaults returns Net 30 terms
func DefaultDefaults() Defaults {
	return Defaults{
		DueDays:            30,
		PaymentTerms:       "Net 30",
		TermsAndConditions: DefaultTermsAndConditions,
	}
}

func (d Defaults) withFallbacks() Defaults {
	fallback := DefaultDefaults()
	if d.DueDays <= 0 {
		d.DueDays = fallback.DueDays
	}
	if d.PaymentTerms == "" {
		d.PaymentTerms = fallback.PaymentTerms
	}
	if d.TermsAndConditions == "" {
		d.TermsAndConditions = fallback.TermsAndConditions
	}
	return d
}

// DeriveFromPayment builds a draft invoice from a verified payment and its
// order. Each order line becomes an invoice line priced as ordered; without
// an order, or with an order that has no lines, a single synthetic
// "Payment - <reference>" line for the payment amount is used.
//
// ord may be nil.
func DeriveFromPayment(number string, pay *payment.Payment, ord *order.Order, defaults Defaults, actor string) (*Invoice, error) {
	if pay == nil {
		return nil, shared.NewValidationError(shared.FieldError{Field: "payment", Reason: "required"})
	}
	if pay.CustomerID <= 0 {
		return nil, shared.NewValidationError(shared.FieldError{Field: "customer_id", Reason: "required"})
	}
	if !pay.IsVerified {
		return nil, shared.NewInvalidStateError("Cannot derive an invoice from an unverified payment")
	}

	var lines []LineInput
	if ord != nil {
		for _, item := range ord.Items {
			description := item.ProductName
			if description == "" {
				description = fmt.Sprintf("Product #%d", item.ProductID)
			}
			lines = append(lines, LineInput{
				Description:    description,
				Quantity:       item.Quantity,
				UnitPrice:      item.UnitPrice,
				DiscountAmount: decimal.Zero,
			})
		}
	}
	if len(lines) == 0 {
		lines = []LineInput{{
			Description:    "Payment - " + pay.Reference,
			Quantity:       1,
			UnitPrice:      pay.Amount,
			DiscountAmount: decimal.Zero,
		}}
	}

	paymentID := pay.ID
	params := CreateParams{
		InvoiceNumber: number,
		CustomerID:    pay.CustomerID,
		PaymentID:     &paymentID,
		Lines:         lines,
		CreatedBy:     actor,
		Notes:         "Payment reference " + pay.Reference,
	}
	if ord != nil {
		orderID := ord.ID
		params.OrderID = &orderID
		params.Description = "Order " + ord.OrderNumber
	} else if pay.HasOrder() {
		params.OrderID = pay.OrderID
	}
	return NewInvoice(params, defaults)
}

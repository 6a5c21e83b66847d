package payment

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tbeauty/backend/internal/domain/shared"
)

// Method is how a payment was made
type Method string

const (
	MethodCash             Method = "cash"
	MethodBankTransfer     Method = "bank_transfer"
	MethodPOS              Method = "pos"
	MethodMobileMoney      Method = "mobile_money"
	MethodInstagramPayment Method = "instagram_payment"
	MethodCrypto           Method = "crypto"
	MethodOther            Method = "other"
)

// IsValid checks if the method is known
func (m Method) IsValid() bool {
	switch m {
	case MethodCash, MethodBankTransfer, MethodPOS, MethodMobileMoney, MethodInstagramPayment, MethodCrypto, MethodOther:
		return true
	}
	return false
}

// Label returns the display label
func (m Method) Label() string {
	if m == MethodPOS {
		return "POS"
	}
	return shared.Label(string(m))
}

// Details holds the method-specific optional fields
type Details struct {
	BankName             string
	AccountNumber        string
	POSTerminalID        string
	MobileMoneyNumber    string
	TransactionReference string
}

// Payment is a payment submitted against an order. It moves once from
// unverified to verified.
type Payment struct {
	shared.BaseAggregateRoot
	Reference        string
	OrderID          *uuid.UUID
	CustomerID       int64
	Amount           decimal.Decimal
	Method           Method
	Details          Details
	IsVerified       bool
	VerificationDate *time.Time
	VerifiedBy       string
	PaymentDate      time.Time
	Notes            string
	CreatedBy        string
}

// CreateParams is the input of NewPayment
type CreateParams struct {
	Reference   string
	OrderID     *uuid.UUID
	CustomerID  int64
	Amount      decimal.Decimal
	Method      Method
	Details     Details
	PaymentDate time.Time
	Notes       string
	CreatedBy   string
}

// NewPayment records an unverified payment
func NewPayment(p CreateParams) (*Payment, error) {
	var v shared.Validator
	v.Check(strings.TrimSpace(p.Reference) != "", "payment_reference", "required")
	v.Check(p.CustomerID > 0, "customer_id", "required")
	v.Check(p.Amount.IsPositive(), "amount", "not positive")
	v.Check(p.Method.IsValid(), "payment_method", "invalid")
	if err := v.Err(); err != nil {
		return nil, err
	}
	if p.PaymentDate.IsZero() {
		p.PaymentDate = time.Now()
	}

	pay := &Payment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Reference:         strings.TrimSpace(p.Reference),
		OrderID:           p.OrderID,
		CustomerID:        p.CustomerID,
		Amount:            p.Amount,
		Method:            p.Method,
		Details:           p.Details,
		PaymentDate:       p.PaymentDate,
		Notes:             p.Notes,
		CreatedBy:         p.CreatedBy,
	}
	pay.AddDomainEvent(NewRecordedEvent(pay, p.CreatedBy))
	return pay, nil
}

// Verify marks the payment verified and stamps VerificationDate. On an
// already verified payment it changes nothing and returns false.
func (p *Payment) Verify(actor string) bool {
	if p.IsVerified {
		return false
	}

	now := time.Now()
	p.IsVerified = true
	p.VerificationDate = &now
	p.VerifiedBy = actor
	p.UpdatedAt = now

	p.AddDomainEvent(NewVerifiedEvent(p, actor))
	return true
}

// HasOrder reports whether the payment references an order
func (p *Payment) HasOrder() bool {
	return p.OrderID != nil && *p.OrderID != uuid.Nil
}

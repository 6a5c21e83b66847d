package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tbeauty/backend/internal/domain/payment"
)

// RecordPaymentRequest represents a request to record an inbound payment
type RecordPaymentRequest struct {
	OrderID              *uuid.UUID      `json:"order_id"`
	CustomerID           int64           `json:"customer_id"`
	Amount               decimal.Decimal `json:"amount"`
	PaymentMethod        string          `json:"payment_method" binding:"required,payment_method"`
	BankName             string          `json:"bank_name" binding:"max=100"`
	AccountNumber        string          `json:"account_number" binding:"max=50"`
	POSTerminalID        string          `json:"pos_terminal_id" binding:"max=50"`
	MobileMoneyNumber    string          `json:"mobile_money_number" binding:"max=30"`
	TransactionReference string          `json:"transaction_reference" binding:"max=100"`
	PaymentDate          *time.Time      `json:"payment_date"`
	Notes                string          `json:"notes" binding:"max=2000"`
}

// ListFilter represents filter options for the payment list.
// DateRange is "YYYY-MM-DD,YYYY-MM-DD"; either side may be empty.
type ListFilter struct {
	Search        string `form:"search"`
	PaymentMethod string `form:"payment_method" binding:"omitempty,payment_method"`
	IsVerified    *bool  `form:"is_verified"`
	OrderID       string `form:"order_id" binding:"omitempty,uuid"`
	CustomerID    *int64 `form:"customer_id"`
	DateFrom      string `form:"date_from" binding:"omitempty,datetime=2006-01-02"`
	DateTo        string `form:"date_to" binding:"omitempty,datetime=2006-01-02"`
	DateRange     string `form:"date_range"`
	Page          int    `form:"page"`
	PageSize      int    `form:"size"`
	OrderBy       string `form:"order_by"`
	OrderDir      string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID                   uuid.UUID       `json:"id"`
	PaymentReference     string          `json:"payment_reference"`
	OrderID              *uuid.UUID      `json:"order_id,omitempty"`
	CustomerID           int64           `json:"customer_id"`
	Amount               decimal.Decimal `json:"amount"`
	PaymentMethod        payment.Method  `json:"payment_method"`
	PaymentMethodLabel   string          `json:"payment_method_label"`
	BankName             string          `json:"bank_name,omitempty"`
	AccountNumber        string          `json:"account_number,omitempty"`
	POSTerminalID        string          `json:"pos_terminal_id,omitempty"`
	MobileMoneyNumber    string          `json:"mobile_money_number,omitempty"`
	TransactionReference string          `json:"transaction_reference,omitempty"`
	IsVerified           bool            `json:"is_verified"`
	VerificationDate     *time.Time      `json:"verification_date,omitempty"`
	VerifiedBy           string          `json:"verified_by,omitempty"`
	PaymentDate          time.Time       `json:"payment_date"`
	Notes                string          `json:"notes,omitempty"`
	CreatedBy            string          `json:"created_by,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
	Version              int             `json:"version"`
}

// ToPaymentResponse converts a domain Payment to PaymentResponse
func ToPaymentResponse(p *payment.Payment) PaymentResponse {
	return PaymentResponse{
		ID:                   p.ID,
		PaymentReference:     p.Reference,
		OrderID:              p.OrderID,
		CustomerID:           p.CustomerID,
		Amount:               p.Amount,
		PaymentMethod:        p.Method,
		PaymentMethodLabel:   p.Method.Label(),
		BankName:             p.Details.BankName,
		AccountNumber:        p.Details.AccountNumber,
		POSTerminalID:        p.Details.POSTerminalID,
		MobileMoneyNumber:    p.Details.MobileMoneyNumber,
		TransactionReference: p.Details.TransactionReference,
		IsVerified:           p.IsVerified,
		VerificationDate:     p.VerificationDate,
		VerifiedBy:           p.VerifiedBy,
		PaymentDate:          p.PaymentDate,
		Notes:                p.Notes,
		CreatedBy:            p.CreatedBy,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
		Version:              p.Version,
	}
}

// ToPaymentResponses converts a slice of payments
func ToPaymentResponses(payments []payment.Payment) []PaymentResponse {
	out := make([]PaymentResponse, len(payments))
	for i := range payments {
		out[i] = ToPaymentResponse(&payments[i])
	}
	return out
}
